package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"lifelink/internal/adapters/persistence/models"
	"lifelink/internal/adapters/persistence/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Messaging errors
var (
	ErrEmptyMessage    = errors.New("message text is required")
	ErrSelfMessage     = errors.New("cannot send a message to yourself")
	ErrReceiverUnknown = errors.New("receiver not found")
)

// MessageService handles request-scoped conversations between a requester
// and a donor
type MessageService struct {
	messageRepo *repositories.MessageRepository
	requestRepo *repositories.RequestRepository
	userRepo    repositories.UserRepository
}

// NewMessageService creates a new message service
func NewMessageService(
	messageRepo *repositories.MessageRepository,
	requestRepo *repositories.RequestRepository,
	userRepo repositories.UserRepository,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		requestRepo: requestRepo,
		userRepo:    userRepo,
	}
}

// SendInput represents message send input
type SendInput struct {
	RequestID   string `json:"request_id" validate:"required"`
	ReceiverID  string `json:"receiver_id" validate:"required"`
	MessageText string `json:"message_text" validate:"required"`
}

// Send creates a message in a request's conversation
func (s *MessageService) Send(ctx context.Context, senderID string, input *SendInput) (*models.Message, error) {
	// 1. Validate input
	if _, err := uuid.Parse(input.RequestID); err != nil {
		return nil, ErrMalformedID
	}
	if _, err := uuid.Parse(input.ReceiverID); err != nil {
		return nil, ErrMalformedID
	}
	if strings.TrimSpace(input.MessageText) == "" {
		return nil, ErrEmptyMessage
	}
	if input.ReceiverID == senderID {
		return nil, ErrSelfMessage
	}

	// 2. The conversation must hang off an existing request
	if _, err := s.requestRepo.GetByID(ctx, input.RequestID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}

	// 3. The receiver must exist
	if _, err := s.userRepo.GetByID(ctx, input.ReceiverID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReceiverUnknown
		}
		return nil, err
	}

	// 4. Create
	message := &models.Message{
		RequestID:   input.RequestID,
		SenderID:    senderID,
		ReceiverID:  input.ReceiverID,
		MessageText: strings.TrimSpace(input.MessageText),
		MessageType: "text",
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	log.Printf("✅ Message sent on request %s: %s -> %s", message.RequestID, senderID, input.ReceiverID)
	return message, nil
}

// GetConversation lists messages between the caller and another user for a
// request, oldest first
func (s *MessageService) GetConversation(ctx context.Context, callerID, requestID, otherUserID string) ([]*models.Message, error) {
	if _, err := uuid.Parse(requestID); err != nil {
		return nil, ErrMalformedID
	}
	if _, err := uuid.Parse(otherUserID); err != nil {
		return nil, ErrMalformedID
	}
	return s.messageRepo.GetConversation(ctx, requestID, callerID, otherUserID)
}

// MarkRead marks the other party's messages to the caller as read.
// Only the receiver can mark messages read, never the sender.
func (s *MessageService) MarkRead(ctx context.Context, callerID, requestID, senderID string) error {
	if _, err := uuid.Parse(requestID); err != nil {
		return ErrMalformedID
	}
	if _, err := uuid.Parse(senderID); err != nil {
		return ErrMalformedID
	}
	return s.messageRepo.MarkRead(ctx, requestID, senderID, callerID)
}

// CountUnread counts unread messages addressed to the caller
func (s *MessageService) CountUnread(ctx context.Context, callerID string) (int64, error) {
	return s.messageRepo.CountUnread(ctx, callerID)
}
