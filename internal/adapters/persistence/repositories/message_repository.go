package repositories

import (
	"context"

	"lifelink/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// MessageRepository handles message persistence
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create creates a new message
func (r *MessageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// GetConversation lists messages between two users for a request, oldest first
func (r *MessageRepository) GetConversation(ctx context.Context, requestID, userA, userB string) ([]*models.Message, error) {
	var messages []*models.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Preload("Receiver").
		Where("request_id = ?", requestID).
		Where(
			r.db.Where("sender_id = ? AND receiver_id = ?", userA, userB).
				Or("sender_id = ? AND receiver_id = ?", userB, userA),
		).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

// MarkRead marks messages from a sender to a receiver as read for a request
func (r *MessageRepository) MarkRead(ctx context.Context, requestID, senderID, receiverID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("request_id = ?", requestID).
		Where("sender_id = ?", senderID).
		Where("receiver_id = ?", receiverID).
		Update("is_read", true).Error
}

// CountUnread counts unread messages addressed to a user
func (r *MessageRepository) CountUnread(ctx context.Context, receiverID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("receiver_id = ?", receiverID).
		Where("is_read = ?", false).
		Count(&count).Error
	return count, err
}
