package handlers

import (
	"errors"

	"lifelink/internal/core/services"
	"lifelink/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MessageHandler handles messaging endpoints
type MessageHandler struct {
	messageService *services.MessageService
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(messageService *services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// SendMessageRequest represents message send body
type SendMessageRequest struct {
	RequestID   string `json:"request_id"`
	ReceiverID  string `json:"receiver_id"`
	MessageText string `json:"message_text"`
}

// MarkReadRequest represents mark-read body
type MarkReadRequest struct {
	RequestID string `json:"request_id"`
	SenderID  string `json:"sender_id"`
}

// Send handles message creation
// @Summary Send message
// @Description Send a message in a request's conversation
// @Tags Messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SendMessageRequest true "Message data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /messages [post]
func (h *MessageHandler) Send(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.SendInput{
		RequestID:   req.RequestID,
		ReceiverID:  req.ReceiverID,
		MessageText: req.MessageText,
	}

	message, err := h.messageService.Send(c.Context(), userID, input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMalformedID):
			return response.BadRequest(c, "Malformed id")
		case errors.Is(err, services.ErrEmptyMessage):
			return response.BadRequest(c, "Message text is required")
		case errors.Is(err, services.ErrSelfMessage):
			return response.BadRequest(c, "Cannot send a message to yourself")
		case errors.Is(err, services.ErrRequestNotFound):
			return response.NotFound(c, "Blood request not found")
		case errors.Is(err, services.ErrReceiverUnknown):
			return response.NotFound(c, "Receiver not found")
		default:
			return response.InternalServerError(c, "Failed to send message")
		}
	}

	return response.Created(c, "Message sent successfully", message)
}

// Conversation lists messages between the caller and another user for a request
// @Summary Get conversation
// @Description List messages between the caller and another user for a request, oldest first
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Param request_id query string true "Blood request ID"
// @Param user_id query string true "Other user ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /messages [get]
func (h *MessageHandler) Conversation(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	requestID := c.Query("request_id")
	otherUserID := c.Query("user_id")
	if requestID == "" || otherUserID == "" {
		return response.BadRequest(c, "request_id and user_id are required")
	}

	messages, err := h.messageService.GetConversation(c.Context(), userID, requestID, otherUserID)
	if err != nil {
		if errors.Is(err, services.ErrMalformedID) {
			return response.BadRequest(c, "Malformed id")
		}
		return response.InternalServerError(c, "Failed to get conversation")
	}

	return response.Success(c, "Conversation retrieved successfully", messages)
}

// MarkRead marks the sender's messages to the caller as read
// @Summary Mark messages read
// @Description Mark a sender's messages to the caller as read for a request
// @Tags Messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body MarkReadRequest true "Mark-read data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /messages/mark-read [post]
func (h *MessageHandler) MarkRead(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req MarkReadRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.RequestID == "" || req.SenderID == "" {
		return response.BadRequest(c, "request_id and sender_id are required")
	}

	if err := h.messageService.MarkRead(c.Context(), userID, req.RequestID, req.SenderID); err != nil {
		if errors.Is(err, services.ErrMalformedID) {
			return response.BadRequest(c, "Malformed id")
		}
		return response.InternalServerError(c, "Failed to mark messages read")
	}

	return response.Success(c, "Messages marked as read", nil)
}

// UnreadCount returns the caller's unread message count
// @Summary Count unread messages
// @Description Count unread messages addressed to the caller
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /messages/unread-count [get]
func (h *MessageHandler) UnreadCount(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	count, err := h.messageService.CountUnread(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to count unread messages")
	}

	return response.Success(c, "Unread count retrieved successfully", fiber.Map{
		"unread": count,
	})
}
