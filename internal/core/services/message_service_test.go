package services

import (
	"context"
	"testing"

	"lifelink/internal/adapters/persistence/models"
	"lifelink/internal/adapters/persistence/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestMessageService(db *gorm.DB) *MessageService {
	return NewMessageService(
		repositories.NewMessageRepository(db),
		repositories.NewRequestRepository(db),
		repositories.NewUserRepository(db),
	)
}

func TestSendMessage(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestMessageService(db)
	ctx := context.Background()

	recipient := createTestUser(t, db, models.RoleRecipient, "O+")
	donor := createTestUser(t, db, models.RoleDonor, "O+")
	request := createTestRequest(t, db, recipient.ID, 2)

	message, err := svc.Send(ctx, recipient.ID, &SendInput{
		RequestID:   request.ID,
		ReceiverID:  donor.ID,
		MessageText: "  Can you come by tomorrow morning?  ",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, message.ID)
	assert.Equal(t, recipient.ID, message.SenderID)
	assert.Equal(t, donor.ID, message.ReceiverID)
	assert.Equal(t, "Can you come by tomorrow morning?", message.MessageText)
	assert.False(t, message.IsRead)
}

func TestSendMessageValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestMessageService(db)
	ctx := context.Background()

	recipient := createTestUser(t, db, models.RoleRecipient, "O+")
	donor := createTestUser(t, db, models.RoleDonor, "O+")
	request := createTestRequest(t, db, recipient.ID, 2)

	tests := []struct {
		name    string
		input   SendInput
		wantErr error
	}{
		{"bad request id", SendInput{"oops", donor.ID, "hi"}, ErrMalformedID},
		{"bad receiver id", SendInput{request.ID, "oops", "hi"}, ErrMalformedID},
		{"blank text", SendInput{request.ID, donor.ID, "   "}, ErrEmptyMessage},
		{"to self", SendInput{request.ID, recipient.ID, "hi"}, ErrSelfMessage},
		{"missing request", SendInput{"3b0d5a3e-0000-4000-8000-000000000000", donor.ID, "hi"}, ErrRequestNotFound},
		{"missing receiver", SendInput{request.ID, "3b0d5a3e-0000-4000-8000-000000000001", "hi"}, ErrReceiverUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tt.input
			_, err := svc.Send(ctx, recipient.ID, &input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestConversationAndUnread(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestMessageService(db)
	ctx := context.Background()

	recipient := createTestUser(t, db, models.RoleRecipient, "O+")
	donor := createTestUser(t, db, models.RoleDonor, "O+")
	request := createTestRequest(t, db, recipient.ID, 2)

	_, err := svc.Send(ctx, recipient.ID, &SendInput{RequestID: request.ID, ReceiverID: donor.ID, MessageText: "first"})
	require.NoError(t, err)
	_, err = svc.Send(ctx, donor.ID, &SendInput{RequestID: request.ID, ReceiverID: recipient.ID, MessageText: "second"})
	require.NoError(t, err)

	conversation, err := svc.GetConversation(ctx, recipient.ID, request.ID, donor.ID)
	require.NoError(t, err)
	require.Len(t, conversation, 2)
	assert.Equal(t, "first", conversation[0].MessageText)
	assert.Equal(t, "second", conversation[1].MessageText)

	unread, err := svc.CountUnread(ctx, recipient.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)

	// Only the receiver's side is marked
	require.NoError(t, svc.MarkRead(ctx, recipient.ID, request.ID, donor.ID))

	unread, err = svc.CountUnread(ctx, recipient.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, unread)

	unread, err = svc.CountUnread(ctx, donor.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)
}
