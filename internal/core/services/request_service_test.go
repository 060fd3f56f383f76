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

func newTestRequestService(db *gorm.DB) *RequestService {
	return NewRequestService(
		repositories.NewRequestRepository(db),
		repositories.NewUserRepository(db),
		nil,
	)
}

func TestCreateRequest(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestRequestService(db)
	ctx := context.Background()

	recipient := createTestUser(t, db, models.RoleRecipient, "B+")

	request, err := svc.Create(ctx, recipient.ID, &CreateRequestInput{
		PatientName:   "Asha K",
		BloodType:     "B+",
		UnitsRequired: 2,
		Urgency:       "high",
		HospitalName:  "Ruby Hall",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, request.ID)
	assert.Equal(t, models.RequestStatusOpen, request.Status)
	assert.Equal(t, models.UrgencyHigh, request.Urgency)
	assert.Equal(t, 0, request.UnitsFulfilled)
	// Coordinates come from the requester's profile
	require.NotNil(t, request.Latitude)
	assert.Equal(t, *recipient.Latitude, *request.Latitude)
}

func TestCreateRequestDefaultsUrgency(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestRequestService(db)
	ctx := context.Background()

	recipient := createTestUser(t, db, models.RoleRecipient, "B+")

	request, err := svc.Create(ctx, recipient.ID, &CreateRequestInput{
		BloodType:     "O-",
		UnitsRequired: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, models.UrgencyMedium, request.Urgency)
}

func TestCreateRequestValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestRequestService(db)
	ctx := context.Background()

	recipient := createTestUser(t, db, models.RoleRecipient, "B+")

	tests := []struct {
		name    string
		input   CreateRequestInput
		wantErr error
	}{
		{"bad blood type", CreateRequestInput{BloodType: "C+", UnitsRequired: 1}, ErrInvalidBloodType},
		{"zero units", CreateRequestInput{BloodType: "A+", UnitsRequired: 0}, ErrInvalidUnits},
		{"bad urgency", CreateRequestInput{BloodType: "A+", UnitsRequired: 1, Urgency: "URGENT"}, ErrInvalidUrgency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tt.input
			_, err := svc.Create(ctx, recipient.ID, &input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateRequestNeedsLocation(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestRequestService(db)
	ctx := context.Background()

	recipient := createTestUser(t, db, models.RoleRecipient, "B+")
	require.NoError(t, db.Model(recipient).
		Updates(map[string]interface{}{"latitude": nil, "longitude": nil}).Error)

	_, err := svc.Create(ctx, recipient.ID, &CreateRequestInput{
		BloodType:     "B+",
		UnitsRequired: 1,
	})
	assert.ErrorIs(t, err, ErrProfileNeedsLocation)
}

func TestListRequestsFilterValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestRequestService(db)
	ctx := context.Background()

	_, _, err := svc.List(ctx, &repositories.ListFilter{BloodType: "Z+"}, 0, 10)
	assert.ErrorIs(t, err, ErrInvalidBloodType)

	_, _, err = svc.List(ctx, &repositories.ListFilter{Urgency: "ASAP"}, 0, 10)
	assert.ErrorIs(t, err, ErrInvalidUrgency)
}

func TestListMine(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestRequestService(db)
	ctx := context.Background()

	recipient := createTestUser(t, db, models.RoleRecipient, "B+")
	other := createTestUser(t, db, models.RoleRecipient, "A+")
	createTestRequest(t, db, recipient.ID, 1)
	createTestRequest(t, db, recipient.ID, 2)
	createTestRequest(t, db, other.ID, 1)

	requests, total, err := svc.ListMine(ctx, recipient.ID, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, r := range requests {
		assert.Equal(t, recipient.ID, r.RequesterID)
	}
}
