package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"lifelink/internal/adapters/persistence/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitiateVerification(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestVerificationService(db)
	ctx := context.Background()

	recipient := createTestUser(t, db, models.RoleRecipient, "O+")
	donor := createTestUser(t, db, models.RoleDonor, "O+")
	request := createTestRequest(t, db, recipient.ID, 3)

	result, err := svc.Initiate(ctx, recipient.ID, &InitiateInput{
		BloodRequestID: request.ID,
		DonorID:        donor.ID,
		UnitsDonated:   1,
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.NotEmpty(t, result.VerificationID)
	assert.Len(t, result.OTP, 6)

	var verification models.DonationVerification
	require.NoError(t, db.First(&verification, "id = ?", result.VerificationID).Error)
	assert.Equal(t, models.VerificationStatusPending, verification.Status)
	assert.Equal(t, recipient.ID, verification.RecipientID)
	assert.Equal(t, result.OTP, verification.OTP)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), verification.ExpiresAt, 10*time.Second)

	var donation models.Donation
	require.NoError(t, db.First(&donation, "id = ?", verification.DonationID).Error)
	assert.Equal(t, donor.ID, donation.DonorID)
	assert.Equal(t, request.ID, donation.BloodRequestID)
	assert.Equal(t, 1, donation.UnitsDonated)
	assert.Nil(t, donation.DonationDate)
}

func TestInitiateValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestVerificationService(db)
	ctx := context.Background()

	recipient := createTestUser(t, db, models.RoleRecipient, "O+")
	donor := createTestUser(t, db, models.RoleDonor, "O+")
	request := createTestRequest(t, db, recipient.ID, 3)

	tests := []struct {
		name    string
		input   InitiateInput
		wantErr error
	}{
		{"malformed request id", InitiateInput{"not-a-uuid", donor.ID, 1}, ErrMalformedID},
		{"malformed donor id", InitiateInput{request.ID, "nope", 1}, ErrMalformedID},
		{"zero units", InitiateInput{request.ID, donor.ID, 0}, ErrInvalidDonationUnits},
		{"negative units", InitiateInput{request.ID, donor.ID, -2}, ErrInvalidDonationUnits},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tt.input
			_, err := svc.Initiate(ctx, recipient.ID, &input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestInitiateOwnershipGuard(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestVerificationService(db)
	ctx := context.Background()

	recipient := createTestUser(t, db, models.RoleRecipient, "O+")
	other := createTestUser(t, db, models.RoleRecipient, "A+")
	donor := createTestUser(t, db, models.RoleDonor, "O+")
	request := createTestRequest(t, db, recipient.ID, 3)

	// Someone else's request reads the same as a nonexistent one
	_, err := svc.Initiate(ctx, other.ID, &InitiateInput{
		BloodRequestID: request.ID,
		DonorID:        donor.ID,
		UnitsDonated:   1,
	})
	assert.ErrorIs(t, err, ErrRequestNotFound)

	_, err = svc.Initiate(ctx, recipient.ID, &InitiateInput{
		BloodRequestID: "3b0d5a3e-0000-4000-8000-000000000000",
		DonorID:        donor.ID,
		UnitsDonated:   1,
	})
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestInitiateClosedRequest(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestVerificationService(db)
	ctx := context.Background()

	recipient := createTestUser(t, db, models.RoleRecipient, "O+")
	donor := createTestUser(t, db, models.RoleDonor, "O+")
	request := createTestRequest(t, db, recipient.ID, 1)

	require.NoError(t, db.Model(request).Update("status", models.RequestStatusClosed).Error)

	_, err := svc.Initiate(ctx, recipient.ID, &InitiateInput{
		BloodRequestID: request.ID,
		DonorID:        donor.ID,
		UnitsDonated:   1,
	})
	assert.ErrorIs(t, err, ErrRequestNotOpen)
}

func TestInitiateDuplicatePending(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestVerificationService(db)
	ctx := context.Background()

	recipient := createTestUser(t, db, models.RoleRecipient, "O+")
	donor := createTestUser(t, db, models.RoleDonor, "O+")
	otherDonor := createTestUser(t, db, models.RoleDonor, "B+")
	request := createTestRequest(t, db, recipient.ID, 5)

	input := &InitiateInput{BloodRequestID: request.ID, DonorID: donor.ID, UnitsDonated: 1}
	_, err := svc.Initiate(ctx, recipient.ID, input)
	require.NoError(t, err)

	// Same donor+request pair with one already pending
	_, err = svc.Initiate(ctx, recipient.ID, input)
	assert.ErrorIs(t, err, ErrVerificationInFlight)

	// A different donor on the same request is fine
	_, err = svc.Initiate(ctx, recipient.ID, &InitiateInput{
		BloodRequestID: request.ID,
		DonorID:        otherDonor.ID,
		UnitsDonated:   1,
	})
	assert.NoError(t, err)
}

func TestInitiateConcurrent(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestVerificationService(db)
	ctx := context.Background()

	recipient := createTestUser(t, db, models.RoleRecipient, "O+")
	donor := createTestUser(t, db, models.RoleDonor, "O+")
	request := createTestRequest(t, db, recipient.ID, 5)

	const attempts = 6
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Initiate(ctx, recipient.ID, &InitiateInput{
				BloodRequestID: request.ID,
				DonorID:        donor.ID,
				UnitsDonated:   1,
			})
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrVerificationInFlight)
		}
	}
	assert.Equal(t, 1, winners, "exactly one initiation must win")

	// Exactly one PENDING verification exists for the pair
	var count int64
	require.NoError(t, db.Model(&models.DonationVerification{}).
		Joins("JOIN donations ON donations.id = donation_verifications.donation_id").
		Where("donations.donor_id = ?", donor.ID).
		Where("donations.blood_request_id = ?", request.ID).
		Where("donation_verifications.status = ?", models.VerificationStatusPending).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCompleteVerification(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestVerificationService(db)
	ctx := context.Background()

	recipient := createTestUser(t, db, models.RoleRecipient, "O+")
	donor := createTestUser(t, db, models.RoleDonor, "O+")
	request := createTestRequest(t, db, recipient.ID, 3)

	result, err := svc.Initiate(ctx, recipient.ID, &InitiateInput{
		BloodRequestID: request.ID,
		DonorID:        donor.ID,
		UnitsDonated:   2,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Complete(ctx, recipient.ID, result.VerificationID, result.OTP))

	var verification models.DonationVerification
	require.NoError(t, db.First(&verification, "id = ?", result.VerificationID).Error)
	assert.Equal(t, models.VerificationStatusVerified, verification.Status)

	var donation models.Donation
	require.NoError(t, db.First(&donation, "id = ?", verification.DonationID).Error)
	require.NotNil(t, donation.DonationDate)
	assert.WithinDuration(t, time.Now(), *donation.DonationDate, 10*time.Second)

	var updated models.BloodRequest
	require.NoError(t, db.First(&updated, "id = ?", request.ID).Error)
	assert.Equal(t, 2, updated.UnitsFulfilled)
	assert.Equal(t, models.RequestStatusOpen, updated.Status)

	var freshDonor models.User
	require.NoError(t, db.First(&freshDonor, "id = ?", donor.ID).Error)
	require.NotNil(t, freshDonor.LastDonation)
	assert.WithinDuration(t, time.Now(), *freshDonor.LastDonation, 10*time.Second)
}

func TestCompleteClosesFulfilledRequest(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestVerificationService(db)
	ctx := context.Background()

	recipient := createTestUser(t, db, models.RoleRecipient, "O+")
	donor := createTestUser(t, db, models.RoleDonor, "O+")
	request := createTestRequest(t, db, recipient.ID, 2)

	result, err := svc.Initiate(ctx, recipient.ID, &InitiateInput{
		BloodRequestID: request.ID,
		DonorID:        donor.ID,
		UnitsDonated:   3, // over-fulfills
	})
	require.NoError(t, err)
	require.NoError(t, svc.Complete(ctx, recipient.ID, result.VerificationID, result.OTP))

	var updated models.BloodRequest
	require.NoError(t, db.First(&updated, "id = ?", request.ID).Error)
	assert.Equal(t, 3, updated.UnitsFulfilled)
	assert.Equal(t, models.RequestStatusClosed, updated.Status)

	// A closed request stays closed and accepts no further verifications
	otherDonor := createTestUser(t, db, models.RoleDonor, "A+")
	_, err = svc.Initiate(ctx, recipient.ID, &InitiateInput{
		BloodRequestID: request.ID,
		DonorID:        otherDonor.ID,
		UnitsDonated:   1,
	})
	assert.ErrorIs(t, err, ErrRequestNotOpen)
}

func TestCompleteWrongCaller(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestVerificationService(db)
	ctx := context.Background()

	recipient := createTestUser(t, db, models.RoleRecipient, "O+")
	other := createTestUser(t, db, models.RoleRecipient, "A+")
	donor := createTestUser(t, db, models.RoleDonor, "O+")
	request := createTestRequest(t, db, recipient.ID, 3)

	result, err := svc.Initiate(ctx, recipient.ID, &InitiateInput{
		BloodRequestID: request.ID,
		DonorID:        donor.ID,
		UnitsDonated:   1,
	})
	require.NoError(t, err)

	err = svc.Complete(ctx, other.ID, result.VerificationID, result.OTP)
	assert.ErrorIs(t, err, ErrVerificationNotFound)
}

func TestCompleteWrongCode(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestVerificationService(db)
	ctx := context.Background()

	recipient := createTestUser(t, db, models.RoleRecipient, "O+")
	donor := createTestUser(t, db, models.RoleDonor, "O+")
	request := createTestRequest(t, db, recipient.ID, 3)

	result, err := svc.Initiate(ctx, recipient.ID, &InitiateInput{
		BloodRequestID: request.ID,
		DonorID:        donor.ID,
		UnitsDonated:   1,
	})
	require.NoError(t, err)

	wrong := "000000"
	if result.OTP == wrong {
		wrong = "111111"
	}
	err = svc.Complete(ctx, recipient.ID, result.VerificationID, wrong)
	assert.ErrorIs(t, err, ErrOTPMismatch)

	// A mismatch leaves the verification pending and retryable
	var verification models.DonationVerification
	require.NoError(t, db.First(&verification, "id = ?", result.VerificationID).Error)
	assert.Equal(t, models.VerificationStatusPending, verification.Status)

	require.NoError(t, svc.Complete(ctx, recipient.ID, result.VerificationID, result.OTP))
}

func TestCompleteExpiredCode(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestVerificationService(db)
	ctx := context.Background()

	recipient := createTestUser(t, db, models.RoleRecipient, "O+")
	donor := createTestUser(t, db, models.RoleDonor, "O+")
	request := createTestRequest(t, db, recipient.ID, 3)

	result, err := svc.Initiate(ctx, recipient.ID, &InitiateInput{
		BloodRequestID: request.ID,
		DonorID:        donor.ID,
		UnitsDonated:   1,
	})
	require.NoError(t, err)

	// Push the expiry into the past
	require.NoError(t, db.Model(&models.DonationVerification{}).
		Where("id = ?", result.VerificationID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	err = svc.Complete(ctx, recipient.ID, result.VerificationID, result.OTP)
	assert.ErrorIs(t, err, ErrOTPExpired)

	// Expiry is terminal: the record flips to EXPIRED and later attempts no
	// longer find a pending verification
	var verification models.DonationVerification
	require.NoError(t, db.First(&verification, "id = ?", result.VerificationID).Error)
	assert.Equal(t, models.VerificationStatusExpired, verification.Status)

	err = svc.Complete(ctx, recipient.ID, result.VerificationID, result.OTP)
	assert.ErrorIs(t, err, ErrVerificationNotFound)

	// Nothing was counted
	var updated models.BloodRequest
	require.NoError(t, db.First(&updated, "id = ?", request.ID).Error)
	assert.Equal(t, 0, updated.UnitsFulfilled)
}

func TestCompleteTwice(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestVerificationService(db)
	ctx := context.Background()

	recipient := createTestUser(t, db, models.RoleRecipient, "O+")
	donor := createTestUser(t, db, models.RoleDonor, "O+")
	request := createTestRequest(t, db, recipient.ID, 5)

	result, err := svc.Initiate(ctx, recipient.ID, &InitiateInput{
		BloodRequestID: request.ID,
		DonorID:        donor.ID,
		UnitsDonated:   2,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Complete(ctx, recipient.ID, result.VerificationID, result.OTP))

	err = svc.Complete(ctx, recipient.ID, result.VerificationID, result.OTP)
	assert.ErrorIs(t, err, ErrVerificationNotFound)

	// Units counted exactly once
	var updated models.BloodRequest
	require.NoError(t, db.First(&updated, "id = ?", request.ID).Error)
	assert.Equal(t, 2, updated.UnitsFulfilled)
}

func TestCompleteConcurrent(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestVerificationService(db)
	ctx := context.Background()

	recipient := createTestUser(t, db, models.RoleRecipient, "O+")
	donor := createTestUser(t, db, models.RoleDonor, "O+")
	request := createTestRequest(t, db, recipient.ID, 10)

	result, err := svc.Initiate(ctx, recipient.ID, &InitiateInput{
		BloodRequestID: request.ID,
		DonorID:        donor.ID,
		UnitsDonated:   2,
	})
	require.NoError(t, err)

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.Complete(ctx, recipient.ID, result.VerificationID, result.OTP)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrVerificationNotFound)
		}
	}
	assert.Equal(t, 1, winners, "exactly one completion must win")

	var updated models.BloodRequest
	require.NoError(t, db.First(&updated, "id = ?", request.ID).Error)
	assert.Equal(t, 2, updated.UnitsFulfilled)
}
