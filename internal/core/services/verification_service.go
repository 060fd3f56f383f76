package services

import (
	"context"
	"errors"
	"log"
	"time"

	"lifelink/internal/adapters/persistence/models"
	"lifelink/internal/adapters/persistence/repositories"
	"lifelink/internal/pkg/otp"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Verification workflow errors
var (
	ErrMalformedID          = errors.New("malformed id")
	ErrInvalidDonationUnits = errors.New("units donated must be at least 1")
	ErrRequestNotFound      = errors.New("blood request not found or not owned by caller")
	ErrRequestNotOpen       = errors.New("blood request is no longer open")
	ErrVerificationInFlight = errors.New("a pending verification already exists for this donor and request")
	ErrVerificationNotFound = errors.New("verification not found or already completed")
	ErrOTPExpired           = errors.New("otp has expired")
	ErrOTPMismatch          = errors.New("otp does not match")
)

// VerificationService orchestrates the donation confirmation workflow:
// a recipient initiates a pending donation with a one-time code, relays the
// code to the donor out-of-band, and completes the verification by submitting
// the code back. Finalization updates the verification, the donation, the
// request's fulfillment counters and the donor's last-donation date as a
// single transaction.
type VerificationService struct {
	db               *gorm.DB
	requestRepo      *repositories.RequestRepository
	verificationRepo *repositories.VerificationRepository
	notifyService    *NotificationService
}

// NewVerificationService creates a new verification service
func NewVerificationService(
	db *gorm.DB,
	requestRepo *repositories.RequestRepository,
	verificationRepo *repositories.VerificationRepository,
	notifyService *NotificationService,
) *VerificationService {
	return &VerificationService{
		db:               db,
		requestRepo:      requestRepo,
		verificationRepo: verificationRepo,
		notifyService:    notifyService,
	}
}

// InitiateInput represents verification initiation input
type InitiateInput struct {
	BloodRequestID string `json:"bloodRequestId"`
	DonorID        string `json:"donorId"`
	UnitsDonated   int    `json:"unitsDonated"`
}

// InitiateResult carries the new verification's id and raw code.
// The raw code is returned to the caller only as a prototype stand-in for a
// real out-of-band delivery channel (SMS/email); production delivery must
// dispatch it via the notification collaborator instead.
type InitiateResult struct {
	VerificationID string
	OTP            string
}

// Initiate starts a donation verification: it validates the caller owns the
// open request, then atomically creates a pending Donation and its
// DonationVerification with a fresh 6-digit code expiring in 10 minutes.
func (s *VerificationService) Initiate(ctx context.Context, callerID string, input *InitiateInput) (*InitiateResult, error) {
	// 1. Validate input shape
	if _, err := uuid.Parse(input.BloodRequestID); err != nil {
		return nil, ErrMalformedID
	}
	if _, err := uuid.Parse(input.DonorID); err != nil {
		return nil, ErrMalformedID
	}
	if input.UnitsDonated < 1 {
		return nil, ErrInvalidDonationUnits
	}

	// 2. The caller must own the request. Not-exists and not-owned are the
	// same error so ownership is never revealed to non-owners.
	request, err := s.requestRepo.GetOwnedBy(ctx, input.BloodRequestID, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}

	// 3. Only OPEN requests accept donations
	if !request.IsOpen() {
		return nil, ErrRequestNotOpen
	}

	// 4. Disallow a second in-flight verification for the same donor+request
	// pair; completing two of them would over-fulfill the request. This is a
	// fast-path rejection only; the transaction below re-checks before writing.
	pending, err := s.verificationRepo.HasPendingForDonorAndRequest(ctx, input.DonorID, request.ID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, ErrVerificationInFlight
	}

	// 5. Generate the one-time code and its expiry
	code, expiresAt, err := otp.Generate()
	if err != nil {
		return nil, err
	}

	// 6. Create the pending donation and its verification together.
	// If either write fails, neither is persisted.
	donation := &models.Donation{
		DonorID:        input.DonorID,
		BloodRequestID: request.ID,
		UnitsDonated:   input.UnitsDonated,
		// DonationDate is set at finalization, not here
	}
	verification := &models.DonationVerification{
		RecipientID: callerID,
		OTP:         code,
		ExpiresAt:   expiresAt,
		Status:      models.VerificationStatusPending,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Re-check the in-flight guard inside the transaction so two racing
		// initiations for the same donor+request cannot both create a
		// PENDING verification.
		var count int64
		if err := tx.Model(&models.DonationVerification{}).
			Joins("JOIN donations ON donations.id = donation_verifications.donation_id").
			Where("donations.donor_id = ?", input.DonorID).
			Where("donations.blood_request_id = ?", request.ID).
			Where("donation_verifications.status = ?", models.VerificationStatusPending).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrVerificationInFlight
		}

		if err := tx.Create(donation).Error; err != nil {
			return err
		}
		verification.DonationID = donation.ID
		return tx.Create(verification).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Verification initiated: %s (request %s, donor %s)", verification.ID, request.ID, input.DonorID)

	return &InitiateResult{
		VerificationID: verification.ID,
		OTP:            code,
	}, nil
}

// Complete finalizes a donation verification. Checks run strictly in order:
// pending lookup (terminal states read as not-found), then lazy expiry, then
// code match. On success the verification, the donation date, the request's
// fulfillment counters and the donor's last-donation date are all written in
// one all-or-nothing transaction.
func (s *VerificationService) Complete(ctx context.Context, callerID, verificationID, code string) error {
	// 1. Find the pending verification scoped to the caller
	verification, err := s.verificationRepo.FindPending(ctx, verificationID, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVerificationNotFound
		}
		return err
	}

	// 2. Lazy expiry: mark the record EXPIRED so PENDING is never observed
	// again for it. The write is best-effort; expiry is re-checked on every
	// attempt, so a failed write only delays the transition.
	if verification.IsExpired() {
		if err := s.verificationRepo.MarkExpired(ctx, verification.ID); err != nil {
			log.Printf("⚠️ Failed to mark verification %s expired: %v", verification.ID, err)
		}
		return ErrOTPExpired
	}

	// 3. Check the submitted code
	if verification.OTP != code {
		return ErrOTPMismatch
	}

	donation := verification.Donation
	request := donation.BloodRequest
	now := time.Now()
	closed := false

	// 4. Atomic finalization. The conditional PENDING->VERIFIED update is
	// the concurrency guard: of N racing completions exactly one observes
	// PENDING and wins; the rest roll back and report not-found.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.DonationVerification{}).
			Where("id = ?", verification.ID).
			Where("status = ?", models.VerificationStatusPending).
			Update("status", models.VerificationStatusVerified)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrVerificationNotFound
		}

		if err := tx.Model(&models.Donation{}).
			Where("id = ?", donation.ID).
			Update("donation_date", now).Error; err != nil {
			return err
		}

		// Counter math happens in the database so concurrent finalizations
		// against the same request never lose an increment.
		if err := tx.Model(&models.BloodRequest{}).
			Where("id = ?", request.ID).
			Update("units_fulfilled", gorm.Expr("units_fulfilled + ?", donation.UnitsDonated)).Error; err != nil {
			return err
		}

		// Close once satisfied; a CLOSED request never reopens.
		if err := tx.Model(&models.BloodRequest{}).
			Where("id = ?", request.ID).
			Where("units_fulfilled >= units_required").
			Update("status", models.RequestStatusClosed).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.User{}).
			Where("id = ?", donation.DonorID).
			Update("last_donation", now).Error; err != nil {
			return err
		}

		var status string
		if err := tx.Model(&models.BloodRequest{}).
			Where("id = ?", request.ID).
			Select("status").
			Scan(&status).Error; err != nil {
			return err
		}
		closed = status == models.RequestStatusClosed

		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("✅ Donation verified: %s (+%d units on request %s)", donation.ID, donation.UnitsDonated, request.ID)

	if s.notifyService != nil {
		s.notifyService.NotifyDonationVerified(request, donation.UnitsDonated)
		if closed {
			s.notifyService.NotifyRequestClosed(request)
		}
	}

	return nil
}
