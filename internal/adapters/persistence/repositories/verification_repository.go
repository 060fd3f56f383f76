package repositories

import (
	"context"

	"lifelink/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// VerificationRepository handles donation verification persistence
type VerificationRepository struct {
	db *gorm.DB
}

// NewVerificationRepository creates a new verification repository
func NewVerificationRepository(db *gorm.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

// FindPending finds a PENDING verification by ID scoped to its recipient,
// preloading the donation and its blood request. VERIFIED and EXPIRED rows
// are invisible here so callers cannot probe terminal states.
func (r *VerificationRepository) FindPending(ctx context.Context, id, recipientID string) (*models.DonationVerification, error) {
	var verification models.DonationVerification
	err := r.db.WithContext(ctx).
		Preload("Donation").
		Preload("Donation.BloodRequest").
		Where("id = ?", id).
		Where("recipient_id = ?", recipientID).
		Where("status = ?", models.VerificationStatusPending).
		First(&verification).Error
	if err != nil {
		return nil, err
	}
	return &verification, nil
}

// MarkExpired transitions a PENDING verification to EXPIRED (lazy expiry).
// The conditional status guard keeps the transition monotonic.
func (r *VerificationRepository) MarkExpired(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&models.DonationVerification{}).
		Where("id = ?", id).
		Where("status = ?", models.VerificationStatusPending).
		Update("status", models.VerificationStatusExpired).Error
}

// HasPendingForDonorAndRequest reports whether a donor already has an
// in-flight verification against a request
func (r *VerificationRepository) HasPendingForDonorAndRequest(ctx context.Context, donorID, requestID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.DonationVerification{}).
		Joins("JOIN donations ON donations.id = donation_verifications.donation_id").
		Where("donations.donor_id = ?", donorID).
		Where("donations.blood_request_id = ?", requestID).
		Where("donation_verifications.status = ?", models.VerificationStatusPending).
		Count(&count).Error
	return count > 0, err
}

// CountByStatus counts verifications in a given status
func (r *VerificationRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.DonationVerification{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}
