package services

import (
	"context"
	"errors"

	"lifelink/internal/adapters/persistence/models"
	"lifelink/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// DonationService handles donation history queries
type DonationService struct {
	donationRepo *repositories.DonationRepository
	requestRepo  *repositories.RequestRepository
}

// NewDonationService creates a new donation service
func NewDonationService(
	donationRepo *repositories.DonationRepository,
	requestRepo *repositories.RequestRepository,
) *DonationService {
	return &DonationService{
		donationRepo: donationRepo,
		requestRepo:  requestRepo,
	}
}

// ListMyDonations lists the caller's finalized donations, newest first.
// Pending donations are excluded; they only become history once verified.
func (s *DonationService) ListMyDonations(ctx context.Context, donorID string, offset, limit int) ([]*models.Donation, int64, error) {
	return s.donationRepo.ListByDonor(ctx, donorID, offset, limit)
}

// ListForRequest lists finalized donations against a request. Only the
// request's owner may see who donated to it.
func (s *DonationService) ListForRequest(ctx context.Context, callerID, requestID string) ([]*models.Donation, error) {
	if _, err := s.requestRepo.GetOwnedBy(ctx, requestID, callerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return s.donationRepo.ListByRequest(ctx, requestID)
}
