package repositories

import (
	"context"

	"lifelink/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// DonationRepository handles donation persistence
type DonationRepository struct {
	db *gorm.DB
}

// NewDonationRepository creates a new donation repository
func NewDonationRepository(db *gorm.DB) *DonationRepository {
	return &DonationRepository{db: db}
}

// GetByID gets a donation by ID
func (r *DonationRepository) GetByID(ctx context.Context, id string) (*models.Donation, error) {
	var donation models.Donation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&donation).Error
	if err != nil {
		return nil, err
	}
	return &donation, nil
}

// ListByDonor lists a donor's finalized donations, newest first
func (r *DonationRepository) ListByDonor(ctx context.Context, donorID string, offset, limit int) ([]*models.Donation, int64, error) {
	var donations []*models.Donation
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Donation{}).
		Where("donor_id = ?", donorID).
		Where("donation_date IS NOT NULL")

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("BloodRequest").
		Offset(offset).Limit(limit).
		Order("donation_date DESC").
		Find(&donations).Error; err != nil {
		return nil, 0, err
	}

	return donations, total, nil
}

// ListByRequest lists finalized donations made against a request
func (r *DonationRepository) ListByRequest(ctx context.Context, requestID string) ([]*models.Donation, error) {
	var donations []*models.Donation
	err := r.db.WithContext(ctx).
		Preload("Donor").
		Where("blood_request_id = ?", requestID).
		Where("donation_date IS NOT NULL").
		Order("donation_date DESC").
		Find(&donations).Error
	return donations, err
}

// SumVerifiedUnits totals all finalized donated units
func (r *DonationRepository) SumVerifiedUnits(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Donation{}).
		Where("donation_date IS NOT NULL").
		Select("COALESCE(SUM(units_donated), 0)").
		Scan(&total).Error
	return total, err
}
