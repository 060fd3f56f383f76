package repositories

import (
	"context"

	"lifelink/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// RequestRepository handles blood request persistence
type RequestRepository struct {
	db *gorm.DB
}

// NewRequestRepository creates a new blood request repository
func NewRequestRepository(db *gorm.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create creates a new blood request
func (r *RequestRepository) Create(ctx context.Context, request *models.BloodRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

// GetByID gets a blood request by ID
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*models.BloodRequest, error) {
	var request models.BloodRequest
	err := r.db.WithContext(ctx).
		Preload("Requester").
		Where("id = ?", id).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// GetOwnedBy gets a blood request by ID only if it belongs to the given
// requester. Not-exists and not-owned are indistinguishable to the caller.
func (r *RequestRepository) GetOwnedBy(ctx context.Context, id, requesterID string) (*models.BloodRequest, error) {
	var request models.BloodRequest
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Where("requester_id = ?", requesterID).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// ListFilter holds optional list filters
type ListFilter struct {
	BloodType string
	Urgency   string
	Status    string
}

// List lists blood requests with filters and pagination, newest first
func (r *RequestRepository) List(ctx context.Context, filter *ListFilter, offset, limit int) ([]*models.BloodRequest, int64, error) {
	var requests []*models.BloodRequest
	var total int64

	query := r.db.WithContext(ctx).Model(&models.BloodRequest{})
	if filter != nil {
		if filter.BloodType != "" {
			query = query.Where("blood_type = ?", filter.BloodType)
		}
		if filter.Urgency != "" {
			query = query.Where("urgency = ?", filter.Urgency)
		}
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("Requester").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

// ListByRequester lists all requests created by a user, newest first
func (r *RequestRepository) ListByRequester(ctx context.Context, requesterID string, offset, limit int) ([]*models.BloodRequest, int64, error) {
	var requests []*models.BloodRequest
	var total int64

	query := r.db.WithContext(ctx).Model(&models.BloodRequest{}).
		Where("requester_id = ?", requesterID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

// CountOpenByUrgency counts open requests for an urgency level
func (r *RequestRepository) CountOpenByUrgency(ctx context.Context, urgency string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.BloodRequest{}).
		Where("status = ?", models.RequestStatusOpen).
		Where("urgency = ?", urgency).
		Count(&count).Error
	return count, err
}

// ListOpenCritical lists all open CRITICAL requests (for reminder jobs)
func (r *RequestRepository) ListOpenCritical(ctx context.Context) ([]*models.BloodRequest, error) {
	var requests []*models.BloodRequest
	err := r.db.WithContext(ctx).
		Where("status = ?", models.RequestStatusOpen).
		Where("urgency = ?", models.UrgencyCritical).
		Order("created_at ASC").
		Find(&requests).Error
	return requests, err
}
