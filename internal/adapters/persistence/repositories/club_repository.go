package repositories

import (
	"context"
	"time"

	"lifelink/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// ClubRepository handles club and blood drive event persistence
type ClubRepository struct {
	db *gorm.DB
}

// NewClubRepository creates a new club repository
func NewClubRepository(db *gorm.DB) *ClubRepository {
	return &ClubRepository{db: db}
}

// Create creates a new club
func (r *ClubRepository) Create(ctx context.Context, club *models.Club) error {
	return r.db.WithContext(ctx).Create(club).Error
}

// GetByID gets a club by ID
func (r *ClubRepository) GetByID(ctx context.Context, id string) (*models.Club, error) {
	var club models.Club
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&club).Error
	if err != nil {
		return nil, err
	}
	return &club, nil
}

// Update updates a club
func (r *ClubRepository) Update(ctx context.Context, club *models.Club) error {
	return r.db.WithContext(ctx).Save(club).Error
}

// List lists active clubs with pagination
func (r *ClubRepository) List(ctx context.Context, offset, limit int) ([]*models.Club, int64, error) {
	var clubs []*models.Club
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Club{}).Where("is_active = ?", true)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Offset(offset).Limit(limit).Order("name ASC").Find(&clubs).Error; err != nil {
		return nil, 0, err
	}

	return clubs, total, nil
}

// ExistsByName checks if a club name is already taken
func (r *ClubRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Club{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}

// CreateEvent creates a new blood drive event
func (r *ClubRepository) CreateEvent(ctx context.Context, event *models.BloodDriveEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// GetEventByID gets a blood drive event by ID
func (r *ClubRepository) GetEventByID(ctx context.Context, id string) (*models.BloodDriveEvent, error) {
	var event models.BloodDriveEvent
	err := r.db.WithContext(ctx).Preload("Club").Where("id = ?", id).First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// ListUpcomingEvents lists active events on or after today, soonest first
func (r *ClubRepository) ListUpcomingEvents(ctx context.Context, offset, limit int) ([]*models.BloodDriveEvent, int64, error) {
	var events []*models.BloodDriveEvent
	var total int64

	today := time.Now().Truncate(24 * time.Hour)
	query := r.db.WithContext(ctx).Model(&models.BloodDriveEvent{}).
		Where("is_active = ?", true).
		Where("event_date >= ?", today)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("Club").
		Offset(offset).Limit(limit).
		Order("event_date ASC").
		Find(&events).Error; err != nil {
		return nil, 0, err
	}

	return events, total, nil
}

// ListEventsByClub lists a club's events, soonest first
func (r *ClubRepository) ListEventsByClub(ctx context.Context, clubID string) ([]*models.BloodDriveEvent, error) {
	var events []*models.BloodDriveEvent
	err := r.db.WithContext(ctx).
		Where("club_id = ?", clubID).
		Order("event_date ASC").
		Find(&events).Error
	return events, err
}

// IncrementRegisteredDonors bumps an event's registered donor count if the
// target has not been reached. Returns the rows affected so callers can tell
// a full event from a missing one.
func (r *ClubRepository) IncrementRegisteredDonors(ctx context.Context, eventID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.BloodDriveEvent{}).
		Where("id = ?", eventID).
		Where("is_active = ?", true).
		Where("registered_donors < target_donors").
		Update("registered_donors", gorm.Expr("registered_donors + 1"))
	return result.RowsAffected, result.Error
}
