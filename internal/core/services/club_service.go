package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"lifelink/internal/adapters/persistence/models"
	"lifelink/internal/adapters/persistence/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Club errors
var (
	ErrClubNotFound      = errors.New("club not found")
	ErrClubNotOwned      = errors.New("club is not managed by caller")
	ErrClubNameRequired  = errors.New("club name is required")
	ErrClubNameTaken     = errors.New("club name already registered")
	ErrEventNotFound     = errors.New("event not found")
	ErrEventFull         = errors.New("event has reached its donor target")
	ErrEventDateInPast   = errors.New("event date must be in the future")
	ErrInvalidEventTitle = errors.New("event title is required")
)

// ClubService handles partner clubs and their blood drive events
type ClubService struct {
	clubRepo      *repositories.ClubRepository
	notifyService *NotificationService
}

// NewClubService creates a new club service
func NewClubService(clubRepo *repositories.ClubRepository, notifyService *NotificationService) *ClubService {
	return &ClubService{
		clubRepo:      clubRepo,
		notifyService: notifyService,
	}
}

// RegisterClubInput represents club registration input
type RegisterClubInput struct {
	Name            string `json:"name" validate:"required"`
	District        string `json:"district"`
	City            string `json:"city"`
	State           string `json:"state"`
	Description     string `json:"description"`
	Website         string `json:"website"`
	PresidentName   string `json:"president_name"`
	PresidentEmail  string `json:"president_email"`
	PresidentPhone  string `json:"president_phone"`
	MeetingDay      string `json:"meeting_day"`
	MeetingTime     string `json:"meeting_time"`
	MeetingLocation string `json:"meeting_location"`
}

// CreateEventInput represents blood drive event creation input
type CreateEventInput struct {
	ClubID       string    `json:"club_id" validate:"required"`
	Title        string    `json:"title" validate:"required"`
	Description  string    `json:"description"`
	EventDate    time.Time `json:"event_date" validate:"required"`
	StartTime    string    `json:"start_time"`
	EndTime      string    `json:"end_time"`
	VenueName    string    `json:"venue_name"`
	VenueAddress string    `json:"venue_address"`
	TargetDonors int       `json:"target_donors"`
}

// RegisterClub registers a new partner club
func (s *ClubService) RegisterClub(ctx context.Context, registeredByID string, input *RegisterClubInput) (*models.Club, error) {
	// 1. Validate name
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrClubNameRequired
	}

	// 2. Club names are unique
	taken, err := s.clubRepo.ExistsByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrClubNameTaken
	}

	// 3. Create
	club := &models.Club{
		Name:            name,
		District:        input.District,
		City:            input.City,
		State:           input.State,
		Description:     input.Description,
		Website:         input.Website,
		PresidentName:   input.PresidentName,
		PresidentEmail:  input.PresidentEmail,
		PresidentPhone:  input.PresidentPhone,
		MeetingDay:      input.MeetingDay,
		MeetingTime:     input.MeetingTime,
		MeetingLocation: input.MeetingLocation,
		RegisteredByID:  registeredByID,
		IsActive:        true,
	}
	if err := s.clubRepo.Create(ctx, club); err != nil {
		return nil, err
	}

	log.Printf("✅ Club registered: %s (%s)", club.Name, club.City)
	return club, nil
}

// UpdateClubInput represents club update input
type UpdateClubInput struct {
	District        *string `json:"district"`
	City            *string `json:"city"`
	State           *string `json:"state"`
	Description     *string `json:"description"`
	Website         *string `json:"website"`
	PresidentName   *string `json:"president_name"`
	PresidentEmail  *string `json:"president_email"`
	PresidentPhone  *string `json:"president_phone"`
	MeetingDay      *string `json:"meeting_day"`
	MeetingTime     *string `json:"meeting_time"`
	MeetingLocation *string `json:"meeting_location"`
}

// UpdateClub applies a partial update to a club. Only the user who registered
// the club or an admin may update it.
func (s *ClubService) UpdateClub(ctx context.Context, callerID, callerRole, clubID string, input *UpdateClubInput) (*models.Club, error) {
	// 1. Load the club
	club, err := s.clubRepo.GetByID(ctx, clubID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}

	// 2. Ownership check
	if club.RegisteredByID != callerID && callerRole != models.RoleAdmin {
		return nil, ErrClubNotOwned
	}

	// 3. Apply provided fields only
	if input.District != nil {
		club.District = *input.District
	}
	if input.City != nil {
		club.City = *input.City
	}
	if input.State != nil {
		club.State = *input.State
	}
	if input.Description != nil {
		club.Description = *input.Description
	}
	if input.Website != nil {
		club.Website = *input.Website
	}
	if input.PresidentName != nil {
		club.PresidentName = *input.PresidentName
	}
	if input.PresidentEmail != nil {
		club.PresidentEmail = *input.PresidentEmail
	}
	if input.PresidentPhone != nil {
		club.PresidentPhone = *input.PresidentPhone
	}
	if input.MeetingDay != nil {
		club.MeetingDay = *input.MeetingDay
	}
	if input.MeetingTime != nil {
		club.MeetingTime = *input.MeetingTime
	}
	if input.MeetingLocation != nil {
		club.MeetingLocation = *input.MeetingLocation
	}

	// 4. Save
	if err := s.clubRepo.Update(ctx, club); err != nil {
		return nil, err
	}

	log.Printf("✅ Club updated: %s", club.Name)
	return club, nil
}

// GetClub gets a club by ID
func (s *ClubService) GetClub(ctx context.Context, id string) (*models.Club, error) {
	club, err := s.clubRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}
	return club, nil
}

// ListClubs lists active clubs
func (s *ClubService) ListClubs(ctx context.Context, offset, limit int) ([]*models.Club, int64, error) {
	return s.clubRepo.List(ctx, offset, limit)
}

// CreateEvent creates a blood drive event under a club
func (s *ClubService) CreateEvent(ctx context.Context, organizerID string, input *CreateEventInput) (*models.BloodDriveEvent, error) {
	// 1. Validate input
	if _, err := uuid.Parse(input.ClubID); err != nil {
		return nil, ErrMalformedID
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrInvalidEventTitle
	}
	if input.EventDate.Before(time.Now().Truncate(24 * time.Hour)) {
		return nil, ErrEventDateInPast
	}

	// 2. The club must exist
	club, err := s.clubRepo.GetByID(ctx, input.ClubID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}

	// 3. Create
	event := &models.BloodDriveEvent{
		ClubID:       club.ID,
		OrganizerID:  organizerID,
		Title:        strings.TrimSpace(input.Title),
		Description:  input.Description,
		EventDate:    input.EventDate,
		StartTime:    input.StartTime,
		EndTime:      input.EndTime,
		VenueName:    input.VenueName,
		VenueAddress: input.VenueAddress,
		TargetDonors: input.TargetDonors,
		IsActive:     true,
	}
	if err := s.clubRepo.CreateEvent(ctx, event); err != nil {
		return nil, err
	}

	log.Printf("✅ Blood drive event created: %s (%s)", event.Title, event.EventDate.Format("2006-01-02"))

	if s.notifyService != nil {
		s.notifyService.NotifyNewEvent(event, club.Name)
	}

	return event, nil
}

// ListUpcomingEvents lists active events on or after today
func (s *ClubService) ListUpcomingEvents(ctx context.Context, offset, limit int) ([]*models.BloodDriveEvent, int64, error) {
	return s.clubRepo.ListUpcomingEvents(ctx, offset, limit)
}

// RegisterForEvent registers a donor for an event. The counter increment is
// conditional on the donor target so a full event never overbooks.
func (s *ClubService) RegisterForEvent(ctx context.Context, eventID string) error {
	if _, err := uuid.Parse(eventID); err != nil {
		return ErrMalformedID
	}

	affected, err := s.clubRepo.IncrementRegisteredDonors(ctx, eventID)
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	// Distinguish a full event from a missing one
	if _, err := s.clubRepo.GetEventByID(ctx, eventID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		return err
	}
	return ErrEventFull
}
