package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"lifelink/internal/adapters/persistence/models"
	"lifelink/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Blood request errors
var (
	ErrInvalidUrgency       = errors.New("invalid urgency level")
	ErrInvalidUnits         = errors.New("units required must be at least 1")
	ErrProfileNeedsLocation = errors.New("profile needs a location before creating requests")
)

// RequestService handles blood request business logic
type RequestService struct {
	requestRepo   *repositories.RequestRepository
	userRepo      repositories.UserRepository
	notifyService *NotificationService
}

// NewRequestService creates a new blood request service
func NewRequestService(
	requestRepo *repositories.RequestRepository,
	userRepo repositories.UserRepository,
	notifyService *NotificationService,
) *RequestService {
	return &RequestService{
		requestRepo:   requestRepo,
		userRepo:      userRepo,
		notifyService: notifyService,
	}
}

// CreateRequestInput represents blood request creation input
type CreateRequestInput struct {
	PatientName     string `json:"patient_name"`
	BloodType       string `json:"blood_type" validate:"required"`
	UnitsRequired   int    `json:"units_required" validate:"required,min=1"`
	Urgency         string `json:"urgency"`
	HospitalName    string `json:"hospital_name"`
	HospitalAddress string `json:"hospital_address"`
}

// Create creates a new OPEN blood request. The requester's profile must carry
// coordinates; they are copied onto the request so donors can be matched by
// distance even if the profile moves later.
func (s *RequestService) Create(ctx context.Context, requesterID string, input *CreateRequestInput) (*models.BloodRequest, error) {
	// 1. Validate blood type and units
	if !models.IsValidBloodType(input.BloodType) {
		return nil, ErrInvalidBloodType
	}
	if input.UnitsRequired < 1 {
		return nil, ErrInvalidUnits
	}

	// 2. Default and validate urgency
	urgency := strings.ToUpper(input.Urgency)
	if urgency == "" {
		urgency = models.UrgencyMedium
	}
	if !models.IsValidUrgency(urgency) {
		return nil, ErrInvalidUrgency
	}

	// 3. The requester must have set a location
	requester, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !requester.HasLocation() {
		return nil, ErrProfileNeedsLocation
	}

	// 4. Create the request with the profile's coordinates
	request := &models.BloodRequest{
		RequesterID:     requesterID,
		PatientName:     input.PatientName,
		BloodType:       input.BloodType,
		UnitsRequired:   input.UnitsRequired,
		UnitsFulfilled:  0,
		Urgency:         urgency,
		Status:          models.RequestStatusOpen,
		HospitalName:    input.HospitalName,
		HospitalAddress: input.HospitalAddress,
		Latitude:        requester.Latitude,
		Longitude:       requester.Longitude,
	}

	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, err
	}

	log.Printf("✅ Blood request created: %s (%s, %d units, %s)", request.ID, request.BloodType, request.UnitsRequired, request.Urgency)

	if s.notifyService != nil {
		s.notifyService.NotifyNewRequest(request, requester.FullName)
	}

	return request, nil
}

// GetByID gets a blood request by ID
func (s *RequestService) GetByID(ctx context.Context, id string) (*models.BloodRequest, error) {
	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return request, nil
}

// List lists blood requests with optional filters
func (s *RequestService) List(ctx context.Context, filter *repositories.ListFilter, offset, limit int) ([]*models.BloodRequest, int64, error) {
	if filter != nil {
		if filter.BloodType != "" && !models.IsValidBloodType(filter.BloodType) {
			return nil, 0, ErrInvalidBloodType
		}
		if filter.Urgency != "" && !models.IsValidUrgency(filter.Urgency) {
			return nil, 0, ErrInvalidUrgency
		}
	}
	return s.requestRepo.List(ctx, filter, offset, limit)
}

// ListMine lists the caller's own requests
func (s *RequestService) ListMine(ctx context.Context, requesterID string, offset, limit int) ([]*models.BloodRequest, int64, error) {
	return s.requestRepo.ListByRequester(ctx, requesterID, offset, limit)
}
