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

// UserService handles user profile business logic
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// UpdateProfileInput represents profile update input
type UpdateProfileInput struct {
	FullName              *string  `json:"full_name"`
	Phone                 *string  `json:"phone"`
	BloodType             *string  `json:"blood_type"`
	City                  *string  `json:"city"`
	Latitude              *float64 `json:"latitude"`
	Longitude             *float64 `json:"longitude"`
	IsAvailable           *bool    `json:"is_available"`
	MedicalConditions     *string  `json:"medical_conditions"`
	EmergencyContactName  *string  `json:"emergency_contact_name"`
	EmergencyContactPhone *string  `json:"emergency_contact_phone"`
}

// GetProfile gets a user's profile
func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile applies a partial update to the caller's profile
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input *UpdateProfileInput) (*models.User, error) {
	// 1. Load current profile
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	// 2. Validate blood type if changing
	if input.BloodType != nil {
		if !models.IsValidBloodType(*input.BloodType) {
			return nil, ErrInvalidBloodType
		}
		user.BloodType = *input.BloodType
	}

	// 3. Apply provided fields only
	if input.FullName != nil {
		user.FullName = *input.FullName
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.City != nil {
		user.City = *input.City
	}
	if input.Latitude != nil {
		user.Latitude = input.Latitude
	}
	if input.Longitude != nil {
		user.Longitude = input.Longitude
	}
	if input.IsAvailable != nil {
		user.IsAvailable = *input.IsAvailable
	}
	if input.MedicalConditions != nil {
		user.MedicalConditions = *input.MedicalConditions
	}
	if input.EmergencyContactName != nil {
		user.EmergencyContactName = *input.EmergencyContactName
	}
	if input.EmergencyContactPhone != nil {
		user.EmergencyContactPhone = *input.EmergencyContactPhone
	}

	// 4. Save
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("✅ Profile updated: %s", user.Email)
	return user, nil
}

// FindDonors lists active, available donors, optionally filtered by blood
// type, least-recent donors first
func (s *UserService) FindDonors(ctx context.Context, bloodType string, offset, limit int) ([]*models.User, int64, error) {
	if bloodType != "" && !models.IsValidBloodType(bloodType) {
		return nil, 0, ErrInvalidBloodType
	}
	return s.userRepo.ListAvailableDonors(ctx, bloodType, offset, limit)
}

// ListUsers lists all users (admin)
func (s *UserService) ListUsers(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	return s.userRepo.List(ctx, offset, limit)
}

// DeactivateUser deactivates a user account (admin)
func (s *UserService) DeactivateUser(ctx context.Context, userID string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	user.IsActive = false
	user.IsAvailable = false
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	log.Printf("✅ User deactivated: %s", user.Email)
	return nil
}

// ReactivateUser reactivates a deactivated account (admin). Donors come back
// unavailable and opt in again themselves.
func (s *UserService) ReactivateUser(ctx context.Context, userID string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	user.IsActive = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	log.Printf("✅ User reactivated: %s", user.Email)
	return nil
}

// SetUserRole changes a user's role (admin)
func (s *UserService) SetUserRole(ctx context.Context, userID, role string) error {
	role = strings.ToUpper(role)
	if role != models.RoleDonor && role != models.RoleRecipient && role != models.RoleAdmin {
		return ErrInvalidRole
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	user.Role = role
	if role != models.RoleDonor {
		user.IsAvailable = false
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	log.Printf("✅ Role changed for %s: %s", user.Email, role)
	return nil
}
