package services

import (
	"context"
	"testing"

	"lifelink/internal/adapters/persistence/models"
	"lifelink/internal/adapters/persistence/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestUserService(db *gorm.DB) *UserService {
	return NewUserService(repositories.NewUserRepository(db))
}

func TestUpdateProfilePartial(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestUserService(db)
	ctx := context.Background()

	donor := createTestUser(t, db, models.RoleDonor, "O+")

	phone := "9876543210"
	available := false
	updated, err := svc.UpdateProfile(ctx, donor.ID, &UpdateProfileInput{
		Phone:       &phone,
		IsAvailable: &available,
	})
	require.NoError(t, err)

	assert.Equal(t, "9876543210", updated.Phone)
	assert.False(t, updated.IsAvailable)
	// Untouched fields survive
	assert.Equal(t, donor.FullName, updated.FullName)
	assert.Equal(t, "O+", updated.BloodType)

	badType := "Q+"
	_, err = svc.UpdateProfile(ctx, donor.ID, &UpdateProfileInput{BloodType: &badType})
	assert.ErrorIs(t, err, ErrInvalidBloodType)
}

func TestFindDonors(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestUserService(db)
	ctx := context.Background()

	createTestUser(t, db, models.RoleDonor, "O+")
	createTestUser(t, db, models.RoleDonor, "A+")
	createTestUser(t, db, models.RoleRecipient, "O+")

	donors, total, err := svc.FindDonors(ctx, "O+", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, donors, 1)
	assert.Equal(t, models.RoleDonor, donors[0].Role)

	_, _, err = svc.FindDonors(ctx, "X+", 0, 10)
	assert.ErrorIs(t, err, ErrInvalidBloodType)
}

func TestDeactivateAndReactivateUser(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestUserService(db)
	ctx := context.Background()

	donor := createTestUser(t, db, models.RoleDonor, "O+")

	require.NoError(t, svc.DeactivateUser(ctx, donor.ID))

	var fresh models.User
	require.NoError(t, db.First(&fresh, "id = ?", donor.ID).Error)
	assert.False(t, fresh.IsActive)
	assert.False(t, fresh.IsAvailable)

	require.NoError(t, svc.ReactivateUser(ctx, donor.ID))
	require.NoError(t, db.First(&fresh, "id = ?", donor.ID).Error)
	assert.True(t, fresh.IsActive)
	// Availability stays opted out until the donor flips it back
	assert.False(t, fresh.IsAvailable)

	err := svc.DeactivateUser(ctx, "3b0d5a3e-0000-4000-8000-000000000000")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSetUserRole(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestUserService(db)
	ctx := context.Background()

	donor := createTestUser(t, db, models.RoleDonor, "O+")

	require.NoError(t, svc.SetUserRole(ctx, donor.ID, "recipient"))

	var fresh models.User
	require.NoError(t, db.First(&fresh, "id = ?", donor.ID).Error)
	assert.Equal(t, models.RoleRecipient, fresh.Role)
	assert.False(t, fresh.IsAvailable)

	err := svc.SetUserRole(ctx, donor.ID, "SUPERUSER")
	assert.ErrorIs(t, err, ErrInvalidRole)
}
