package services

import (
	"context"
	"testing"
	"time"

	"lifelink/internal/adapters/persistence/models"
	"lifelink/internal/adapters/persistence/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestClubService(db *gorm.DB) *ClubService {
	return NewClubService(repositories.NewClubRepository(db), nil)
}

func TestRegisterClub(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestClubService(db)
	ctx := context.Background()

	admin := createTestUser(t, db, models.RoleAdmin, "O+")

	club, err := svc.RegisterClub(ctx, admin.ID, &RegisterClubInput{
		Name: "Rotaract Club of Pune Central",
		City: "Pune",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, club.ID)
	assert.True(t, club.IsActive)

	// Names are unique
	_, err = svc.RegisterClub(ctx, admin.ID, &RegisterClubInput{Name: "Rotaract Club of Pune Central"})
	assert.ErrorIs(t, err, ErrClubNameTaken)

	_, err = svc.RegisterClub(ctx, admin.ID, &RegisterClubInput{Name: "   "})
	assert.ErrorIs(t, err, ErrClubNameRequired)
}

func TestUpdateClub(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestClubService(db)
	ctx := context.Background()

	admin := createTestUser(t, db, models.RoleAdmin, "O+")
	registrant := createTestUser(t, db, models.RoleRecipient, "A+")
	stranger := createTestUser(t, db, models.RoleDonor, "B+")

	club, err := svc.RegisterClub(ctx, registrant.ID, &RegisterClubInput{Name: "Rotaract Club of Aundh", City: "Pune"})
	require.NoError(t, err)

	newCity := "Mumbai"
	updated, err := svc.UpdateClub(ctx, registrant.ID, models.RoleRecipient, club.ID, &UpdateClubInput{City: &newCity})
	require.NoError(t, err)
	assert.Equal(t, "Mumbai", updated.City)
	// Untouched fields survive a partial update
	assert.Equal(t, "Rotaract Club of Aundh", updated.Name)

	// Only the registrant or an admin may update
	_, err = svc.UpdateClub(ctx, stranger.ID, models.RoleDonor, club.ID, &UpdateClubInput{City: &newCity})
	assert.ErrorIs(t, err, ErrClubNotOwned)

	_, err = svc.UpdateClub(ctx, admin.ID, models.RoleAdmin, club.ID, &UpdateClubInput{City: &newCity})
	assert.NoError(t, err)

	_, err = svc.UpdateClub(ctx, admin.ID, models.RoleAdmin, "3b0d5a3e-0000-4000-8000-000000000000", &UpdateClubInput{})
	assert.ErrorIs(t, err, ErrClubNotFound)
}

func TestCreateEvent(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestClubService(db)
	ctx := context.Background()

	admin := createTestUser(t, db, models.RoleAdmin, "O+")
	club, err := svc.RegisterClub(ctx, admin.ID, &RegisterClubInput{Name: "Rotaract Club of Deccan"})
	require.NoError(t, err)

	event, err := svc.CreateEvent(ctx, admin.ID, &CreateEventInput{
		ClubID:       club.ID,
		Title:        "Monsoon Blood Drive",
		EventDate:    time.Now().AddDate(0, 0, 14),
		TargetDonors: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, club.ID, event.ClubID)
	assert.Equal(t, 0, event.RegisteredDonors)

	_, err = svc.CreateEvent(ctx, admin.ID, &CreateEventInput{
		ClubID:    club.ID,
		Title:     "Last Year's Drive",
		EventDate: time.Now().AddDate(0, 0, -7),
	})
	assert.ErrorIs(t, err, ErrEventDateInPast)

	_, err = svc.CreateEvent(ctx, admin.ID, &CreateEventInput{
		ClubID:    club.ID,
		Title:     "  ",
		EventDate: time.Now().AddDate(0, 0, 7),
	})
	assert.ErrorIs(t, err, ErrInvalidEventTitle)

	_, err = svc.CreateEvent(ctx, admin.ID, &CreateEventInput{
		ClubID:    "3b0d5a3e-0000-4000-8000-000000000000",
		Title:     "Orphan Drive",
		EventDate: time.Now().AddDate(0, 0, 7),
	})
	assert.ErrorIs(t, err, ErrClubNotFound)
}

func TestRegisterForEvent(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestClubService(db)
	ctx := context.Background()

	admin := createTestUser(t, db, models.RoleAdmin, "O+")
	club, err := svc.RegisterClub(ctx, admin.ID, &RegisterClubInput{Name: "Rotaract Club of Kothrud"})
	require.NoError(t, err)

	event, err := svc.CreateEvent(ctx, admin.ID, &CreateEventInput{
		ClubID:       club.ID,
		Title:        "Weekend Drive",
		EventDate:    time.Now().AddDate(0, 0, 7),
		TargetDonors: 2,
	})
	require.NoError(t, err)

	require.NoError(t, svc.RegisterForEvent(ctx, event.ID))
	require.NoError(t, svc.RegisterForEvent(ctx, event.ID))

	// Third registration hits the donor target
	err = svc.RegisterForEvent(ctx, event.ID)
	assert.ErrorIs(t, err, ErrEventFull)

	var fresh models.BloodDriveEvent
	require.NoError(t, db.First(&fresh, "id = ?", event.ID).Error)
	assert.Equal(t, 2, fresh.RegisteredDonors)

	err = svc.RegisterForEvent(ctx, "3b0d5a3e-0000-4000-8000-000000000000")
	assert.ErrorIs(t, err, ErrEventNotFound)
}
