package services

import (
	"testing"

	"lifelink/internal/adapters/persistence/models"
	"lifelink/internal/adapters/persistence/repositories"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an isolated in-memory database. The pool is pinned to a
// single connection so every goroutine sees the same memory database and
// writes serialize deterministically.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.AutoMigrate(db))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, role, bloodType string) *models.User {
	t.Helper()

	lat, lng := 18.5204, 73.8567
	user := &models.User{
		Email:       randomEmail(t),
		Password:    "not-a-real-hash",
		FullName:    "Test User",
		Role:        role,
		BloodType:   bloodType,
		City:        "Pune",
		Latitude:    &lat,
		Longitude:   &lng,
		IsAvailable: role == models.RoleDonor,
		IsActive:    true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestRequest(t *testing.T, db *gorm.DB, requesterID string, unitsRequired int) *models.BloodRequest {
	t.Helper()

	request := &models.BloodRequest{
		RequesterID:   requesterID,
		BloodType:     "O+",
		UnitsRequired: unitsRequired,
		Urgency:       models.UrgencyHigh,
		Status:        models.RequestStatusOpen,
		HospitalName:  "City Hospital",
	}
	require.NoError(t, db.Create(request).Error)
	return request
}

var emailCounter int

func randomEmail(t *testing.T) string {
	t.Helper()
	emailCounter++
	return "user" + string(rune('a'+emailCounter%26)) + "-" + t.Name() + "@example.com"
}

func newTestVerificationService(db *gorm.DB) *VerificationService {
	return NewVerificationService(
		db,
		repositories.NewRequestRepository(db),
		repositories.NewVerificationRepository(db),
		nil,
	)
}
