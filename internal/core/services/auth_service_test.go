package services

import (
	"context"
	"testing"

	"lifelink/internal/adapters/persistence/models"
	"lifelink/internal/adapters/persistence/repositories"
	"lifelink/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestAuthService(db *gorm.DB) *AuthService {
	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:           "test-access-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
	}
	return NewAuthService(
		repositories.NewUserRepository(db),
		repositories.NewRefreshTokenRepository(db),
		cfg,
	)
}

func TestRegister(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(db)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &RegisterInput{
		Email:     "  Donor@Example.COM ",
		Password:  "supersecret",
		FullName:  "Priya Sharma",
		Role:      "donor",
		BloodType: "AB-",
		City:      "Mumbai",
	})
	require.NoError(t, err)

	assert.Equal(t, "donor@example.com", resp.User.Email)
	assert.Equal(t, models.RoleDonor, resp.User.Role)
	assert.True(t, resp.User.IsAvailable)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	// Recipients start unavailable as donors
	resp2, err := svc.Register(ctx, &RegisterInput{
		Email:     "recipient@example.com",
		Password:  "supersecret",
		FullName:  "Rahul Mehta",
		Role:      "RECIPIENT",
		BloodType: "O+",
	})
	require.NoError(t, err)
	assert.False(t, resp2.User.IsAvailable)

	// The stored row agrees, not just the in-memory struct
	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", resp2.User.ID).Error)
	assert.False(t, stored.IsAvailable)
}

func TestRegisterValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(db)
	ctx := context.Background()

	base := RegisterInput{
		Email:     "a@example.com",
		Password:  "supersecret",
		FullName:  "A",
		Role:      "DONOR",
		BloodType: "A+",
	}

	admin := base
	admin.Role = "ADMIN"
	_, err := svc.Register(ctx, &admin)
	assert.ErrorIs(t, err, ErrInvalidRole)

	badBlood := base
	badBlood.BloodType = "H+"
	_, err = svc.Register(ctx, &badBlood)
	assert.ErrorIs(t, err, ErrInvalidBloodType)

	weak := base
	weak.Password = "short"
	_, err = svc.Register(ctx, &weak)
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = svc.Register(ctx, &base)
	require.NoError(t, err)
	_, err = svc.Register(ctx, &base)
	assert.ErrorIs(t, err, ErrEmailAlreadyUsed)
}

func TestLogin(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(db)
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterInput{
		Email:     "login@example.com",
		Password:  "supersecret",
		FullName:  "Login User",
		Role:      "DONOR",
		BloodType: "B-",
	})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, &LoginInput{Email: "login@example.com", Password: "supersecret"})
	require.NoError(t, err)
	assert.Equal(t, "login@example.com", resp.User.Email)

	_, err = svc.Login(ctx, &LoginInput{Email: "login@example.com", Password: "wrongwrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown email reads the same as a bad password
	_, err = svc.Login(ctx, &LoginInput{Email: "nobody@example.com", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginInactiveUser(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(db)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &RegisterInput{
		Email:     "inactive@example.com",
		Password:  "supersecret",
		FullName:  "Inactive User",
		Role:      "DONOR",
		BloodType: "O-",
	})
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.User{}).
		Where("id = ?", resp.User.ID).
		Update("is_active", false).Error)

	_, err = svc.Login(ctx, &LoginInput{Email: "inactive@example.com", Password: "supersecret"})
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestRefreshTokenRotation(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(db)
	ctx := context.Background()

	registered, err := svc.Register(ctx, &RegisterInput{
		Email:     "rotate@example.com",
		Password:  "supersecret",
		FullName:  "Rotate User",
		Role:      "RECIPIENT",
		BloodType: "A-",
	})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(ctx, registered.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, registered.RefreshToken, refreshed.RefreshToken)

	// The old token was rotated out and cannot be replayed
	_, err = svc.RefreshToken(ctx, registered.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestLogoutAll(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(db)
	ctx := context.Background()

	registered, err := svc.Register(ctx, &RegisterInput{
		Email:     "logoutall@example.com",
		Password:  "supersecret",
		FullName:  "Logout User",
		Role:      "DONOR",
		BloodType: "AB+",
	})
	require.NoError(t, err)

	second, err := svc.Login(ctx, &LoginInput{Email: "logoutall@example.com", Password: "supersecret"})
	require.NoError(t, err)

	require.NoError(t, svc.LogoutAll(ctx, registered.User.ID))

	_, err = svc.RefreshToken(ctx, registered.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
	_, err = svc.RefreshToken(ctx, second.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}
