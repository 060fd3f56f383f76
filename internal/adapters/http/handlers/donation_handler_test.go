package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"lifelink/internal/adapters/http/middleware"
	"lifelink/internal/adapters/persistence/models"
	"lifelink/internal/adapters/persistence/repositories"
	"lifelink/internal/config"
	"lifelink/internal/core/services"
	"lifelink/internal/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type donationTestEnv struct {
	app *fiber.App
	db  *gorm.DB
	cfg *config.Config
}

func newDonationTestEnv(t *testing.T) *donationTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, models.AutoMigrate(db))

	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:           "handler-test-secret",
			RefreshSecret:    "handler-test-refresh",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
	}

	requestRepo := repositories.NewRequestRepository(db)
	verificationRepo := repositories.NewVerificationRepository(db)
	donationRepo := repositories.NewDonationRepository(db)

	verificationService := services.NewVerificationService(db, requestRepo, verificationRepo, nil)
	donationService := services.NewDonationService(donationRepo, requestRepo)
	handler := NewDonationHandler(verificationService, donationService)

	app := fiber.New()
	donations := app.Group("/donations", middleware.AuthMiddleware(cfg))
	donations.Post("/initiate-verification", handler.InitiateVerification)
	donations.Post("/complete-verification", handler.CompleteVerification)
	donations.Get("/my", handler.MyDonations)

	return &donationTestEnv{app: app, db: db, cfg: cfg}
}

func (e *donationTestEnv) createUser(t *testing.T, email, role string) *models.User {
	t.Helper()
	lat, lng := 18.52, 73.85
	user := &models.User{
		Email:     email,
		Password:  "not-a-real-hash",
		FullName:  "Handler Test User",
		Role:      role,
		BloodType: "O+",
		Latitude:  &lat,
		Longitude: &lng,
		IsActive:  true,
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *donationTestEnv) tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := jwt.GenerateAccessToken(user.ID, user.Email, user.Role, e.cfg.JWT.Secret, e.cfg.JWT.AccessTokenMins)
	require.NoError(t, err)
	return token
}

func (e *donationTestEnv) request(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestInitiateVerificationEndpoint(t *testing.T) {
	env := newDonationTestEnv(t)

	recipient := env.createUser(t, "recipient@example.com", models.RoleRecipient)
	donor := env.createUser(t, "donor@example.com", models.RoleDonor)
	request := &models.BloodRequest{
		RequesterID:   recipient.ID,
		BloodType:     "O+",
		UnitsRequired: 2,
		Urgency:       models.UrgencyHigh,
		Status:        models.RequestStatusOpen,
	}
	require.NoError(t, env.db.Create(request).Error)

	resp := env.request(t, "POST", "/donations/initiate-verification", env.tokenFor(t, recipient),
		fiber.Map{"bloodRequestId": request.ID, "donorId": donor.ID, "unitsDonated": 1})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.NotEmpty(t, body["verificationId"])
	assert.Len(t, body["otpForSimulation"], 6)
	assert.Contains(t, body["message"], "Share the OTP")
}

func TestInitiateVerificationEndpointErrors(t *testing.T) {
	env := newDonationTestEnv(t)

	recipient := env.createUser(t, "recipient@example.com", models.RoleRecipient)
	other := env.createUser(t, "other@example.com", models.RoleRecipient)
	donor := env.createUser(t, "donor@example.com", models.RoleDonor)
	request := &models.BloodRequest{
		RequesterID:   recipient.ID,
		BloodType:     "O+",
		UnitsRequired: 2,
		Urgency:       models.UrgencyHigh,
		Status:        models.RequestStatusOpen,
	}
	require.NoError(t, env.db.Create(request).Error)

	// No token
	resp := env.request(t, "POST", "/donations/initiate-verification", "",
		fiber.Map{"bloodRequestId": request.ID, "donorId": donor.ID, "unitsDonated": 1})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Missing fields
	resp = env.request(t, "POST", "/donations/initiate-verification", env.tokenFor(t, recipient),
		fiber.Map{"unitsDonated": 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Caller does not own the request
	resp = env.request(t, "POST", "/donations/initiate-verification", env.tokenFor(t, other),
		fiber.Map{"bloodRequestId": request.ID, "donorId": donor.ID, "unitsDonated": 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Duplicate pending verification
	resp = env.request(t, "POST", "/donations/initiate-verification", env.tokenFor(t, recipient),
		fiber.Map{"bloodRequestId": request.ID, "donorId": donor.ID, "unitsDonated": 1})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = env.request(t, "POST", "/donations/initiate-verification", env.tokenFor(t, recipient),
		fiber.Map{"bloodRequestId": request.ID, "donorId": donor.ID, "unitsDonated": 1})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCompleteVerificationEndpoint(t *testing.T) {
	env := newDonationTestEnv(t)

	recipient := env.createUser(t, "recipient@example.com", models.RoleRecipient)
	donor := env.createUser(t, "donor@example.com", models.RoleDonor)
	request := &models.BloodRequest{
		RequesterID:   recipient.ID,
		BloodType:     "O+",
		UnitsRequired: 1,
		Urgency:       models.UrgencyCritical,
		Status:        models.RequestStatusOpen,
	}
	require.NoError(t, env.db.Create(request).Error)

	token := env.tokenFor(t, recipient)

	resp := env.request(t, "POST", "/donations/initiate-verification", token,
		fiber.Map{"bloodRequestId": request.ID, "donorId": donor.ID, "unitsDonated": 1})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	initiated := decodeBody(t, resp)
	verificationID := initiated["verificationId"].(string)
	code := initiated["otpForSimulation"].(string)

	// Malformed code is rejected before any lookup
	resp = env.request(t, "POST", "/donations/complete-verification", token,
		fiber.Map{"verificationId": verificationID, "otp": "12ab56"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Wrong code
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	resp = env.request(t, "POST", "/donations/complete-verification", token,
		fiber.Map{"verificationId": verificationID, "otp": wrong})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Correct code finalizes the donation and closes the request
	resp = env.request(t, "POST", "/donations/complete-verification", token,
		fiber.Map{"verificationId": verificationID, "otp": code})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Donation verified successfully", body["message"])

	var updated models.BloodRequest
	require.NoError(t, env.db.First(&updated, "id = ?", request.ID).Error)
	assert.Equal(t, models.RequestStatusClosed, updated.Status)

	// Replay reads as not-found
	resp = env.request(t, "POST", "/donations/complete-verification", token,
		fiber.Map{"verificationId": verificationID, "otp": code})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
