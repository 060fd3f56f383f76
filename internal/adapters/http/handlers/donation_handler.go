package handlers

import (
	"errors"

	"lifelink/internal/core/services"
	"lifelink/internal/pkg/otp"
	"lifelink/internal/pkg/pagination"
	"lifelink/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DonationHandler handles donation and verification endpoints
type DonationHandler struct {
	verificationService *services.VerificationService
	donationService     *services.DonationService
}

// NewDonationHandler creates a new donation handler
func NewDonationHandler(
	verificationService *services.VerificationService,
	donationService *services.DonationService,
) *DonationHandler {
	return &DonationHandler{
		verificationService: verificationService,
		donationService:     donationService,
	}
}

// InitiateVerificationRequest represents verification initiation request body
type InitiateVerificationRequest struct {
	BloodRequestID string `json:"bloodRequestId"`
	DonorID        string `json:"donorId"`
	UnitsDonated   int    `json:"unitsDonated"`
}

// CompleteVerificationRequest represents verification completion request body
type CompleteVerificationRequest struct {
	VerificationID string `json:"verificationId"`
	OTP            string `json:"otp"`
}

// InitiateVerification starts an OTP-gated donation verification
// @Summary Initiate donation verification
// @Description Create a pending donation against the caller's open request and issue a one-time code
// @Tags Donations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body InitiateVerificationRequest true "Verification data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /donations/initiate-verification [post]
func (h *DonationHandler) InitiateVerification(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req InitiateVerificationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.BloodRequestID == "" || req.DonorID == "" {
		return response.BadRequest(c, "bloodRequestId and donorId are required")
	}

	input := &services.InitiateInput{
		BloodRequestID: req.BloodRequestID,
		DonorID:        req.DonorID,
		UnitsDonated:   req.UnitsDonated,
	}

	result, err := h.verificationService.Initiate(c.Context(), userID, input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMalformedID):
			return response.BadRequest(c, "Malformed id")
		case errors.Is(err, services.ErrInvalidDonationUnits):
			return response.BadRequest(c, "unitsDonated must be at least 1")
		case errors.Is(err, services.ErrRequestNotFound):
			return response.NotFound(c, "Blood request not found")
		case errors.Is(err, services.ErrRequestNotOpen):
			return response.BadRequest(c, "Blood request is no longer open")
		case errors.Is(err, services.ErrVerificationInFlight):
			return response.Conflict(c, "A pending verification already exists for this donor")
		default:
			return response.InternalServerError(c, "Failed to initiate verification")
		}
	}

	// The raw code ships in the response only as a stand-in for real
	// out-of-band delivery.
	return c.JSON(fiber.Map{
		"message":          "Verification initiated. Share the OTP with your donor.",
		"verificationId":   result.VerificationID,
		"otpForSimulation": result.OTP,
	})
}

// CompleteVerification finalizes a donation verification with the OTP
// @Summary Complete donation verification
// @Description Submit the one-time code to finalize a pending donation
// @Tags Donations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CompleteVerificationRequest true "Completion data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 410 {object} response.Response
// @Router /donations/complete-verification [post]
func (h *DonationHandler) CompleteVerification(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req CompleteVerificationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.VerificationID == "" {
		return response.BadRequest(c, "verificationId is required")
	}
	if !otp.IsValidFormat(req.OTP) {
		return response.BadRequest(c, "OTP must be a 6-digit code")
	}

	err := h.verificationService.Complete(c.Context(), userID, req.VerificationID, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrVerificationNotFound):
			return response.NotFound(c, "Verification not found")
		case errors.Is(err, services.ErrOTPExpired):
			return response.Gone(c, "OTP has expired")
		case errors.Is(err, services.ErrOTPMismatch):
			return response.BadRequest(c, "Invalid OTP")
		default:
			return response.InternalServerError(c, "Failed to complete verification")
		}
	}

	return c.JSON(fiber.Map{
		"message": "Donation verified successfully",
	})
}

// MyDonations lists the caller's finalized donations
// @Summary List my donations
// @Description List the caller's verified donation history, newest first
// @Tags Donations
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /donations/my [get]
func (h *DonationHandler) MyDonations(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	donations, total, err := h.donationService.ListMyDonations(c.Context(), userID, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list donations")
	}

	return response.Success(c, "Donations retrieved successfully", pagination.NewResponse(donations, params, total))
}

// RequestDonations lists finalized donations against one of the caller's requests
// @Summary List donations for a request
// @Description List verified donations made against a request the caller owns
// @Tags Donations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Blood request ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /requests/{id}/donations [get]
func (h *DonationHandler) RequestDonations(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	requestID := c.Params("id")
	donations, err := h.donationService.ListForRequest(c.Context(), userID, requestID)
	if err != nil {
		if errors.Is(err, services.ErrRequestNotFound) {
			return response.NotFound(c, "Blood request not found")
		}
		return response.InternalServerError(c, "Failed to list donations")
	}

	return response.Success(c, "Donations retrieved successfully", donations)
}
