package handlers

import (
	"errors"
	"strings"

	"lifelink/internal/adapters/persistence/models"
	"lifelink/internal/adapters/persistence/repositories"
	"lifelink/internal/core/services"
	"lifelink/internal/pkg/pagination"
	"lifelink/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// RequestHandler handles blood request endpoints
type RequestHandler struct {
	requestService *services.RequestService
}

// NewRequestHandler creates a new blood request handler
func NewRequestHandler(requestService *services.RequestService) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

// CreateRequestRequest represents blood request creation body
type CreateRequestRequest struct {
	PatientName     string `json:"patient_name"`
	BloodType       string `json:"blood_type"`
	UnitsRequired   int    `json:"units_required"`
	Urgency         string `json:"urgency"`
	HospitalName    string `json:"hospital_name"`
	HospitalAddress string `json:"hospital_address"`
}

// Create handles blood request creation
// @Summary Create blood request
// @Description Create a new open blood request for the caller
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateRequestRequest true "Request data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /requests [post]
func (h *RequestHandler) Create(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req CreateRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.BloodType == "" {
		return response.BadRequest(c, "Blood type is required")
	}
	if req.UnitsRequired < 1 {
		return response.BadRequest(c, "Units required must be at least 1")
	}

	input := &services.CreateRequestInput{
		PatientName:     strings.TrimSpace(req.PatientName),
		BloodType:       strings.TrimSpace(req.BloodType),
		UnitsRequired:   req.UnitsRequired,
		Urgency:         req.Urgency,
		HospitalName:    strings.TrimSpace(req.HospitalName),
		HospitalAddress: strings.TrimSpace(req.HospitalAddress),
	}

	request, err := h.requestService.Create(c.Context(), userID, input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidBloodType):
			return response.BadRequest(c, "Invalid blood type")
		case errors.Is(err, services.ErrInvalidUrgency):
			return response.BadRequest(c, "Invalid urgency level")
		case errors.Is(err, services.ErrInvalidUnits):
			return response.BadRequest(c, "Units required must be at least 1")
		case errors.Is(err, services.ErrProfileNeedsLocation):
			return response.BadRequest(c, "Set a location on your profile before creating requests")
		default:
			return response.InternalServerError(c, "Failed to create blood request")
		}
	}

	return response.Created(c, "Blood request created successfully", request.ToResponse())
}

// List handles blood request listing with filters
// @Summary List blood requests
// @Description List blood requests with optional blood type, urgency and status filters
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Param blood_type query string false "Blood type filter"
// @Param urgency query string false "Urgency filter"
// @Param status query string false "Status filter"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /requests [get]
func (h *RequestHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	filter := &repositories.ListFilter{
		BloodType: c.Query("blood_type"),
		Urgency:   strings.ToUpper(c.Query("urgency")),
		Status:    strings.ToUpper(c.Query("status")),
	}

	requests, total, err := h.requestService.List(c.Context(), filter, params.Offset, params.Limit)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidBloodType):
			return response.BadRequest(c, "Invalid blood type filter")
		case errors.Is(err, services.ErrInvalidUrgency):
			return response.BadRequest(c, "Invalid urgency filter")
		default:
			return response.InternalServerError(c, "Failed to list blood requests")
		}
	}

	items := make([]*models.BloodRequestResponse, len(requests))
	for i, r := range requests {
		items[i] = r.ToResponse()
	}

	return response.Success(c, "Blood requests retrieved successfully", pagination.NewResponse(items, params, total))
}

// Get handles single blood request retrieval
// @Summary Get blood request
// @Description Get a blood request by ID
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Param id path string true "Blood request ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /requests/{id} [get]
func (h *RequestHandler) Get(c *fiber.Ctx) error {
	request, err := h.requestService.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, services.ErrRequestNotFound) {
			return response.NotFound(c, "Blood request not found")
		}
		return response.InternalServerError(c, "Failed to get blood request")
	}

	return response.Success(c, "Blood request retrieved successfully", request.ToResponse())
}

// ListMine handles listing the caller's own requests
// @Summary List my blood requests
// @Description List blood requests created by the caller, newest first
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /requests/my [get]
func (h *RequestHandler) ListMine(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	requests, total, err := h.requestService.ListMine(c.Context(), userID, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list blood requests")
	}

	items := make([]*models.BloodRequestResponse, len(requests))
	for i, r := range requests {
		items[i] = r.ToResponse()
	}

	return response.Success(c, "Blood requests retrieved successfully", pagination.NewResponse(items, params, total))
}
