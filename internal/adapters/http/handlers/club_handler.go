package handlers

import (
	"errors"

	"lifelink/internal/core/services"
	"lifelink/internal/pkg/pagination"
	"lifelink/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ClubHandler handles club and blood drive event endpoints
type ClubHandler struct {
	clubService *services.ClubService
}

// NewClubHandler creates a new club handler
func NewClubHandler(clubService *services.ClubService) *ClubHandler {
	return &ClubHandler{clubService: clubService}
}

// RegisterClub handles club registration
// @Summary Register club
// @Description Register a new partner club
// @Tags Clubs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.RegisterClubInput true "Club data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /clubs [post]
func (h *ClubHandler) RegisterClub(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.RegisterClubInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	club, err := h.clubService.RegisterClub(c.Context(), userID, &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrClubNameRequired):
			return response.BadRequest(c, "Club name is required")
		case errors.Is(err, services.ErrClubNameTaken):
			return response.Conflict(c, "Club name already registered")
		default:
			return response.InternalServerError(c, "Failed to register club")
		}
	}

	return response.Created(c, "Club registered successfully", club)
}

// ListClubs lists active clubs
// @Summary List clubs
// @Description List active partner clubs
// @Tags Clubs
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /clubs [get]
func (h *ClubHandler) ListClubs(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	clubs, total, err := h.clubService.ListClubs(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list clubs")
	}

	return response.Success(c, "Clubs retrieved successfully", pagination.NewResponse(clubs, params, total))
}

// GetClub gets a club by ID
// @Summary Get club
// @Description Get a club by ID
// @Tags Clubs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Club ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /clubs/{id} [get]
func (h *ClubHandler) GetClub(c *fiber.Ctx) error {
	club, err := h.clubService.GetClub(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, services.ErrClubNotFound) {
			return response.NotFound(c, "Club not found")
		}
		return response.InternalServerError(c, "Failed to get club")
	}

	return response.Success(c, "Club retrieved successfully", club)
}

// UpdateClub applies a partial update to a club
// @Summary Update club
// @Description Update a club's details (registrant or admin only)
// @Tags Clubs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Club ID"
// @Param body body services.UpdateClubInput true "Club fields"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /clubs/{id} [put]
func (h *ClubHandler) UpdateClub(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	role, _ := c.Locals("role").(string)

	var input services.UpdateClubInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	club, err := h.clubService.UpdateClub(c.Context(), userID, role, c.Params("id"), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrClubNotFound):
			return response.NotFound(c, "Club not found")
		case errors.Is(err, services.ErrClubNotOwned):
			return response.Forbidden(c, "You don't manage this club")
		default:
			return response.InternalServerError(c, "Failed to update club")
		}
	}

	return response.Success(c, "Club updated successfully", club)
}

// CreateEvent creates a blood drive event
// @Summary Create blood drive event
// @Description Create a blood drive event under a club
// @Tags Clubs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateEventInput true "Event data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /events [post]
func (h *ClubHandler) CreateEvent(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.CreateEventInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	event, err := h.clubService.CreateEvent(c.Context(), userID, &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMalformedID):
			return response.BadRequest(c, "Malformed club id")
		case errors.Is(err, services.ErrInvalidEventTitle):
			return response.BadRequest(c, "Event title is required")
		case errors.Is(err, services.ErrEventDateInPast):
			return response.BadRequest(c, "Event date must be in the future")
		case errors.Is(err, services.ErrClubNotFound):
			return response.NotFound(c, "Club not found")
		default:
			return response.InternalServerError(c, "Failed to create event")
		}
	}

	return response.Created(c, "Event created successfully", event)
}

// ListEvents lists upcoming blood drive events
// @Summary List upcoming events
// @Description List active blood drive events on or after today, soonest first
// @Tags Clubs
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /events [get]
func (h *ClubHandler) ListEvents(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	events, total, err := h.clubService.ListUpcomingEvents(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list events")
	}

	return response.Success(c, "Events retrieved successfully", pagination.NewResponse(events, params, total))
}

// RegisterForEvent registers the caller for a blood drive event
// @Summary Register for event
// @Description Register the caller as a donor for a blood drive event
// @Tags Clubs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /events/{id}/register [post]
func (h *ClubHandler) RegisterForEvent(c *fiber.Ctx) error {
	if err := h.clubService.RegisterForEvent(c.Context(), c.Params("id")); err != nil {
		switch {
		case errors.Is(err, services.ErrMalformedID):
			return response.BadRequest(c, "Malformed event id")
		case errors.Is(err, services.ErrEventNotFound):
			return response.NotFound(c, "Event not found")
		case errors.Is(err, services.ErrEventFull):
			return response.Conflict(c, "Event has reached its donor target")
		default:
			return response.InternalServerError(c, "Failed to register for event")
		}
	}

	return response.Success(c, "Registered for event successfully", nil)
}
