package handlers

import (
	"errors"

	"lifelink/internal/adapters/persistence/models"
	"lifelink/internal/core/services"
	"lifelink/internal/pkg/pagination"
	"lifelink/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles user profile endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetProfile returns the caller's full profile
// @Summary Get my profile
// @Description Get the caller's profile including medical fields
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /users/profile [get]
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	user, err := h.userService.GetProfile(c.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to get profile")
	}

	return response.Success(c, "Profile retrieved successfully", user)
}

// UpdateProfile applies a partial update to the caller's profile
// @Summary Update my profile
// @Description Update profile fields, location, availability and medical details
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.UpdateProfileInput true "Profile fields"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /users/profile [put]
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.UpdateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.userService.UpdateProfile(c.Context(), userID, &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		case errors.Is(err, services.ErrInvalidBloodType):
			return response.BadRequest(c, "Invalid blood type")
		default:
			return response.InternalServerError(c, "Failed to update profile")
		}
	}

	return response.Success(c, "Profile updated successfully", user)
}

// FindDonors lists available donors, optionally filtered by blood type
// @Summary Find donors
// @Description List active, available donors, least-recent donors first
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param blood_type query string false "Blood type filter"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /users/donors [get]
func (h *UserHandler) FindDonors(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	bloodType := c.Query("blood_type")

	donors, total, err := h.userService.FindDonors(c.Context(), bloodType, params.Offset, params.Limit)
	if err != nil {
		if errors.Is(err, services.ErrInvalidBloodType) {
			return response.BadRequest(c, "Invalid blood type filter")
		}
		return response.InternalServerError(c, "Failed to find donors")
	}

	items := make([]*models.UserResponse, len(donors))
	for i, d := range donors {
		items[i] = d.ToResponse()
	}

	return response.Success(c, "Donors retrieved successfully", pagination.NewResponse(items, params, total))
}

// ListUsers lists all users (admin)
// @Summary List users
// @Description List all users (admin only)
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	users, total, err := h.userService.ListUsers(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list users")
	}

	items := make([]*models.UserResponse, len(users))
	for i, u := range users {
		items[i] = u.ToResponse()
	}

	return response.Success(c, "Users retrieved successfully", pagination.NewResponse(items, params, total))
}

// DeactivateUser deactivates a user account (admin)
// @Summary Deactivate user
// @Description Deactivate a user account (admin only)
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/users/{id}/deactivate [post]
func (h *UserHandler) DeactivateUser(c *fiber.Ctx) error {
	if err := h.userService.DeactivateUser(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to deactivate user")
	}

	return response.Success(c, "User deactivated successfully", nil)
}

// ReactivateUser reactivates a user account (admin)
// @Summary Reactivate user
// @Description Reactivate a deactivated user account (admin only)
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/users/{id}/activate [post]
func (h *UserHandler) ReactivateUser(c *fiber.Ctx) error {
	if err := h.userService.ReactivateUser(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to reactivate user")
	}

	return response.Success(c, "User reactivated successfully", nil)
}

// SetRoleRequest represents a role change request body
type SetRoleRequest struct {
	Role string `json:"role"`
}

// SetUserRole changes a user's role (admin)
// @Summary Set user role
// @Description Change a user's role (admin only)
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param body body SetRoleRequest true "New role"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/users/{id}/role [put]
func (h *UserHandler) SetUserRole(c *fiber.Ctx) error {
	var req SetRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.userService.SetUserRole(c.Context(), c.Params("id"), req.Role); err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		case errors.Is(err, services.ErrInvalidRole):
			return response.BadRequest(c, "Invalid role")
		default:
			return response.InternalServerError(c, "Failed to change role")
		}
	}

	return response.Success(c, "Role updated successfully", nil)
}
