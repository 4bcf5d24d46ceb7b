package handlers

import (
	"context"
	"errors"

	"github.com/m1z23r/drift/pkg/drift"

	"github.com/avaldes/remarket-api/internal/middleware"
	"github.com/avaldes/remarket-api/internal/models"
	"github.com/avaldes/remarket-api/internal/services"
	"github.com/avaldes/remarket-api/pkg/dto"
)

type UserHandler struct {
	userService UserServiceInterface
}

func NewUserHandler(userService UserServiceInterface) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) GetMe(c *drift.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		c.Unauthorized("not authenticated")
		return
	}

	_ = c.JSON(200, toUserResponse(user))
}

func (h *UserHandler) UpdateMe(c *drift.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.FullName == "" {
		c.BadRequest("full_name is required")
		return
	}

	updated, err := h.userService.UpdateProfile(context.Background(), user.ID, req.FullName)
	if err != nil {
		c.InternalServerError("failed to update profile")
		return
	}

	_ = c.JSON(200, toUserResponse(updated))
}

// Activate flips a PENDING account to ACTIVE. Admin only.
func (h *UserHandler) Activate(c *drift.Context) {
	h.setStatus(c, models.StatusActive)
}

// Block moves any account to BLOCKED. Admin only.
func (h *UserHandler) Block(c *drift.Context) {
	h.setStatus(c, models.StatusBlocked)
}

func (h *UserHandler) setStatus(c *drift.Context, status string) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.BadRequest("invalid user id")
		return
	}

	user, err := h.userService.SetStatus(context.Background(), id, status)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.NotFound("user not found")
			return
		}
		c.InternalServerError("failed to update user status")
		return
	}

	_ = c.JSON(200, toUserResponse(user))
}

func toUserResponse(user *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     user.Role,
		Status:   user.Status,
	}
}
