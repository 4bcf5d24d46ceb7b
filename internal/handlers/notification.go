package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/m1z23r/drift/pkg/drift"

	"github.com/avaldes/remarket-api/internal/middleware"
	"github.com/avaldes/remarket-api/internal/services"
	"github.com/avaldes/remarket-api/pkg/dto"
)

type NotificationHandler struct {
	notificationService NotificationServiceInterface
}

func NewNotificationHandler(notificationService NotificationServiceInterface) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) List(c *drift.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		c.Unauthorized("not authenticated")
		return
	}

	unreadOnly := c.QueryParam("unread") == "true"

	notifications, err := h.notificationService.ListForUser(context.Background(), user.ID, unreadOnly)
	if err != nil {
		c.InternalServerError("failed to list notifications")
		return
	}

	response := make([]dto.NotificationResponse, len(notifications))
	for i, n := range notifications {
		response[i] = dto.NotificationResponse{
			ID:        n.ID,
			Type:      n.Type,
			Message:   n.Message,
			ListingID: n.ListingID,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt.Format(time.RFC3339),
		}
	}

	_ = c.JSON(200, response)
}

func (h *NotificationHandler) MarkRead(c *drift.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		c.Unauthorized("not authenticated")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		c.BadRequest("invalid notification id")
		return
	}

	if err := h.notificationService.MarkRead(context.Background(), id, user.ID); err != nil {
		if errors.Is(err, services.ErrNotificationNotFound) {
			c.NotFound("notification not found")
			return
		}
		c.InternalServerError("failed to mark notification read")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "notification marked read"})
}

func (h *NotificationHandler) MarkAllRead(c *drift.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		c.Unauthorized("not authenticated")
		return
	}

	if err := h.notificationService.MarkAllRead(context.Background(), user.ID); err != nil {
		c.InternalServerError("failed to mark notifications read")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "all notifications marked read"})
}
