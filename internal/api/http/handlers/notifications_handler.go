package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/echosuccess/participium-sub000/internal/api/dto"
	"github.com/echosuccess/participium-sub000/internal/auth"
	"github.com/echosuccess/participium-sub000/internal/service"
	"github.com/echosuccess/participium-sub000/pkg/apperrors"
)

// NotificationsHandler exposes the caller's notification feed.
type NotificationsHandler struct {
	notifications *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notifications *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{notifications: notifications}
}

// List handles GET /api/notifications.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authenticated")
	}
	list, err := h.notifications.ListForUser(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}
	items := make([]dto.NotificationResponse, 0, len(list))
	for i := range list {
		items = append(items, dto.FromNotification(&list[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// MarkRead handles POST /api/notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authenticated")
	}
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return apperrors.NewBadRequest("notification id must be an integer")
	}
	if err := h.notifications.MarkRead(c.UserContext(), id, principal.User.ID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "notification marked as read"})
}
