package handlers

import (
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/account"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/services"
	"github.com/gofiber/fiber/v2"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	userID, err := account.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	list, err := h.notificationService.List(userID, c.QueryBool("unread", false))
	if err != nil {
		return respondError(c, err, "list_notifications")
	}
	return c.JSON(fiber.Map{"notifications": list})
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	userID, err := account.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid notification ID")
	}

	if err := h.notificationService.MarkRead(userID, id); err != nil {
		return respondError(c, err, "read_notification")
	}
	return c.JSON(fiber.Map{"message": "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	userID, err := account.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	if err := h.notificationService.MarkAllRead(userID); err != nil {
		return respondError(c, err, "read_all_notifications")
	}
	return c.JSON(fiber.Map{"message": "All notifications marked as read"})
}

func (h *NotificationHandler) Badges(c *fiber.Ctx) error {
	userID, err := account.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	badges, err := h.notificationService.Badges(userID)
	if err != nil {
		return respondError(c, err, "badges")
	}
	return c.JSON(badges)
}

func (h *NotificationHandler) ClearBadge(c *fiber.Ctx) error {
	userID, err := account.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	if err := h.notificationService.ClearBadge(userID, c.Params("key")); err != nil {
		return respondError(c, err, "clear_badge")
	}
	return c.JSON(fiber.Map{"message": "Badge cleared"})
}
