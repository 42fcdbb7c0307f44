package handlers

import (
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/account"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AchievementHandler struct {
	achievementService *services.AchievementService
}

func NewAchievementHandler(achievementService *services.AchievementService) *AchievementHandler {
	return &AchievementHandler{achievementService: achievementService}
}

func (h *AchievementHandler) List(c *fiber.Ctx) error {
	userID, err := account.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	list, err := h.achievementService.List(userID)
	if err != nil {
		return respondError(c, err, "list_achievements")
	}
	return c.JSON(fiber.Map{"achievements": list})
}

func (h *AchievementHandler) Catalog(c *fiber.Ctx) error {
	userID, err := account.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	catalog, err := h.achievementService.Catalog(userID)
	if err != nil {
		return respondError(c, err, "achievement_catalog")
	}
	return c.JSON(fiber.Map{"badges": catalog})
}

func (h *AchievementHandler) MarkRead(c *fiber.Ctx) error {
	userID, err := account.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid achievement ID")
	}

	if err := h.achievementService.MarkRead(userID, id); err != nil {
		return respondError(c, err, "read_achievement")
	}
	return c.JSON(fiber.Map{"message": "Achievement marked as read"})
}
