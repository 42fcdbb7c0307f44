package handlers

import (
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/account"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/dto"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ModerationHandler struct {
	moderationService *services.ModerationService
}

func NewModerationHandler(moderationService *services.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderationService: moderationService}
}

func (h *ModerationHandler) BlockUser(c *fiber.Ctx) error {
	blockerID, err := account.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.BlockUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.moderationService.BlockUser(blockerID, req.BlockedID); err != nil {
		return respondError(c, err, "block_user")
	}

	return c.JSON(fiber.Map{"message": "User blocked successfully"})
}

func (h *ModerationHandler) UnblockUser(c *fiber.Ctx) error {
	blockerID, err := account.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	blockedID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid user ID")
	}

	if err := h.moderationService.UnblockUser(blockerID, blockedID); err != nil {
		return respondError(c, err, "unblock_user")
	}

	return c.JSON(fiber.Map{"message": "User unblocked successfully"})
}

func (h *ModerationHandler) ListBlocked(c *fiber.Ctx) error {
	userID, err := account.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	blocked, err := h.moderationService.ListBlocked(userID)
	if err != nil {
		return respondError(c, err, "list_blocked")
	}

	return c.JSON(fiber.Map{"blocked": blocked})
}
