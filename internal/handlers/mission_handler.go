package handlers

import (
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/account"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/dto"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/progression"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/services"
	"github.com/gofiber/fiber/v2"
)

type MissionHandler struct {
	missionService *services.MissionService
}

func NewMissionHandler(missionService *services.MissionService) *MissionHandler {
	return &MissionHandler{missionService: missionService}
}

func (h *MissionHandler) List(c *fiber.Ctx) error {
	userID, err := account.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	missions, err := h.missionService.List(userID)
	if err != nil {
		return respondError(c, err, "list_missions")
	}

	out := make([]dto.MissionResponse, len(missions))
	for i := range missions {
		out[i] = h.missionService.Response(&missions[i])
	}
	return c.JSON(fiber.Map{"missions": out})
}

func (h *MissionHandler) Create(c *fiber.Ctx) error {
	userID, err := account.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreateMissionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	mission, err := h.missionService.Create(userID, &req)
	if err != nil {
		return respondError(c, err, "create_mission")
	}

	return c.Status(fiber.StatusCreated).JSON(h.missionService.Response(mission))
}

func (h *MissionHandler) Update(c *fiber.Ctx) error {
	userID, err := account.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	missionID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid mission ID")
	}

	var req dto.UpdateMissionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	mission, err := h.missionService.Update(userID, missionID, &req)
	if err != nil {
		return respondError(c, err, "update_mission")
	}

	return c.JSON(h.missionService.Response(mission))
}

func (h *MissionHandler) Select(c *fiber.Ctx) error {
	userID, err := account.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	missionID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid mission ID")
	}

	var req dto.SelectMissionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	mission, err := h.missionService.SetSelected(userID, missionID, req.Selected)
	if err != nil {
		return respondError(c, err, "select_mission")
	}

	return c.JSON(h.missionService.Response(mission))
}

func (h *MissionHandler) Delete(c *fiber.Ctx) error {
	userID, err := account.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	missionID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid mission ID")
	}

	if err := h.missionService.Delete(userID, missionID); err != nil {
		return respondError(c, err, "delete_mission")
	}

	return c.JSON(fiber.Map{"message": "Mission deleted"})
}

func (h *MissionHandler) Complete(c *fiber.Ctx) error {
	userID, err := account.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	missionID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid mission ID")
	}

	result, err := h.missionService.Complete(userID, missionID)
	if err != nil {
		return respondError(c, err, "complete_mission")
	}

	return c.JSON(dto.CompleteMissionResponse{
		Mission:    h.missionService.Response(&result.Mission),
		Stats:      result.Stats,
		LeveledUp:  result.LeveledUp,
		RequiredXP: progression.RequiredXP(result.Stats.Level),
		Unlocked:   result.Unlocked,
	})
}

func (h *MissionHandler) ListGlobal(c *fiber.Ctx) error {
	list, err := h.missionService.ListGlobal()
	if err != nil {
		return respondError(c, err, "list_global_missions")
	}
	return c.JSON(fiber.Map{"global_missions": list})
}

// PublishGlobal is mounted under the admin group.
func (h *MissionHandler) PublishGlobal(c *fiber.Ctx) error {
	var req dto.PublishGlobalMissionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	gm, err := h.missionService.PublishGlobal(&req)
	if err != nil {
		return respondError(c, err, "publish_global_mission")
	}

	return c.Status(fiber.StatusCreated).JSON(gm)
}
