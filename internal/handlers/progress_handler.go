package handlers

import (
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/account"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/dto"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/models"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ProgressHandler struct {
	progressService *services.ProgressService
}

func NewProgressHandler(progressService *services.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

// Logs serves GET /progress/logs?from=2006-01-02&to=2006-01-02.
func (h *ProgressHandler) Logs(c *fiber.Ctx) error {
	userID, err := account.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	logs, err := h.progressService.Logs(userID, c.Query("from"), c.Query("to"))
	if err != nil {
		return respondError(c, err, "progress_logs")
	}

	return c.JSON(fiber.Map{"logs": logs})
}

func (h *ProgressHandler) RebuildStreak(c *fiber.Ctx) error {
	userID, err := account.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	stats, err := h.progressService.RebuildStreak(userID)
	if err != nil {
		return respondError(c, err, "rebuild_streak")
	}

	resp := dto.StreakResponse{
		StreakCount:     stats.StreakCount,
		BestStreakCount: stats.BestStreakCount,
	}
	if stats.LastStreakCompletedDate != nil {
		day := stats.LastStreakCompletedDate.Format(models.DayKeyLayout)
		resp.LastDate = &day
	}
	return c.JSON(resp)
}
