package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/habitquest/internal/account"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/dto"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var errorStatuses = []struct {
	err    error
	status int
}{
	{services.ErrInvalidInput, fiber.StatusBadRequest},
	{services.ErrInvalidUser, fiber.StatusBadRequest},
	{services.ErrFriendInvalidTarget, fiber.StatusBadRequest},
	{services.ErrFriendGeneral, fiber.StatusBadRequest},
	{services.ErrInvalidPassword, fiber.StatusUnauthorized},
	{services.ErrAuthenticationFailed, fiber.StatusUnauthorized},
	{services.ErrInvalidToken, fiber.StatusUnauthorized},
	{services.ErrNotAuthorized, fiber.StatusForbidden},
	{services.ErrGlobalMissionReadOnly, fiber.StatusForbidden},
	{services.ErrUserNotFound, fiber.StatusNotFound},
	{services.ErrNotFound, fiber.StatusNotFound},
	{services.ErrUsernameOrEmailTaken, fiber.StatusConflict},
	{services.ErrUsernameTaken, fiber.StatusConflict},
	{services.ErrEmailTaken, fiber.StatusConflict},
	{services.ErrFriendAlreadySent, fiber.StatusConflict},
	{services.ErrFriendAlreadyFriends, fiber.StatusConflict},
	{services.ErrRequestNotPending, fiber.StatusConflict},
	{services.ErrMissionAlreadyCompleted, fiber.StatusConflict},
	{services.ErrAlreadyBlocked, fiber.StatusConflict},
	{services.ErrSelfBlock, fiber.StatusConflict},
}

// respondError maps service errors to a status. Unknown errors are logged
// and answered with a generic 500.
func respondError(c *fiber.Ctx, err error, action string) error {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return c.Status(e.status).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
	}

	attrs := []any{"error", err.Error(), "action", action, "path", c.Path()}
	if rid, ok := c.Locals("requestid").(string); ok {
		attrs = append(attrs, "trace_id", rid)
	}
	if userID, uerr := account.GetUserID(c); uerr == nil {
		attrs = append(attrs, "user_id", userID.String())
	}
	slog.Error("request failed", attrs...)

	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: message,
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "Unauthorized",
	})
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}
