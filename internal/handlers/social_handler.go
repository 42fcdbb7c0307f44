package handlers

import (
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/account"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/dto"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SocialHandler struct {
	socialService *services.SocialService
}

func NewSocialHandler(socialService *services.SocialService) *SocialHandler {
	return &SocialHandler{socialService: socialService}
}

// ---------- friends ----------

func (h *SocialHandler) ListFriends(c *fiber.Ctx) error {
	userID, err := account.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	friends, err := h.socialService.ListFriends(userID)
	if err != nil {
		return respondError(c, err, "list_friends")
	}
	return c.JSON(fiber.Map{"friends": friends})
}

func (h *SocialHandler) Search(c *fiber.Ctx) error {
	userID, err := account.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	results, err := h.socialService.Search(userID, c.Query("q"))
	if err != nil {
		return respondError(c, err, "search_users")
	}
	return c.JSON(fiber.Map{"users": results})
}

func (h *SocialHandler) RemoveFriend(c *fiber.Ctx) error {
	userID, err := account.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	friendID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid user ID")
	}

	if err := h.socialService.RemoveFriend(userID, friendID); err != nil {
		return respondError(c, err, "remove_friend")
	}
	return c.JSON(fiber.Map{"message": "Friend removed"})
}

func (h *SocialHandler) SetFavorite(c *fiber.Ctx) error {
	userID, err := account.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	friendID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid user ID")
	}

	var req dto.FavoriteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.socialService.SetFavorite(userID, friendID, req.IsFavorite); err != nil {
		return respondError(c, err, "favorite_friend")
	}
	return c.JSON(fiber.Map{"is_favorite": req.IsFavorite})
}

// ---------- friend requests ----------

func (h *SocialHandler) ListFriendRequests(c *fiber.Ctx) error {
	userID, err := account.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	resp, err := h.socialService.ListFriendRequests(userID)
	if err != nil {
		return respondError(c, err, "list_friend_requests")
	}
	return c.JSON(resp)
}

func (h *SocialHandler) SendFriendRequest(c *fiber.Ctx) error {
	userID, err := account.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.SendFriendRequestRequest
	if err := c.BodyParser(&req); err != nil || req.UserID == uuid.Nil {
		return badRequest(c, "user_id is required")
	}

	fr, err := h.socialService.SendFriendRequest(userID, req.UserID)
	if err != nil {
		return respondError(c, err, "send_friend_request")
	}
	return c.Status(fiber.StatusCreated).JSON(fr)
}

func (h *SocialHandler) AcceptFriendRequest(c *fiber.Ctx) error {
	return actOnRequest(c, "accept_friend_request", h.socialService.AcceptFriendRequest)
}

func (h *SocialHandler) DeclineFriendRequest(c *fiber.Ctx) error {
	return actOnRequest(c, "decline_friend_request", h.socialService.DeclineFriendRequest)
}

func (h *SocialHandler) CancelFriendRequest(c *fiber.Ctx) error {
	return actOnRequest(c, "cancel_friend_request", h.socialService.CancelFriendRequest)
}

// ---------- mission requests ----------

func (h *SocialHandler) ListMissionRequests(c *fiber.Ctx) error {
	userID, err := account.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	resp, err := h.socialService.ListMissionRequests(userID)
	if err != nil {
		return respondError(c, err, "list_mission_requests")
	}
	return c.JSON(resp)
}

func (h *SocialHandler) SendMissionRequest(c *fiber.Ctx) error {
	userID, err := account.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.SendMissionRequestRequest
	if err := c.BodyParser(&req); err != nil || req.UserID == uuid.Nil || req.MissionID == uuid.Nil {
		return badRequest(c, "user_id and mission_id are required")
	}

	mr, err := h.socialService.SendMissionRequest(userID, req.UserID, req.MissionID)
	if err != nil {
		return respondError(c, err, "send_mission_request")
	}
	return c.Status(fiber.StatusCreated).JSON(mr)
}

func (h *SocialHandler) AcceptMissionRequest(c *fiber.Ctx) error {
	return actOnRequest(c, "accept_mission_request", h.socialService.AcceptMissionRequest)
}

func (h *SocialHandler) DeclineMissionRequest(c *fiber.Ctx) error {
	return actOnRequest(c, "decline_mission_request", h.socialService.DeclineMissionRequest)
}

func (h *SocialHandler) CancelMissionRequest(c *fiber.Ctx) error {
	return actOnRequest(c, "cancel_mission_request", h.socialService.CancelMissionRequest)
}

// actOnRequest runs a request transition for the caller on the :id request.
func actOnRequest[T any](c *fiber.Ctx, action string, fn func(requestID, userID uuid.UUID) (T, error)) error {
	userID, err := account.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	requestID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid request ID")
	}

	result, err := fn(requestID, userID)
	if err != nil {
		return respondError(c, err, action)
	}
	return c.JSON(result)
}
