package dto

import (
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/models"
	"github.com/google/uuid"
)

type CategoryInput struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
}

type ReminderInput struct {
	Enabled bool  `json:"enabled"`
	Hour    int   `json:"hour"`
	Minute  int   `json:"minute"`
	Days    []int `json:"days"`
}

type CreateMissionRequest struct {
	Title    string         `json:"title"`
	XP       int            `json:"xp"`
	Icon     string         `json:"icon"`
	Category *CategoryInput `json:"category"`
	Details  string         `json:"details"`
	Reminder *ReminderInput `json:"reminder"`
}

// UpdateMissionRequest only changes the fields that are present.
type UpdateMissionRequest struct {
	Title    *string        `json:"title"`
	XP       *int           `json:"xp"`
	Icon     *string        `json:"icon"`
	Category *CategoryInput `json:"category"`
	Details  *string        `json:"details"`
	Reminder *ReminderInput `json:"reminder"`
}

func (r *UpdateMissionRequest) TouchesContent() bool {
	return r.Title != nil || r.XP != nil || r.Icon != nil || r.Category != nil || r.Details != nil
}

type SelectMissionRequest struct {
	Selected bool `json:"selected"`
}

type PublishGlobalMissionRequest struct {
	Title    string         `json:"title"`
	XP       int            `json:"xp"`
	Icon     string         `json:"icon"`
	Category *CategoryInput `json:"category"`
	Details  string         `json:"details"`
}

type MissionResponse struct {
	models.Mission
	IsNew          bool `json:"is_new"`
	CompletedToday bool `json:"completed_today"`
}

type CompleteMissionResponse struct {
	Mission    MissionResponse      `json:"mission"`
	Stats      models.UserStats     `json:"stats"`
	LeveledUp  bool                 `json:"leveled_up"`
	RequiredXP int                  `json:"required_xp"`
	Unlocked   []models.Achievement `json:"unlocked_achievements"`
}

type StreakResponse struct {
	StreakCount     int     `json:"streak_count"`
	BestStreakCount int     `json:"best_streak_count"`
	LastDate        *string `json:"last_streak_completed_date"`
}

type SendMissionRequestRequest struct {
	UserID    uuid.UUID `json:"user_id"`
	MissionID uuid.UUID `json:"mission_id"`
}

type MissionRequestsResponse struct {
	Incoming []models.MissionRequest `json:"incoming"`
	Outgoing []models.MissionRequest `json:"outgoing"`
}

type AcceptMissionRequestResponse struct {
	Request models.MissionRequest `json:"request"`
	Mission models.Mission        `json:"mission"`
}
