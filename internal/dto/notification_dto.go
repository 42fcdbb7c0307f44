package dto

import (
	"time"

	"github.com/google/uuid"
)

type BadgesResponse struct {
	Notifications   int64 `json:"notifications"`
	FriendRequests  int64 `json:"friend_requests"`
	MissionRequests int64 `json:"mission_requests"`
	Achievements    int64 `json:"achievements"`
}

type CatalogBadge struct {
	ID         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	Icon       string     `json:"icon"`
	Color      string     `json:"color"`
	Details    string     `json:"details"`
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
}
