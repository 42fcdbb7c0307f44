package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/habitquest/internal/models"
	"github.com/google/uuid"
)

// FriendResponse is the live snapshot of a friend.
type FriendResponse struct {
	FriendID              uuid.UUID `json:"friend_id"`
	Username              string    `json:"username"`
	Avatar                string    `json:"avatar"`
	Level                 int       `json:"level"`
	XP                    int       `json:"xp"`
	StreakCount           int       `json:"streak_count"`
	BestStreakCount       int       `json:"best_streak_count"`
	MissionCompletedCount int       `json:"mission_completed_count"`
	IsFavorite            bool      `json:"is_favorite"`
	Since                 time.Time `json:"since"`
}

type UserSearchResult struct {
	models.Snapshot
	IsFriend      bool                 `json:"is_friend"`
	RequestID     *uuid.UUID           `json:"request_id,omitempty"`
	RequestStatus models.RequestStatus `json:"request_status,omitempty"`
	Outgoing      bool                 `json:"outgoing"`
}

type SendFriendRequestRequest struct {
	UserID uuid.UUID `json:"user_id"`
}

type FavoriteRequest struct {
	IsFavorite bool `json:"is_favorite"`
}

type FriendRequestsResponse struct {
	Incoming []models.FriendRequest `json:"incoming"`
	Outgoing []models.FriendRequest `json:"outgoing"`
}
