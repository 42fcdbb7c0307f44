package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username  string    `gorm:"not null;size:30;uniqueIndex" json:"username"`
	Email     string    `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Avatar    string    `gorm:"size:255" json:"avatar"`
	Role      string    `gorm:"size:20;default:'user'" json:"role"`
	Stats     UserStats `gorm:"foreignKey:UserID" json:"stats"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Snapshot returns the public, denormalized view of the user.
func (u *User) Snapshot() Snapshot {
	return Snapshot{
		FriendID:    u.ID,
		Username:    u.Username,
		Avatar:      u.Avatar,
		Level:       u.Stats.Level,
		XP:          u.Stats.XP,
		StreakCount: u.Stats.StreakCount,
	}
}

// Snapshot is a copy of another user's public profile taken at a point in
// time. Requests and notifications carry snapshots so they render without a
// join even after the referenced user changes.
type Snapshot struct {
	FriendID    uuid.UUID `gorm:"type:uuid" json:"friend_id"`
	Username    string    `gorm:"size:30" json:"username"`
	Avatar      string    `gorm:"size:255" json:"avatar"`
	Level       int       `json:"level"`
	XP          int       `json:"xp"`
	StreakCount int       `json:"streak_count"`
}
