package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Achievement is an unlocked catalog badge. BadgeID is the catalog's fixed id.
type Achievement struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_achievements_badge,priority:1" json:"user_id"`
	BadgeID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_achievements_badge,priority:2" json:"badge_id"`
	Title      string    `gorm:"size:100;not null" json:"title"`
	Icon       string    `gorm:"size:50" json:"icon"`
	Color      string    `gorm:"size:20" json:"color"`
	Details    string    `gorm:"size:255" json:"details"`
	UnlockedAt time.Time `gorm:"not null" json:"unlocked_at"`
	IsRead     bool      `gorm:"not null;default:false" json:"is_read"`
}

func (a *Achievement) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
