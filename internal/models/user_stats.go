package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserStats holds progression counters. xp is always kept below the
// threshold of the current level.
type UserStats struct {
	ID                      uuid.UUID  `gorm:"type:uuid;primaryKey" json:"-"`
	UserID                  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Level                   int        `gorm:"not null;default:1" json:"level"`
	XP                      int        `gorm:"not null;default:0" json:"xp"`
	XPGainedTotal           int        `gorm:"not null;default:0" json:"xp_gained_total"`
	StreakCount             int        `gorm:"not null;default:0" json:"streak_count"`
	BestStreakCount         int        `gorm:"not null;default:0" json:"best_streak_count"`
	LastStreakCompletedDate *time.Time `json:"last_streak_completed_date"`
	ChallengeWonCount       int        `gorm:"not null;default:0" json:"challenge_won_count"`
	MissionCompletedCount   int        `gorm:"not null;default:0" json:"mission_completed_count"`
	UpdatedAt               time.Time  `json:"updated_at"`
}

func (s *UserStats) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Level < 1 {
		s.Level = 1
	}
	return nil
}

func NewUserStats(userID uuid.UUID) UserStats {
	return UserStats{ID: uuid.New(), UserID: userID, Level: 1}
}
