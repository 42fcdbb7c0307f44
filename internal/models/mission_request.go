package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MissionPayload is the shared content of a mission request.
type MissionPayload struct {
	Title    string   `gorm:"size:120" json:"title"`
	XP       int      `json:"xp"`
	Icon     string   `gorm:"size:50" json:"icon"`
	Category Category `gorm:"embedded;embeddedPrefix:category_" json:"category"`
	Details  string   `gorm:"size:560" json:"details"`
}

func PayloadOf(m *Mission) MissionPayload {
	return MissionPayload{
		Title:    m.Title,
		XP:       m.XP,
		Icon:     m.Icon,
		Category: m.Category,
		Details:  m.Details,
	}
}

type MissionRequest struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	RequestKey      string         `gorm:"size:110;not null;uniqueIndex" json:"-"`
	SourceMissionID uuid.UUID      `gorm:"type:uuid;not null" json:"source_mission_id"`
	From            Snapshot       `gorm:"embedded;embeddedPrefix:from_" json:"from"`
	To              Snapshot       `gorm:"embedded;embeddedPrefix:to_" json:"to"`
	Mission         MissionPayload `gorm:"embedded;embeddedPrefix:mission_" json:"mission"`
	Status          RequestStatus  `gorm:"size:20;not null;index" json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"last_time_updated"`
}

// MissionRequestKey identifies the single row allowed per unordered pair
// and source mission.
func MissionRequestKey(a, b, sourceMissionID uuid.UUID) string {
	return PairKey(a, b) + ":" + sourceMissionID.String()
}

func (r *MissionRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.RequestKey == "" {
		r.RequestKey = MissionRequestKey(r.From.FriendID, r.To.FriendID, r.SourceMissionID)
	}
	return nil
}
