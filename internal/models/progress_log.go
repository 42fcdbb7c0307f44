package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProgressEventType string

const (
	EventCompletedMission ProgressEventType = "completedMission"
	EventAddMission       ProgressEventType = "addMission"
	EventDeleteMission    ProgressEventType = "deleteMission"
	EventEditedMission    ProgressEventType = "editedMission"
	EventFriendAdded      ProgressEventType = "friendAdded"
	EventUserLevelUp      ProgressEventType = "userLevelUp"
)

// DayKeyLayout formats the civil day that keys a ProgressLog.
const DayKeyLayout = "2006-01-02"

// ProgressLog groups one user's events of one civil day.
type ProgressLog struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_progress_logs_day,priority:1" json:"user_id"`
	Day       string          `gorm:"size:10;not null;uniqueIndex:idx_progress_logs_day,priority:2" json:"day"`
	Events    []ProgressEvent `gorm:"foreignKey:LogID" json:"events"`
	CreatedAt time.Time       `json:"created_at"`
}

func (l *ProgressLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// ProgressEvent is append-only. Mission fields are copied at logging time.
type ProgressEvent struct {
	ID             uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	LogID          uuid.UUID         `gorm:"type:uuid;not null;index" json:"-"`
	UserID         uuid.UUID         `gorm:"type:uuid;not null;index" json:"-"`
	Seq            int               `gorm:"not null" json:"seq"`
	Type           ProgressEventType `gorm:"size:30;not null;index" json:"type"`
	MissionID      *uuid.UUID        `gorm:"type:uuid" json:"mission_id,omitempty"`
	MissionTitle   string            `gorm:"size:120" json:"mission_title,omitempty"`
	MissionXP      int               `json:"mission_xp,omitempty"`
	MissionType    MissionType       `gorm:"size:10" json:"mission_type,omitempty"`
	CompletionTime *time.Time        `json:"completion_time,omitempty"`
	FriendID       *uuid.UUID        `gorm:"type:uuid" json:"friend_id,omitempty"`
	UserLevel      *int              `json:"user_level,omitempty"`
	OccurredAt     time.Time         `gorm:"not null" json:"occurred_at"`
}

func (e *ProgressEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// MissionEvent builds an event carrying a snapshot of m.
func MissionEvent(t ProgressEventType, m *Mission) ProgressEvent {
	id := m.ID
	return ProgressEvent{
		Type:           t,
		MissionID:      &id,
		MissionTitle:   m.Title,
		MissionXP:      m.XP,
		MissionType:    m.Type,
		CompletionTime: m.CompletionDate,
	}
}
