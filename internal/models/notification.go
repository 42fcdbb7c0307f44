package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationKind string

const (
	NotificationFriendRequest  NotificationKind = "friendRequest"
	NotificationChallenge      NotificationKind = "challenge"
	NotificationSystem         NotificationKind = "system"
	NotificationPreview        NotificationKind = "preview"
	NotificationMissionRequest NotificationKind = "missionRequest"
)

// Notification is a read model. For request kinds PayloadID points at the
// FriendRequest or MissionRequest it was projected from; the request stays
// the source of truth for status.
type Notification struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	Kind       NotificationKind `gorm:"size:20;not null;index" json:"kind"`
	Sender     Snapshot         `gorm:"embedded;embeddedPrefix:sender_" json:"sender"`
	ReceiverID uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_notifications_payload,priority:1" json:"receiver_id"`
	PayloadID  uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_notifications_payload,priority:2;index" json:"payload_id"`
	Status     RequestStatus    `gorm:"size:20" json:"status"`
	Message    string           `gorm:"size:500" json:"message"`
	IsRead     bool             `gorm:"not null;default:false;index" json:"is_read"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

func (n *Notification) HasSender() bool {
	return n.Sender.FriendID != uuid.Nil
}
