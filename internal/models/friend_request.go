package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequestStatus is shared by friend requests, mission requests and the
// notifications projected from them.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestCanceled RequestStatus = "canceled"
	RequestDeclined RequestStatus = "declined"
	RequestExpired  RequestStatus = "expired"
)

func (s RequestStatus) IsPending() bool {
	return s == RequestPending
}

// PairKey is the canonical key of an unordered user pair.
func PairKey(a, b uuid.UUID) string {
	x, y := a.String(), b.String()
	if y < x {
		x, y = y, x
	}
	return x + ":" + y
}

type FriendRequest struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	PairKey   string        `gorm:"size:73;not null;uniqueIndex" json:"-"`
	From      Snapshot      `gorm:"embedded;embeddedPrefix:from_" json:"from"`
	To        Snapshot      `gorm:"embedded;embeddedPrefix:to_" json:"to"`
	Status    RequestStatus `gorm:"size:20;not null;index" json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"last_time_updated"`
}

func (r *FriendRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.PairKey == "" {
		r.PairKey = PairKey(r.From.FriendID, r.To.FriendID)
	}
	return nil
}

// Involves reports whether userID is the sender or the receiver.
func (r *FriendRequest) Involves(userID uuid.UUID) bool {
	return r.From.FriendID == userID || r.To.FriendID == userID
}
