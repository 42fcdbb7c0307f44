package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Friend is one directed edge of a friendship. A friendship always exists
// as the pair (a->b, b->a); both rows are written and removed together.
type Friend struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_friends_edge,priority:1" json:"user_id"`
	FriendID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_friends_edge,priority:2;index" json:"friend_id"`
	IsFavorite bool      `gorm:"not null;default:false" json:"is_favorite"`
	CreatedAt  time.Time `json:"created_at"`
}

func (f *Friend) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// FriendEdges returns both directed rows for a friendship between a and b.
func FriendEdges(a, b uuid.UUID) []Friend {
	return []Friend{
		{ID: uuid.New(), UserID: a, FriendID: b},
		{ID: uuid.New(), UserID: b, FriendID: a},
	}
}
