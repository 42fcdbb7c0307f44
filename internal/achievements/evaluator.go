package achievements

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/habitquest/internal/models"
	"github.com/google/uuid"
)

// Evaluate returns an Achievement for every catalog badge whose rule holds
// for s and that is not already among unlocked (matched by badge id or
// title). The result is empty when nothing new applies.
func Evaluate(userID uuid.UUID, s State, unlocked []models.Achievement, now time.Time) []models.Achievement {
	haveID := make(map[uuid.UUID]bool, len(unlocked))
	haveTitle := make(map[string]bool, len(unlocked))
	for _, a := range unlocked {
		haveID[a.BadgeID] = true
		haveTitle[a.Title] = true
	}

	var fresh []models.Achievement
	for _, b := range Catalog {
		if haveID[b.ID] || haveTitle[b.Title] || !b.Unlocked(s) {
			continue
		}
		fresh = append(fresh, models.Achievement{
			ID:         uuid.New(),
			UserID:     userID,
			BadgeID:    b.ID,
			Title:      b.Title,
			Icon:       b.Icon,
			Color:      b.Color,
			Details:    b.Details,
			UnlockedAt: now,
		})
	}
	return fresh
}
