package progression

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/habitquest/internal/models"
)

// Day truncates t to midnight of its civil day in t's location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysBetween counts calendar days from a to b, evaluated in b's location.
// Counting on UTC dates keeps DST transitions from skewing the result.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.In(b.Location()).Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

// DayKey formats the civil day of t as used by progress logs.
func DayKey(t time.Time) string {
	return t.Format(models.DayKeyLayout)
}

// ParseDayKey parses a progress log day in loc.
func ParseDayKey(key string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(models.DayKeyLayout, key, loc)
}
