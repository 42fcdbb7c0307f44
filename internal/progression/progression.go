// Package progression holds the XP, level and streak arithmetic. Functions
// operate on models.UserStats in memory and never touch storage.
package progression

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/habitquest/internal/models"
)

const (
	baseRequiredXP  = 100
	requiredXPSteps = 25
)

// RequiredXP is the xp needed to leave level.
func RequiredXP(level int) int {
	if level < 1 {
		level = 1
	}
	return baseRequiredXP + (level-1)*requiredXPSteps
}

// AddXP credits amount and rolls xp over as many levels as it covers. It
// reports whether at least one level was gained. Non-positive amounts are
// ignored.
func AddXP(stats *models.UserStats, amount int) bool {
	if amount <= 0 {
		return false
	}
	if stats.Level < 1 {
		stats.Level = 1
	}

	stats.XP += amount
	stats.XPGainedTotal += amount

	leveledUp := false
	for stats.XP >= RequiredXP(stats.Level) {
		stats.XP -= RequiredXP(stats.Level)
		stats.Level++
		leveledUp = true
	}
	return leveledUp
}

// CompleteMission marks m completed at now and credits its reward.
func CompleteMission(stats *models.UserStats, m *models.Mission, now time.Time) bool {
	m.MarkCompleted(now)
	leveledUp := AddXP(stats, m.XP)
	stats.MissionCompletedCount++
	return leveledUp
}

// UpdateStreakIfNeeded advances the daily streak for a day with at least one
// completion. Repeated calls for the same day are no-ops.
func UpdateStreakIfNeeded(stats *models.UserStats, todayHasCompletion bool, today time.Time) {
	if !todayHasCompletion {
		return
	}

	day := Day(today)
	if stats.LastStreakCompletedDate == nil {
		stats.StreakCount = 1
	} else {
		switch gap := DaysBetween(*stats.LastStreakCompletedDate, day); {
		case gap <= 0:
			return
		case gap == 1:
			stats.StreakCount++
		default:
			stats.StreakCount = 1
		}
	}

	stats.LastStreakCompletedDate = &day
	if stats.StreakCount > stats.BestStreakCount {
		stats.BestStreakCount = stats.StreakCount
	}
}

// Streak is the outcome of rebuilding a streak from history.
type Streak struct {
	Current  int
	Best     int
	LastDate *time.Time
}

// RebuildStreakFromLogs replays days (ascending, distinct, each with at
// least one completion) through UpdateStreakIfNeeded.
func RebuildStreakFromLogs(days []time.Time) Streak {
	var stats models.UserStats
	for _, d := range days {
		UpdateStreakIfNeeded(&stats, true, d)
	}
	return Streak{
		Current:  stats.StreakCount,
		Best:     stats.BestStreakCount,
		LastDate: stats.LastStreakCompletedDate,
	}
}

// IsStreakAlive reports whether the stored streak can still be extended
// today, i.e. the last completion was today or yesterday.
func IsStreakAlive(stats *models.UserStats, today time.Time) bool {
	if stats.LastStreakCompletedDate == nil || stats.StreakCount == 0 {
		return false
	}
	gap := DaysBetween(*stats.LastStreakCompletedDate, today)
	return gap >= 0 && gap <= 1
}
