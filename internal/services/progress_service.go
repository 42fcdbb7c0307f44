package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/habitquest/internal/models"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/progression"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProgressService writes the append-only activity log and derives streaks
// from it.
type ProgressService struct {
	db   *gorm.DB
	deps Deps
}

func NewProgressService(d Deps) *ProgressService {
	d = d.withDefaults()
	return &ProgressService{db: d.DB, deps: d}
}

// Append logs event for userID at the given instant. The day's log is
// created on first use.
func (s *ProgressService) Append(tx *gorm.DB, userID uuid.UUID, event models.ProgressEvent, at time.Time) error {
	at = at.In(s.deps.Clock.Location)
	dayKey := progression.DayKey(at)

	var log models.ProgressLog
	err := tx.Where("user_id = ? AND day = ?", userID, dayKey).First(&log).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log = models.ProgressLog{ID: uuid.New(), UserID: userID, Day: dayKey}
		if err := tx.Create(&log).Error; err != nil {
			return fmt.Errorf("failed to create progress log: %w", err)
		}
	} else if err != nil {
		return err
	}

	var lastSeq int
	if err := tx.Model(&models.ProgressEvent{}).
		Where("log_id = ?", log.ID).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&lastSeq).Error; err != nil {
		return err
	}

	event.ID = uuid.New()
	event.LogID = log.ID
	event.UserID = userID
	event.Seq = lastSeq + 1
	event.OccurredAt = at
	if err := tx.Create(&event).Error; err != nil {
		return fmt.Errorf("failed to append progress event: %w", err)
	}
	return nil
}

// Logs returns the user's logs with their events in order. Empty from/to
// leave the range open.
func (s *ProgressService) Logs(userID uuid.UUID, from, to string) ([]models.ProgressLog, error) {
	for _, key := range []string{from, to} {
		if key == "" {
			continue
		}
		if _, err := progression.ParseDayKey(key, s.deps.Clock.Location); err != nil {
			return nil, Detailed(ErrInvalidInput, "dates must look like 2006-01-02")
		}
	}

	query := s.db.Where("user_id = ?", userID)
	if from != "" {
		query = query.Where("day >= ?", from)
	}
	if to != "" {
		query = query.Where("day <= ?", to)
	}

	var logs []models.ProgressLog
	err := query.
		Preload("Events", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC") }).
		Order("day ASC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// CompletionDays returns, ascending, each civil day that holds at least one
// completedMission event.
func (s *ProgressService) CompletionDays(tx *gorm.DB, userID uuid.UUID) ([]time.Time, error) {
	var keys []string
	err := tx.Model(&models.ProgressLog{}).
		Distinct("progress_logs.day").
		Joins("JOIN progress_events ON progress_events.log_id = progress_logs.id").
		Where("progress_logs.user_id = ? AND progress_events.type = ?", userID, models.EventCompletedMission).
		Order("progress_logs.day ASC").
		Pluck("progress_logs.day", &keys).Error
	if err != nil {
		return nil, err
	}

	days := make([]time.Time, 0, len(keys))
	for _, k := range keys {
		d, err := progression.ParseDayKey(k, s.deps.Clock.Location)
		if err != nil {
			return nil, fmt.Errorf("corrupt progress log day %q: %w", k, err)
		}
		days = append(days, d)
	}
	return days, nil
}

// RebuildStreak recomputes the streak from the log. The stored best streak
// only grows.
func (s *ProgressService) RebuildStreak(userID uuid.UUID) (*models.UserStats, error) {
	unlock := s.deps.Locker.Lock(userID)
	defer unlock()

	var stats models.UserStats
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).First(&stats).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		days, err := s.CompletionDays(tx, userID)
		if err != nil {
			return err
		}

		streak := progression.RebuildStreakFromLogs(days)
		stats.StreakCount = streak.Current
		stats.LastStreakCompletedDate = streak.LastDate
		if streak.Best > stats.BestStreakCount {
			stats.BestStreakCount = streak.Best
		}
		return tx.Save(&stats).Error
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
