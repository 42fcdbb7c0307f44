// Package reminders delivers mission reminders on an in-process cron.
package reminders

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/habitquest/internal/services"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// NotifyFunc delivers a fired reminder for missionID to its owner.
type NotifyFunc func(userID, missionID uuid.UUID, message string) error

// CronScheduler implements services.Scheduler. Each reminder owns one cron
// entry per repeat day, keyed "<missionID>-<weekday>", or a single entry
// keyed "<missionID>" when it fires daily.
type CronScheduler struct {
	cron   *cron.Cron
	notify NotifyFunc

	mu        sync.Mutex
	entries   map[string]cron.EntryID
	byMission map[uuid.UUID][]string
}

func NewCronScheduler(loc *time.Location, notify NotifyFunc) *CronScheduler {
	if loc == nil {
		loc = time.UTC
	}
	logger := cron.PrintfLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn))
	return &CronScheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger)),
		),
		notify:    notify,
		entries:   make(map[string]cron.EntryID),
		byMission: make(map[uuid.UUID][]string),
	}
}

func (s *CronScheduler) Start() {
	s.cron.Start()
}

// Stop halts the cron and returns a context done once running jobs finish.
func (s *CronScheduler) Stop() context.Context {
	return s.cron.Stop()
}

// entrySpecs maps entry keys to cron specs for job.
func entrySpecs(job services.ReminderJob) map[string]string {
	if len(job.RepeatDays) == 0 {
		return map[string]string{
			job.MissionID.String(): fmt.Sprintf("%d %d * * *", job.Minute, job.Hour),
		}
	}
	specs := make(map[string]string, len(job.RepeatDays))
	for _, day := range job.RepeatDays {
		key := fmt.Sprintf("%s-%d", job.MissionID, day)
		specs[key] = fmt.Sprintf("%d %d * * %d", job.Minute, job.Hour, day)
	}
	return specs
}

// Schedule replaces any existing schedule of the mission.
func (s *CronScheduler) Schedule(job services.ReminderJob) error {
	if job.Hour < 0 || job.Hour > 23 || job.Minute < 0 || job.Minute > 59 {
		return fmt.Errorf("reminder time %02d:%02d out of range", job.Hour, job.Minute)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(job.MissionID)

	specs := entrySpecs(job)
	keys := make([]string, 0, len(specs))
	for key, spec := range specs {
		id, err := s.cron.AddFunc(spec, s.fire(job, key))
		if err != nil {
			s.byMission[job.MissionID] = keys
			s.cancelLocked(job.MissionID)
			return fmt.Errorf("failed to schedule reminder %s: %w", key, err)
		}
		s.entries[key] = id
		keys = append(keys, key)
	}
	sort.Strings(keys)
	s.byMission[job.MissionID] = keys
	return nil
}

func (s *CronScheduler) fire(job services.ReminderJob, key string) func() {
	return func() {
		if s.notify != nil {
			if err := s.notify(job.UserID, job.MissionID, job.Body); err != nil {
				slog.Error("failed to deliver reminder", "mission_id", job.MissionID.String(),
					"user_id", job.UserID.String(), "error", err, "component", "reminders")
			}
		}
		if !job.Repeats {
			s.removeEntry(job.MissionID, key)
		}
	}
}

func (s *CronScheduler) removeEntry(missionID uuid.UUID, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.entries[key]; ok {
		s.cron.Remove(id)
		delete(s.entries, key)
	}
	keys := s.byMission[missionID]
	for i, k := range keys {
		if k == key {
			keys = append(keys[:i], keys[i+1:]...)
			break
		}
	}
	if len(keys) == 0 {
		delete(s.byMission, missionID)
	} else {
		s.byMission[missionID] = keys
	}
}

func (s *CronScheduler) Cancel(missionID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(missionID)
}

func (s *CronScheduler) cancelLocked(missionID uuid.UUID) {
	for _, key := range s.byMission[missionID] {
		if id, ok := s.entries[key]; ok {
			s.cron.Remove(id)
			delete(s.entries, key)
		}
	}
	delete(s.byMission, missionID)
}

func (s *CronScheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.entries {
		s.cron.Remove(id)
	}
	s.entries = make(map[string]cron.EntryID)
	s.byMission = make(map[uuid.UUID][]string)
}

// Keys returns the entry keys scheduled for the mission, sorted.
func (s *CronScheduler) Keys(missionID uuid.UUID) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.byMission[missionID]...)
}

// Next returns the next fire time of the entry with key.
func (s *CronScheduler) Next(key string, after time.Time) (time.Time, bool) {
	s.mu.Lock()
	id, ok := s.entries[key]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}
	entry := s.cron.Entry(id)
	if !entry.Valid() {
		return time.Time{}, false
	}
	return entry.Schedule.Next(after), true
}
