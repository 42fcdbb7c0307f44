package services

import (
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/habitquest/internal/account"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/config"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/database"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/dto"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingScheduler struct {
	mu        sync.Mutex
	scheduled map[uuid.UUID]ReminderJob
	canceled  []uuid.UUID
}

func (r *recordingScheduler) Schedule(job ReminderJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scheduled[job.MissionID] = job
	return nil
}

func (r *recordingScheduler) Cancel(missionID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.scheduled, missionID)
	r.canceled = append(r.canceled, missionID)
}

func (r *recordingScheduler) CancelAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scheduled = map[uuid.UUID]ReminderJob{}
}

type testEnv struct {
	db            *gorm.DB
	clock         *fakeClock
	scheduler     *recordingScheduler
	auth          *AuthService
	moderation    *ModerationService
	progress      *ProgressService
	achievements  *AchievementService
	notifications *NotificationService
	social        *SocialService
	missions      *MissionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Open(&config.Config{DBDriver: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	clock := &fakeClock{now: time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)}
	scheduler := &recordingScheduler{scheduled: map[uuid.UUID]ReminderJob{}}
	deps := Deps{
		DB:        db,
		Locker:    account.NewLocker(),
		Clock:     Clock{Now: clock.Now, Location: time.UTC},
		Scheduler: scheduler,
	}
	cfg := &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: time.Hour,
	}

	env := &testEnv{db: db, clock: clock, scheduler: scheduler}
	env.moderation = NewModerationService(deps)
	env.progress = NewProgressService(deps)
	env.achievements = NewAchievementService(deps)
	env.notifications = NewNotificationService(deps)
	env.social = NewSocialService(deps, env.progress, env.achievements)
	env.missions = NewMissionService(deps, env.progress, env.achievements, env.moderation)
	env.auth = NewAuthService(deps, cfg, env.moderation)
	return env
}

func (e *testEnv) register(t *testing.T, username string) uuid.UUID {
	t.Helper()
	resp, err := e.auth.Register(&dto.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	return resp.User.ID
}

// befriend runs the full request/accept flow between a and b.
func (e *testEnv) befriend(t *testing.T, a, b uuid.UUID) {
	t.Helper()
	req, err := e.social.SendFriendRequest(a, b)
	require.NoError(t, err)
	_, err = e.social.AcceptFriendRequest(req.ID, b)
	require.NoError(t, err)
}

func (e *testEnv) createMission(t *testing.T, userID uuid.UUID, title string, xp int) *models.Mission {
	t.Helper()
	m, err := e.missions.Create(userID, &dto.CreateMissionRequest{Title: title, XP: xp})
	require.NoError(t, err)
	return m
}

func (e *testEnv) stats(t *testing.T, userID uuid.UUID) models.UserStats {
	t.Helper()
	var stats models.UserStats
	require.NoError(t, e.db.Where("user_id = ?", userID).First(&stats).Error)
	return stats
}

func (e *testEnv) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}
