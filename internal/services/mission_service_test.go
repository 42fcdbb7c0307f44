package services

import (
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/habitquest/internal/achievements"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/database"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/dto"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/models"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/progression"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMissionValidation(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")

	cases := []struct {
		name string
		req  dto.CreateMissionRequest
	}{
		{"missing title", dto.CreateMissionRequest{Title: "  ", XP: 10}},
		{"xp outside allowed set", dto.CreateMissionRequest{Title: "Walk", XP: 12}},
		{"xp zero", dto.CreateMissionRequest{Title: "Walk", XP: 0}},
		{"unknown category", dto.CreateMissionRequest{Title: "Walk", XP: 10, Category: &dto.CategoryInput{Kind: "sleeping"}}},
		{"custom category without name", dto.CreateMissionRequest{Title: "Walk", XP: 10, Category: &dto.CategoryInput{Kind: "custom"}}},
		{"details too long", dto.CreateMissionRequest{Title: "Walk", XP: 10, Details: string(make([]byte, 141))}},
		{"link in title", dto.CreateMissionRequest{Title: "visit https://spam.example", XP: 10}},
		{"reminder hour", dto.CreateMissionRequest{Title: "Walk", XP: 10, Reminder: &dto.ReminderInput{Enabled: true, Hour: 24}}},
		{"reminder day", dto.CreateMissionRequest{Title: "Walk", XP: 10, Reminder: &dto.ReminderInput{Enabled: true, Days: []int{7}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.missions.Create(alice, &tc.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	for _, xp := range []int{5, 10, 15, 20, 25} {
		_, err := env.missions.Create(alice, &dto.CreateMissionRequest{Title: "Walk", XP: xp})
		assert.NoError(t, err)
	}
}

func TestCreateMissionSchedulesReminder(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")

	m, err := env.missions.Create(alice, &dto.CreateMissionRequest{
		Title:    "Stretch",
		XP:       5,
		Category: &dto.CategoryInput{Kind: "custom", Name: "Body"},
		Reminder: &dto.ReminderInput{Enabled: true, Hour: 7, Minute: 30, Days: []int{1, 3, 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, models.CategoryCustom, m.Category.Kind)

	job, ok := env.scheduler.scheduled[m.ID]
	require.True(t, ok)
	assert.Equal(t, 7, job.Hour)
	assert.Equal(t, 30, job.Minute)
	assert.Equal(t, []int{1, 3}, job.RepeatDays)

	_, err = env.missions.Update(alice, m.ID, &dto.UpdateMissionRequest{Reminder: &dto.ReminderInput{}})
	require.NoError(t, err)
	_, ok = env.scheduler.scheduled[m.ID]
	assert.False(t, ok)

	require.NoError(t, env.missions.Delete(alice, m.ID))
	assert.Contains(t, env.scheduler.canceled, m.ID)
}

func TestCompleteAwardsXPAndStreak(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	m := env.createMission(t, alice, "Drink water", 25)

	result, err := env.missions.Complete(alice, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, result.Stats.XP)
	assert.Equal(t, 1, result.Stats.Level)
	assert.Equal(t, 1, result.Stats.StreakCount)
	assert.Equal(t, 1, result.Stats.MissionCompletedCount)
	assert.True(t, result.Mission.Completed)
	assert.False(t, result.Mission.IsSelected)
	require.Len(t, result.Unlocked, 1)
	assert.Equal(t, achievements.Catalog[0].ID, result.Unlocked[0].BadgeID)

	_, err = env.missions.Complete(alice, m.ID)
	assert.ErrorIs(t, err, ErrMissionAlreadyCompleted)
	assert.Equal(t, 25, env.stats(t, alice).XP)

	env.clock.Advance(24 * time.Hour)
	result, err = env.missions.Complete(alice, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Stats.StreakCount)
	assert.Equal(t, 50, result.Stats.XP)
	assert.Empty(t, result.Unlocked)

	env.clock.Advance(3 * 24 * time.Hour)
	result, err = env.missions.Complete(alice, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.StreakCount)
	assert.Equal(t, 2, result.Stats.BestStreakCount)
}

func TestCompleteLevelsUpAndLogs(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")

	need := progression.RequiredXP(1)
	var leveled bool
	for gained := 0; gained < need; gained += 25 {
		m := env.createMission(t, alice, "Push ups", 25)
		result, err := env.missions.Complete(alice, m.ID)
		require.NoError(t, err)
		leveled = leveled || result.LeveledUp
	}
	assert.True(t, leveled)
	assert.Equal(t, 2, env.stats(t, alice).Level)

	assert.Equal(t, int64(1), env.count(t, &models.ProgressEvent{},
		"user_id = ? AND type = ?", alice, models.EventUserLevelUp))

	logs, err := env.progress.Logs(alice, "", "")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	events := logs[0].Events
	require.NotEmpty(t, events)
	for i, ev := range events {
		assert.Equal(t, i+1, ev.Seq)
	}
	assert.Equal(t, models.EventAddMission, events[0].Type)
}

func TestListAppliesDailyReset(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	done := env.createMission(t, alice, "Meditate", 10)
	selected := env.createMission(t, alice, "Journal", 10)

	_, err := env.missions.Complete(alice, done.ID)
	require.NoError(t, err)
	_, err = env.missions.SetSelected(alice, selected.ID, true)
	require.NoError(t, err)

	_, err = env.missions.SetSelected(alice, done.ID, true)
	assert.ErrorIs(t, err, ErrMissionAlreadyCompleted)

	list, err := env.missions.List(alice)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, m := range list {
		if m.ID == done.ID {
			assert.True(t, m.Completed)
		} else {
			assert.True(t, m.IsSelected)
		}
	}

	env.clock.Advance(24 * time.Hour)
	list, err = env.missions.List(alice)
	require.NoError(t, err)
	for _, m := range list {
		assert.False(t, m.Completed)
		assert.False(t, m.IsSelected)
		assert.False(t, env.missions.Response(&m).CompletedToday)
	}
}

func TestGlobalMissionsAreReadOnly(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, database.SeedGlobalMissions(env.db))
	alice := env.register(t, "alice")

	list, err := env.missions.List(alice)
	require.NoError(t, err)
	require.NotEmpty(t, list)
	global := list[0]
	assert.Equal(t, models.MissionGlobal, global.Type)

	again, err := env.missions.List(alice)
	require.NoError(t, err)
	assert.Len(t, again, len(list))

	title := "Renamed"
	_, err = env.missions.Update(alice, global.ID, &dto.UpdateMissionRequest{Title: &title})
	assert.ErrorIs(t, err, ErrGlobalMissionReadOnly)
	assert.ErrorIs(t, env.missions.Delete(alice, global.ID), ErrGlobalMissionReadOnly)

	updated, err := env.missions.Update(alice, global.ID, &dto.UpdateMissionRequest{
		Reminder: &dto.ReminderInput{Enabled: true, Hour: 8},
	})
	require.NoError(t, err)
	assert.True(t, updated.Reminder.Enabled)

	_, err = env.missions.Complete(alice, global.ID)
	assert.NoError(t, err)

	gm, err := env.missions.PublishGlobal(&dto.PublishGlobalMissionRequest{Title: "Call a friend", XP: 10})
	require.NoError(t, err)
	list, err = env.missions.List(alice)
	require.NoError(t, err)
	found := false
	for _, m := range list {
		if m.GlobalMissionID != nil && *m.GlobalMissionID == gm.ID {
			found = true
		}
	}
	assert.True(t, found)
}

func TestMissionOwnership(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	m := env.createMission(t, alice, "Run", 20)

	_, err := env.missions.Complete(bob, m.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, env.missions.Delete(bob, m.ID), ErrNotFound)

	require.NoError(t, env.missions.Delete(alice, m.ID))
	_, err = env.missions.Get(alice, m.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRestoreReminders(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	_, err := env.missions.Create(alice, &dto.CreateMissionRequest{
		Title: "Vitamins", XP: 5, Reminder: &dto.ReminderInput{Enabled: true, Hour: 9},
	})
	require.NoError(t, err)
	env.createMission(t, alice, "No reminder", 5)

	env.scheduler.CancelAll()
	n, err := env.missions.RestoreReminders()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, env.scheduler.scheduled, 1)
}

func TestDeleteMissionRemovesOwnRemindersOnly(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	swim := env.createMission(t, alice, "Swim", 20)
	walk := env.createMission(t, alice, "Walk", 10)

	require.NoError(t, env.notifications.PushReminder(alice, swim.ID, "Time to: Swim"))
	require.NoError(t, env.notifications.PushReminder(alice, walk.ID, "Time to: Walk"))
	reminders := func(missionID interface{}) int64 {
		return env.count(t, &models.Notification{},
			"receiver_id = ? AND payload_id = ? AND kind = ?", alice, missionID, models.NotificationSystem)
	}
	require.Equal(t, int64(1), reminders(swim.ID))

	require.NoError(t, env.missions.Delete(alice, swim.ID))

	assert.Zero(t, reminders(swim.ID))
	assert.Equal(t, int64(1), reminders(walk.ID))
	assert.Zero(t, env.count(t, &models.Mission{}, "id = ?", swim.ID))
	assert.Equal(t, int64(1), env.count(t, &models.ProgressEvent{},
		"user_id = ? AND type = ? AND mission_id = ?", alice, models.EventDeleteMission, swim.ID))
	assert.Contains(t, env.scheduler.canceled, swim.ID)

	// a reminder that fires after the delete is dropped
	require.NoError(t, env.notifications.PushReminder(alice, swim.ID, "Time to: Swim"))
	assert.Zero(t, reminders(swim.ID))
}

func TestDeletingChallengeCopyKeepsChallengerNotifications(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	env.befriend(t, alice, bob)

	source := env.createMission(t, alice, "Plank 2 minutes", 15)
	req, err := env.social.SendMissionRequest(alice, bob, source.ID)
	require.NoError(t, err)
	resp, err := env.social.AcceptMissionRequest(req.ID, bob)
	require.NoError(t, err)
	_, err = env.missions.Complete(bob, resp.Mission.ID)
	require.NoError(t, err)

	aliceNotes := func() int64 {
		return env.count(t, &models.Notification{}, "receiver_id = ?", alice)
	}
	before := aliceNotes()
	require.Equal(t, int64(1), env.count(t, &models.Notification{},
		"receiver_id = ? AND kind = ?", alice, models.NotificationChallenge))

	require.NoError(t, env.missions.Delete(bob, resp.Mission.ID))

	assert.Equal(t, before, aliceNotes())
	assert.Equal(t, int64(1), env.count(t, &models.Notification{},
		"receiver_id = ? AND kind = ?", alice, models.NotificationChallenge))
}
