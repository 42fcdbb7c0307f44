package reminders

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/habitquest/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inbox struct {
	mu       sync.Mutex
	messages map[uuid.UUID][]string
	missions []uuid.UUID
	fail     bool
}

func (i *inbox) notify(userID, missionID uuid.UUID, message string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.fail {
		return errors.New("unavailable")
	}
	i.messages[userID] = append(i.messages[userID], message)
	i.missions = append(i.missions, missionID)
	return nil
}

func newScheduler() (*CronScheduler, *inbox) {
	box := &inbox{messages: map[uuid.UUID][]string{}}
	return NewCronScheduler(time.UTC, box.notify), box
}

func TestScheduleUsesDeterministicKeys(t *testing.T) {
	s, _ := newScheduler()
	missionID := uuid.New()

	require.NoError(t, s.Schedule(services.ReminderJob{MissionID: missionID, Hour: 7, Minute: 30, RepeatDays: []int{3, 1}, Repeats: true}))
	assert.Equal(t, []string{missionID.String() + "-1", missionID.String() + "-3"}, s.Keys(missionID))

	// 2024-03-03 is a Sunday
	sunday := time.Date(2024, time.March, 3, 12, 0, 0, 0, time.UTC)
	next, ok := s.Next(missionID.String()+"-1", sunday)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.March, 4, 7, 30, 0, 0, time.UTC), next)

	require.NoError(t, s.Schedule(services.ReminderJob{MissionID: missionID, Hour: 21, Repeats: true}))
	assert.Equal(t, []string{missionID.String()}, s.Keys(missionID))
	assert.Len(t, s.cron.Entries(), 1)

	next, ok = s.Next(missionID.String(), sunday)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.March, 3, 21, 0, 0, 0, time.UTC), next)
}

func TestCancelAndCancelAll(t *testing.T) {
	s, _ := newScheduler()
	a, b := uuid.New(), uuid.New()
	require.NoError(t, s.Schedule(services.ReminderJob{MissionID: a, Hour: 8, RepeatDays: []int{0, 6}, Repeats: true}))
	require.NoError(t, s.Schedule(services.ReminderJob{MissionID: b, Hour: 9, Repeats: true}))
	assert.Len(t, s.cron.Entries(), 3)

	s.Cancel(a)
	assert.Empty(t, s.Keys(a))
	assert.Len(t, s.cron.Entries(), 1)

	s.Cancel(uuid.New())
	s.CancelAll()
	assert.Empty(t, s.cron.Entries())
	assert.Empty(t, s.Keys(b))
}

func TestScheduleRejectsBadTime(t *testing.T) {
	s, _ := newScheduler()
	assert.Error(t, s.Schedule(services.ReminderJob{MissionID: uuid.New(), Hour: 25}))
	assert.Empty(t, s.cron.Entries())
}

func TestFireNotifiesAndDropsOneShot(t *testing.T) {
	s, box := newScheduler()
	userID, missionID := uuid.New(), uuid.New()

	once := services.ReminderJob{MissionID: missionID, UserID: userID, Body: "Time to stretch", Hour: 6}
	require.NoError(t, s.Schedule(once))
	s.fire(once, missionID.String())()

	assert.Equal(t, []string{"Time to stretch"}, box.messages[userID])
	assert.Equal(t, []uuid.UUID{missionID}, box.missions)
	assert.Empty(t, s.Keys(missionID))
	assert.Empty(t, s.cron.Entries())

	repeating := once
	repeating.Repeats = true
	require.NoError(t, s.Schedule(repeating))
	box.fail = true
	s.fire(repeating, missionID.String())()
	assert.Equal(t, []string{missionID.String()}, s.Keys(missionID))
}
