package services

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/habitquest/internal/account"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Clock yields the current instant in the location that defines civil days
// for streaks and daily resets.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

func SystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return Clock{Now: time.Now, Location: loc}
}

func (c Clock) Current() time.Time {
	return c.Now().In(c.Location)
}

// ReminderJob describes a scheduled reminder for one mission.
type ReminderJob struct {
	MissionID  uuid.UUID
	UserID     uuid.UUID
	Title      string
	Body       string
	Hour       int
	Minute     int
	RepeatDays []int
	Repeats    bool
}

// Scheduler delivers mission reminders. Implementations must treat Schedule
// as replace: any existing schedule for the mission is dropped first.
type Scheduler interface {
	Schedule(job ReminderJob) error
	Cancel(missionID uuid.UUID)
	CancelAll()
}

// Deps bundles what every service needs.
type Deps struct {
	DB        *gorm.DB
	Locker    *account.Locker
	Clock     Clock
	Scheduler Scheduler
}

type noopScheduler struct{}

func (noopScheduler) Schedule(ReminderJob) error { return nil }
func (noopScheduler) Cancel(uuid.UUID)           {}
func (noopScheduler) CancelAll()                 {}

func (d Deps) withDefaults() Deps {
	if d.Locker == nil {
		d.Locker = account.NewLocker()
	}
	if d.Clock.Now == nil {
		d.Clock = SystemClock(d.Clock.Location)
	}
	if d.Clock.Location == nil {
		d.Clock.Location = time.UTC
	}
	if d.Scheduler == nil {
		d.Scheduler = noopScheduler{}
	}
	return d
}
