// Package jobs runs the periodic maintenance work of the server.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/habitquest/internal/config"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/logging"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Expirer moves stale pending requests to expired.
type Expirer interface {
	ExpireStale(maxAge time.Duration) (int64, error)
}

type Runner struct {
	cron    *cron.Cron
	db      *gorm.DB
	cfg     *config.Config
	expirer Expirer
	now     func() time.Time
}

func NewRunner(cfg *config.Config, db *gorm.DB, expirer Expirer) *Runner {
	logger := cron.PrintfLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn))
	return &Runner{
		cron: cron.New(
			cron.WithLocation(cfg.Location()),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		db:      db,
		cfg:     cfg,
		expirer: expirer,
		now:     time.Now,
	}
}

// Register adds every job to the cron. It fails on an invalid schedule.
func (r *Runner) Register() error {
	if _, err := r.cron.AddFunc(r.cfg.ExpirySchedule, r.ExpireRequests); err != nil {
		return err
	}
	if _, err := r.cron.AddFunc("@daily", r.PruneLogs); err != nil {
		return err
	}
	return nil
}

func (r *Runner) Start() {
	r.cron.Start()
	slog.Info("background jobs started", "expiry_schedule", r.cfg.ExpirySchedule)
}

func (r *Runner) Stop() context.Context {
	return r.cron.Stop()
}

func (r *Runner) ExpireRequests() {
	n, err := r.expirer.ExpireStale(r.cfg.RequestExpiry)
	if err != nil {
		slog.Error("request expiry failed", "error", err, "component", "jobs", "action", "expire_requests")
		return
	}
	if n > 0 {
		slog.Info("expired stale requests", "count", n)
	}
}

func (r *Runner) PruneLogs() {
	_, _ = logging.Prune(r.db, r.cfg.LogRetentionDays, r.now())
}
