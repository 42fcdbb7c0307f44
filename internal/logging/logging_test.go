package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/habitquest/internal/config"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/database"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(&config.Config{DBDriver: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestMultiHandlerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	h := NewMultiHandler(
		slog.NewTextHandler(&a, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	logger := slog.New(h).With("component", "test")

	logger.Info("hello")
	logger.Error("boom")

	assert.Contains(t, a.String(), "hello")
	assert.Contains(t, a.String(), "boom")
	assert.NotContains(t, b.String(), "hello")
	assert.Contains(t, b.String(), "component=test")
	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error {
	return errors.New("sink down")
}

func TestMultiHandlerKeepsGoingAfterFailure(t *testing.T) {
	var out bytes.Buffer
	text := slog.NewTextHandler(&out, nil)
	h := NewMultiHandler(failingHandler{text}, nil, text)

	err := slog.New(h).Handler().Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "still here", 0))

	assert.EqualError(t, err, "sink down")
	assert.Contains(t, out.String(), "still here")
}

func TestDBHandlerStoresErrors(t *testing.T) {
	db := openDB(t)
	h := NewDBHandler(db, time.Hour)
	defer h.Stop()

	logger := slog.New(h).With("component", "missions")
	logger.Info("ignored")
	logger.Error("complete failed", "user_id", "u-1", "action", "complete", "error", "disk full", "mission_id", "m-1")
	h.Flush()

	var logs []models.SystemLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	entry := logs[0]
	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "missions", entry.Component)
	assert.Equal(t, "complete", entry.Action)
	assert.Equal(t, "disk full", entry.Error)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "u-1", *entry.UserID)
	assert.Contains(t, string(entry.Extra), "mission_id")
}

func TestPrune(t *testing.T) {
	db := openDB(t)
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&[]models.SystemLog{
		{Timestamp: now.AddDate(0, 0, -40), Level: "ERROR", Message: "old"},
		{Timestamp: now.AddDate(0, 0, -1), Level: "ERROR", Message: "recent"},
	}).Error)

	n, err := Prune(db, 30, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = Prune(db, 0, now)
	require.NoError(t, err)
	assert.Zero(t, n)

	var left []models.SystemLog
	require.NoError(t, db.Find(&left).Error)
	require.Len(t, left, 1)
	assert.Equal(t, "recent", left[0].Message)
}
