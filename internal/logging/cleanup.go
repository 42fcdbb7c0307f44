package logging

import (
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/habitquest/internal/models"
	"gorm.io/gorm"
)

// Prune deletes system_logs older than retentionDays relative to now.
func Prune(db *gorm.DB, retentionDays int, now time.Time) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := now.AddDate(0, 0, -retentionDays).UTC()
	result := db.Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	if result.Error != nil {
		slog.Error("log cleanup failed", "error", result.Error, "component", "logging")
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		slog.Info("log cleanup completed", "deleted", result.RowsAffected)
	}
	return result.RowsAffected, nil
}
