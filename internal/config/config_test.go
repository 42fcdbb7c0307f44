package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("REQUEST_EXPIRY", "")
	t.Setenv("TIMEZONE", "")

	cfg := Load()

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 336*time.Hour, cfg.RequestExpiry)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessExpiry)
	assert.Equal(t, time.UTC, cfg.Location())
	assert.False(t, cfg.UsesSQLite())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("REQUEST_EXPIRY", "48h")
	t.Setenv("LOG_RETENTION_DAYS", "7")
	t.Setenv("JWT_ACCESS_EXPIRY", "not-a-duration")

	cfg := Load()

	assert.True(t, cfg.UsesSQLite())
	assert.Equal(t, 48*time.Hour, cfg.RequestExpiry)
	assert.Equal(t, 7, cfg.LogRetentionDays)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessExpiry)
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := &Config{Timezone: "Mars/Olympus_Mons"}
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "n", DBPort: "5432", DBSSLMode: "disable"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5432 sslmode=disable TimeZone=UTC", cfg.DSN())
}
