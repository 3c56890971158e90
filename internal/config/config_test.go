package config

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
    t.Setenv("JWT_SECRET", "test-secret")
    t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$abcdefghijklmnopqrstuv")
}

func TestLoad_DefaultValues(t *testing.T) {
    setRequired(t)
    t.Setenv("STORE_DRIVER", "")

    cfg, err := Load()
    require.NoError(t, err)
    assert.Equal(t, "8080", cfg.Port)
    assert.Equal(t, DriverCSV, cfg.StoreDriver)
    assert.Equal(t, "data/reservation_records.csv", cfg.CSVPath)
    assert.Equal(t, 60, cfg.AccessTTLMin)
    assert.Equal(t, 10*time.Second, cfg.LockTTL)
    assert.False(t, cfg.EventsEnabled)
    assert.Equal(t, "info", cfg.LogLevel)
    assert.Equal(t, "logs", cfg.AuditDir)
}

func TestLoad_MissingSecrets(t *testing.T) {
    t.Setenv("JWT_SECRET", "")
    t.Setenv("ADMIN_PASSWORD_HASH", "")

    _, err := Load()
    require.Error(t, err)
    assert.Contains(t, err.Error(), "ADMIN_PASSWORD_HASH, JWT_SECRET")
}

func TestLoad_MySQLRequiresConnectionVars(t *testing.T) {
    setRequired(t)
    t.Setenv("STORE_DRIVER", "MySQL")
    t.Setenv("DB_USER", "")
    t.Setenv("DB_HOST", "db")
    t.Setenv("DB_NAME", "")

    _, err := Load()
    require.Error(t, err)
    assert.Contains(t, err.Error(), "DB_NAME, DB_USER")

    t.Setenv("DB_USER", "gear")
    t.Setenv("DB_NAME", "gear")
    cfg, err := Load()
    require.NoError(t, err)
    assert.Equal(t, DriverMySQL, cfg.StoreDriver)
    assert.Equal(t, "3306", cfg.DBPort)
}

func TestLoad_UnknownDriver(t *testing.T) {
    setRequired(t)
    t.Setenv("STORE_DRIVER", "sheets")

    _, err := Load()
    require.Error(t, err)
}

func TestLoadRateLimitConfig_Clamps(t *testing.T) {
    t.Setenv("RATE_LIMIT_CAPACITY", "0")
    t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
    t.Setenv("RATE_LIMIT_TTL", "1s")

    cfg := LoadRateLimitConfig()
    assert.Equal(t, 1, cfg.Capacity)
    assert.Equal(t, 10*time.Second, cfg.TTL)
}
