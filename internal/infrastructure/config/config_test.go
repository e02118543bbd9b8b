package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "5001", cfg.Server.Port)
	assert.Equal(t, 720*time.Hour, cfg.Store.Retention)
	assert.Equal(t, 10*time.Second, cfg.Exec.Timeout)
	assert.Equal(t, 8, cfg.Exec.MaxConcurrent)
	assert.Equal(t, 1<<20, cfg.Exec.MaxOutputBytes)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("SESSION_RETENTION", "48h")
	t.Setenv("EXEC_MAX_CONCURRENT", "2")
	t.Setenv("LOG_DEV", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, 48*time.Hour, cfg.Store.Retention)
	assert.Equal(t, 2, cfg.Exec.MaxConcurrent)
	assert.True(t, cfg.Logging.Development)
}

func TestLoadOrDefaultFallsBack(t *testing.T) {
	t.Setenv("EXEC_TIMEOUT", "not-a-duration")

	cfg := LoadOrDefault()
	assert.Equal(t, 10*time.Second, cfg.Exec.Timeout)
}
