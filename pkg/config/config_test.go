package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, "coop_portal", cfg.Database.Name)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
	assert.Equal(t, 5*time.Second, cfg.Redis.DialTimeout)
	assert.Equal(t, NotifyDriverLog, cfg.Notifications.Driver)
	assert.Equal(t, 3, cfg.Notifications.MaxRetries)
	assert.Equal(t, 2*time.Minute, cfg.Positions.CacheTTL)
}

func TestLoadEnvOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("NOTIFY_DRIVER", "SendGrid")
	t.Setenv("POSITIONS_CACHE_TTL", "45s")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:3000, https://coop.example.edu ,")
	t.Setenv("NOTIFY_RETRY_DELAY", "not-a-duration")
	t.Setenv("REDIS_READ_TIMEOUT", "750ms")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, NotifyDriverSendGrid, cfg.Notifications.Driver)
	assert.Equal(t, 45*time.Second, cfg.Positions.CacheTTL)
	assert.Equal(t, []string{"http://localhost:3000", "https://coop.example.edu"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 5*time.Second, cfg.Notifications.RetryDelay)
	assert.Equal(t, 750*time.Millisecond, cfg.Redis.ReadTimeout)
}

func TestLoadUnknownDriverFallsBackToLog(t *testing.T) {
	chdirTemp(t)
	t.Setenv("NOTIFY_DRIVER", "carrier-pigeon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, NotifyDriverLog, cfg.Notifications.Driver)
}
