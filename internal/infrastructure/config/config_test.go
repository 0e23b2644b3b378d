package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "https://api.coinbase.com", cfg.FeedURL)
	assert.Equal(t, 10*time.Second, cfg.FeedTimeout)
	assert.Equal(t, 3*time.Second, cfg.RateTTL)
	assert.Equal(t, 5*time.Second, cfg.RefreshInterval)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SATSVAL_ADDR", "127.0.0.1:8080")
	t.Setenv("SATSVAL_RATE_TTL", "1500ms")
	t.Setenv("SATSVAL_REFRESH_INTERVAL", "0")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Addr)
	assert.Equal(t, 1500*time.Millisecond, cfg.RateTTL)
	assert.Equal(t, time.Duration(0), cfg.RefreshInterval)
}

func TestLoadFromEnvFile(t *testing.T) {
	// godotenv never overrides variables that are already set, so make sure
	// these are restored and cleared around the test
	t.Setenv("SATSVAL_LOG_LEVEL", "")
	t.Setenv("SATSVAL_FEED_URL", "")
	os.Unsetenv("SATSVAL_LOG_LEVEL")
	os.Unsetenv("SATSVAL_FEED_URL")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SATSVAL_LOG_LEVEL=debug\nSATSVAL_FEED_URL=http://localhost:9999\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "http://localhost:9999", cfg.FeedURL)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.env")

	t.Run("unparseable duration", func(t *testing.T) {
		t.Setenv("SATSVAL_RATE_TTL", "soon")
		_, err := Load(missing)
		assert.Error(t, err)
	})

	t.Run("non-positive ttl", func(t *testing.T) {
		t.Setenv("SATSVAL_RATE_TTL", "0s")
		_, err := Load(missing)
		assert.ErrorContains(t, err, "rate TTL must be positive")
	})

	t.Run("negative refresh interval", func(t *testing.T) {
		t.Setenv("SATSVAL_REFRESH_INTERVAL", "-1s")
		_, err := Load(missing)
		assert.ErrorContains(t, err, "refresh interval")
	})
}
