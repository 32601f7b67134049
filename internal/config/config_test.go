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
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, time.Second, cfg.BucketTick)
	assert.Equal(t, time.Second, cfg.ReminderTick)
	assert.Equal(t, 10, cfg.HistoryLimit)
	assert.InDelta(t, 60, cfg.Ranges.HeartRate.Min, 1e-9)
	assert.InDelta(t, 100, cfg.Ranges.HeartRate.Max, 1e-9)
	assert.InDelta(t, 37.2, cfg.Ranges.Temperature.Max, 1e-9)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("BUCKET_TICK", "250ms")
	t.Setenv("HISTORY_LIMIT", "25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 250*time.Millisecond, cfg.BucketTick)
	assert.Equal(t, 25, cfg.HistoryLimit)
}

func TestLoadYAMLOverlayKeepsDefaultRanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http_addr: ":7070"
ranges:
  heart_rate:
    min: 50
    max: 120
`), 0o600))
	t.Setenv("HEALTHWATCH_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.HTTPAddr)
	assert.InDelta(t, 50, cfg.Ranges.HeartRate.Min, 1e-9)
	assert.InDelta(t, 120, cfg.Ranges.HeartRate.Max, 1e-9)
	// Untouched bands keep their defaults.
	assert.InDelta(t, 95, cfg.Ranges.SpO2.Min, 1e-9)
	assert.InDelta(t, 36.1, cfg.Ranges.Temperature.Min, 1e-9)
}

func TestLoadBadYAMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{{not yaml"), 0o600))
	t.Setenv("HEALTHWATCH_CONFIG", path)

	_, err := Load()
	assert.Error(t, err)
}
