package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ANALYTICS_DEFAULT_LIMIT", "")
	t.Setenv("ANALYTICS_PERIOD", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 5, cfg.Analytics.DefaultLimit)
	assert.Equal(t, 5, cfg.Analytics.StatsTopN)
	assert.Equal(t, 30*24*time.Hour, cfg.Analytics.Period)
	assert.Equal(t, 5*time.Minute, cfg.Analytics.RefreshInterval)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ANALYTICS_DEFAULT_LIMIT", "10")
	t.Setenv("ANALYTICS_PERIOD", "168h")
	t.Setenv("DB_NAME", "isaraya_test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Analytics.DefaultLimit)
	assert.Equal(t, 7*24*time.Hour, cfg.Analytics.Period)
	assert.Contains(t, cfg.Database.ConnectionString(), "dbname=isaraya_test")
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("ANALYTICS_STATS_TOP_N", "lots")
	t.Setenv("ANALYTICS_REFRESH_INTERVAL", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Analytics.StatsTopN)
	assert.Equal(t, 5*time.Minute, cfg.Analytics.RefreshInterval)
}

func TestLoadRejectsNonPositiveLimit(t *testing.T) {
	t.Setenv("ANALYTICS_DEFAULT_LIMIT", "0")

	_, err := Load()
	assert.ErrorContains(t, err, "ANALYTICS_DEFAULT_LIMIT")
}
