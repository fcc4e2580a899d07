package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "tk-test-token"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SYNOPTIC_TOKEN", testToken)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)

	assert.Equal(t, testToken, cfg.SynopticToken)
	assert.Equal(t, testToken, cfg.MesowestToken, "mesowest token falls back to synoptic token")
	assert.Equal(t, "https://api.synopticdata.com/v2", cfg.SynopticBaseURL)
	assert.Equal(t, "https://api.mesowest.net/v2", cfg.MesowestBaseURL)
	assert.Equal(t, "https://api.weather.gov", cfg.NWSBaseURL)

	assert.Equal(t, 15*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryBaseDelay)
	assert.Equal(t, 8*time.Second, cfg.RetryMaxDelay)

	assert.Equal(t, 500, cfg.CacheCapacity)
	assert.Equal(t, 5*time.Minute, cfg.CurrentTTL)
	assert.Equal(t, 6*time.Hour, cfg.SearchTTL)
	assert.Equal(t, 24*time.Hour, cfg.HistoryTTL)
	assert.Equal(t, 10*time.Minute, cfg.AlertsTTL)
	assert.Equal(t, time.Minute, cfg.SweepInterval)

	assert.True(t, cfg.AlertsEnabled)
	assert.True(t, cfg.FireIndicesEnabled)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("SYNOPTIC_TOKEN", testToken)
	t.Setenv("MESOWEST_TOKEN", "mw-token")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("UPSTREAM_MAX_RETRIES", "5")
	t.Setenv("CACHE_CURRENT_TTL", "2m")
	t.Setenv("CACHE_CAPACITY", "100")
	t.Setenv("ALERTS_ENABLED", "false")
	t.Setenv("FIRE_INDICES_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "mw-token", cfg.MesowestToken)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, 2*time.Minute, cfg.CurrentTTL)
	assert.Equal(t, 100, cfg.CacheCapacity)
	assert.False(t, cfg.AlertsEnabled)
	assert.False(t, cfg.FireIndicesEnabled)
}

func TestLoad_MissingToken(t *testing.T) {
	t.Setenv("SYNOPTIC_TOKEN", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SYNOPTIC_TOKEN")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad duration", "CACHE_CURRENT_TTL", "soon"},
		{"negative duration", "CACHE_CURRENT_TTL", "-5m"},
		{"bad int", "CACHE_CAPACITY", "many"},
		{"zero capacity", "CACHE_CAPACITY", "0"},
		{"negative retries", "UPSTREAM_MAX_RETRIES", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SYNOPTIC_TOKEN", testToken)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
