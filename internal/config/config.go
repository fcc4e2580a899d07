// Package config loads service settings from environment variables,
// applying defaults and validating the result.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Upstream providers.
	SynopticToken   string
	SynopticBaseURL string
	MesowestToken   string
	MesowestBaseURL string
	NWSBaseURL      string
	UserAgent       string

	// Upstream resilience.
	UpstreamTimeout time.Duration
	MaxRetries      int
	RetryBaseDelay  time.Duration
	RetryMaxDelay   time.Duration

	// Caching.
	CacheCapacity int
	CurrentTTL    time.Duration
	SearchTTL     time.Duration
	HistoryTTL    time.Duration
	AlertsTTL     time.Duration
	SweepInterval time.Duration

	// Feature flags.
	AlertsEnabled      bool
	FireIndicesEnabled bool
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPAddr:  envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:  envOrDefault("LOG_LEVEL", "info"),
		LogFormat: envOrDefault("LOG_FORMAT", "json"),

		SynopticToken:   os.Getenv("SYNOPTIC_TOKEN"),
		SynopticBaseURL: envOrDefault("SYNOPTIC_BASE_URL", "https://api.synopticdata.com/v2"),
		MesowestToken:   os.Getenv("MESOWEST_TOKEN"),
		MesowestBaseURL: envOrDefault("MESOWEST_BASE_URL", "https://api.mesowest.net/v2"),
		NWSBaseURL:      envOrDefault("NWS_BASE_URL", "https://api.weather.gov"),
		UserAgent:       envOrDefault("USER_AGENT", "raws-mcp (github.com/tyson-swetnam/raws-mcp)"),
	}

	var err error
	if cfg.ShutdownTimeout, err = durationEnv("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.UpstreamTimeout, err = durationEnv("UPSTREAM_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.MaxRetries, err = intEnv("UPSTREAM_MAX_RETRIES", 3); err != nil {
		return nil, err
	}
	if cfg.RetryBaseDelay, err = durationEnv("UPSTREAM_RETRY_BASE_DELAY", 500*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.RetryMaxDelay, err = durationEnv("UPSTREAM_RETRY_MAX_DELAY", 8*time.Second); err != nil {
		return nil, err
	}

	if cfg.CacheCapacity, err = intEnv("CACHE_CAPACITY", 500); err != nil {
		return nil, err
	}
	// Current RAWS data updates every 15-60 minutes; the cache lifetime
	// stays well under the update cadence to avoid serving stale readings.
	if cfg.CurrentTTL, err = durationEnv("CACHE_CURRENT_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.SearchTTL, err = durationEnv("CACHE_SEARCH_TTL", 6*time.Hour); err != nil {
		return nil, err
	}
	if cfg.HistoryTTL, err = durationEnv("CACHE_HISTORY_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.AlertsTTL, err = durationEnv("CACHE_ALERTS_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.SweepInterval, err = durationEnv("CACHE_SWEEP_INTERVAL", time.Minute); err != nil {
		return nil, err
	}

	cfg.AlertsEnabled = boolEnv("ALERTS_ENABLED", true)
	cfg.FireIndicesEnabled = boolEnv("FIRE_INDICES_ENABLED", true)

	if cfg.SynopticToken == "" {
		return nil, errors.New("SYNOPTIC_TOKEN is required")
	}
	if cfg.MesowestToken == "" {
		// MesoWest accepts Synoptic tokens; reuse unless overridden.
		cfg.MesowestToken = cfg.SynopticToken
	}
	if cfg.MaxRetries < 0 {
		return nil, errors.New("UPSTREAM_MAX_RETRIES must be >= 0")
	}
	if cfg.CacheCapacity < 1 {
		return nil, errors.New("CACHE_CAPACITY must be >= 1")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func intEnv(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func boolEnv(key string, def bool) bool {
	switch os.Getenv(key) {
	case "true", "1":
		return true
	case "false", "0":
		return false
	default:
		return def
	}
}
