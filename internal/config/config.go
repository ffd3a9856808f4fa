// Package config provides process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds the deployment configuration shared by the poller and the
// API. It is loaded once in main and passed down explicitly.
type Config struct {
	// Product keys the persisted record, e.g. "Primo".
	Product string

	// ProductLabel is the human-facing product name used in notification
	// text, e.g. "Library Search".
	ProductLabel string

	// LocalZone is the IANA zone window endpoints and poll stamps are
	// rendered in.
	LocalZone string

	// Location is LocalZone resolved, set by Load.
	Location *time.Location

	// FeedURL is the vendor status feed endpoint. Empty means the
	// client's default.
	FeedURL string

	// FeedEnv is the hosted environment identifier posted to the feed.
	FeedEnv string

	// PollSchedule is the cron spec for the poll loop.
	PollSchedule string

	// PollOnce runs a single poll cycle and exits, for scheduled
	// invocation environments.
	PollOnce bool

	// PollTimeout bounds one fetch-classify-persist cycle.
	PollTimeout time.Duration
}

// Load reads configuration from the environment and resolves the local
// zone. EX_LIBRIS_ENV has no sensible default and must be set.
func Load() (Config, error) {
	feedEnv := os.Getenv("EX_LIBRIS_ENV")
	if feedEnv == "" {
		return Config{}, fmt.Errorf("EX_LIBRIS_ENV must be set")
	}

	timeout, err := time.ParseDuration(getEnvOrDefault("POLL_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse POLL_TIMEOUT: %w", err)
	}

	cfg := Config{
		Product:      getEnvOrDefault("PRODUCT", "Primo"),
		ProductLabel: getEnvOrDefault("LIBRARY_SEARCH_NAME", "Library Search"),
		LocalZone:    getEnvOrDefault("LOCAL_TZ", "Australia/Sydney"),
		FeedURL:      os.Getenv("FEED_URL"),
		FeedEnv:      feedEnv,
		PollSchedule: getEnvOrDefault("POLL_SCHEDULE", "@every 1m"),
		PollOnce:     os.Getenv("POLL_ONCE") == "true",
		PollTimeout:  timeout,
	}

	cfg.Location, err = time.LoadLocation(cfg.LocalZone)
	if err != nil {
		return Config{}, fmt.Errorf("load zone %q: %w", cfg.LocalZone, err)
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
