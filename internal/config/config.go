// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits with an error.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all runtime configuration for the sync service.
type Config struct {
	Port          string
	DatabaseURL   string
	RedisURL      string
	TrackerAPIURL string
	// TrackerAPIToken is optional: without it the service starts signed
	// out and serves guest-local data only.
	TrackerAPIToken string
	// RefreshMinutes is the background refresh interval; 0 disables the
	// scheduler.
	RefreshMinutes int
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	apiURL := os.Getenv("TRACKER_API_URL")
	if apiURL == "" {
		return nil, fmt.Errorf("TRACKER_API_URL is required")
	}

	port := os.Getenv("SYNC_PORT")
	if port == "" {
		port = "8083"
	}

	refresh := 15
	if raw := os.Getenv("SYNC_REFRESH_MINUTES"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("SYNC_REFRESH_MINUTES must be a non-negative integer, got %q", raw)
		}
		refresh = n
	}

	return &Config{
		Port:            port,
		DatabaseURL:     dbURL,
		RedisURL:        redisURL,
		TrackerAPIURL:   apiURL,
		TrackerAPIToken: os.Getenv("TRACKER_API_TOKEN"),
		RefreshMinutes:  refresh,
	}, nil
}
