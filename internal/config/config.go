// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const defaultBaseURL = "http://127.0.0.1:8000"

// Config holds all client configuration. The backend base URL is resolved
// exactly once at process start; everything downstream assumes a single
// resolved URL.
type Config struct {
	BaseURL      string  // backend REST + WebSocket host
	ConfigSvcURL string  // optional config-lookup service, consulted when BaseURL is unset
	StatePath    string  // SQLite file holding the session token and roster state
	Language     string  // default diagnosis report language: en, ms, zh
	Latitude     float64 // farm coordinates sent with diagnosis submissions
	Longitude    float64
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		BaseURL:      strings.TrimRight(getEnv("AGRI_API_URL", ""), "/"),
		ConfigSvcURL: strings.TrimRight(getEnv("AGRI_CONFIG_URL", ""), "/"),
		StatePath:    getEnv("AGRI_STATE_PATH", defaultStatePath()),
		Language:     getEnv("AGRI_LANGUAGE", "en"),
		Latitude:     getEnvFloat("AGRI_LATITUDE", 0),
		Longitude:    getEnvFloat("AGRI_LONGITUDE", 0),
	}

	// An .env file with AGRI_LANGUAGE= sets the var to an empty string;
	// treat that the same as unset.
	if cfg.Language == "" {
		cfg.Language = "en"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.StatePath == "" {
		return fmt.Errorf("AGRI_STATE_PATH cannot be empty")
	}
	switch c.Language {
	case "en", "ms", "zh":
	default:
		return fmt.Errorf("AGRI_LANGUAGE must be one of en, ms, zh")
	}
	return nil
}

// IsDevelopment returns true if the client targets a local backend.
func (c *Config) IsDevelopment() bool {
	return c.BaseURL == "" ||
		strings.Contains(c.BaseURL, "localhost") ||
		strings.Contains(c.BaseURL, "127.0.0.1")
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./agri-advisor.db"
	}
	return home + "/.agri-advisor/state.db"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}
