// Package config contains everything related to configuration
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	APIBaseURL           string
	APIAuthURL           string
	ClientID             string
	ClientSecret         string
	SessionPath          string
	DatabasePath         string
	StatsRefreshInterval time.Duration
}

// Default values
const (
	defaultStatsRefreshInterval = 60 * time.Second
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	envPaths := getEnvPaths()
	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	cfg := &Config{
		APIBaseURL:           strings.TrimRight(getEnvString("API_BASE_URL", ""), "/"),
		APIAuthURL:           getEnvString("API_AUTH_URL", ""),
		ClientID:             getEnvString("CLIENT_ID", ""),
		ClientSecret:         getEnvString("CLIENT_SECRET", ""),
		SessionPath:          getEnvString("SESSION_PATH", getDefaultSessionPath()),
		DatabasePath:         getEnvString("DATABASE_PATH", getDefaultDatabasePath()),
		StatsRefreshInterval: getEnvDuration("STATS_REFRESH_INTERVAL", defaultStatsRefreshInterval),
	}

	if cfg.APIBaseURL == "" || cfg.APIAuthURL == "" {
		return nil, fmt.Errorf("API_BASE_URL and API_AUTH_URL are required")
	}

	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("CLIENT_ID and CLIENT_SECRET are required")
	}

	// Ensure database directory exists
	if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
		return nil, err
	}

	// Ensure session directory exists
	if err := ensureDir(filepath.Dir(cfg.SessionPath)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory locations
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "convicti", ".env"),
			filepath.Join(home, ".convicti", ".env"),
		)
	}

	// Parent directory (useful for development)
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(cwd), ".env"))
	}

	return paths
}

// getDefaultDatabasePath returns the default path for the SQLite database.
func getDefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "stats.db"
	}
	return filepath.Join(home, ".config", "convicti", "stats.db")
}

// getDefaultSessionPath returns the default path for the session JSON file.
func getDefaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "session.json"
	}
	return filepath.Join(home, ".config", "convicti", "session.json")
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
