// Package config contains everything related to configuration
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	DatabasePath        string
	HealthEndpoint      string
	SpendFeedURL        string
	ExportPath          string
	GoalWeight          float64
	ActiveStepThreshold int64
	SyncOnStart         bool
	SyncTimeout         time.Duration
}

// Default values
const (
	defaultGoalWeight          = 200.0
	defaultActiveStepThreshold = 8000
	defaultSyncTimeout         = 2 * time.Minute
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
		DatabasePath:        getEnvString("DATABASE_PATH", getDefaultDatabasePath()),
		HealthEndpoint:      getEnvString("HEALTH_ENDPOINT", ""),
		SpendFeedURL:        getEnvString("SPEND_FEED_URL", ""),
		ExportPath:          getEnvString("EXPORT_PATH", getDefaultExportPath()),
		GoalWeight:          getEnvFloat("GOAL_WEIGHT", defaultGoalWeight),
		ActiveStepThreshold: getEnvInt64("ACTIVE_STEP_THRESHOLD", defaultActiveStepThreshold),
		SyncOnStart:         getEnvBool("SYNC_ON_START", true),
		SyncTimeout:         getEnvDuration("SYNC_TIMEOUT", defaultSyncTimeout),
	}

	if cfg.HealthEndpoint == "" {
		return nil, fmt.Errorf("HEALTH_ENDPOINT is required (URL of the health export API)")
	}
	if cfg.SpendFeedURL == "" {
		return nil, fmt.Errorf("SPEND_FEED_URL is required (URL or file path of the spend CSV feed)")
	}
	if cfg.GoalWeight <= 0 {
		return nil, fmt.Errorf("GOAL_WEIGHT must be positive, got %v", cfg.GoalWeight)
	}

	// Ensure database directory exists
	if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
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
			filepath.Join(home, ".config", "healthdash", ".env"),
			filepath.Join(home, ".healthdash", ".env"),
		)
	}

	return paths
}

// getDefaultDatabasePath returns the default path for the SQLite database.
func getDefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "healthdash.db"
	}
	return filepath.Join(home, ".config", "healthdash", "healthdash.db")
}

// getDefaultExportPath returns the default path for JSON snapshot exports.
func getDefaultExportPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "healthdash-snapshot.json"
	}
	return filepath.Join(home, ".config", "healthdash", "snapshot.json")
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns the default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvInt64 retrieves an integer environment variable or returns the default.
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns the default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
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
