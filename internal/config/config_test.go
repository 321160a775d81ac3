package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGetEnvString(t *testing.T) {
	key := "TEST_ENV_STRING"
	val := "test_value"
	os.Setenv(key, val)
	defer os.Unsetenv(key)

	if got := getEnvString(key, "default"); got != val {
		t.Errorf("getEnvString() = %q, want %q", got, val)
	}

	if got := getEnvString("NON_EXISTENT", "default"); got != "default" {
		t.Errorf("getEnvString() = %q, want %q", got, "default")
	}
}

func TestGetEnvFloat(t *testing.T) {
	key := "TEST_ENV_FLOAT"

	tests := []struct {
		name       string
		envVal     string
		defaultVal float64
		want       float64
	}{
		{"Valid", "185.5", 200, 185.5},
		{"Invalid", "heavy", 200, 200},
		{"Empty", "", 200, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envVal != "" {
				os.Setenv(key, tt.envVal)
				defer os.Unsetenv(key)
			} else {
				os.Unsetenv(key)
			}

			if got := getEnvFloat(key, tt.defaultVal); got != tt.want {
				t.Errorf("getEnvFloat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	key := "TEST_ENV_DURATION"

	tests := []struct {
		name       string
		envVal     string
		defaultVal time.Duration
		want       time.Duration
	}{
		{"ValidDuration", "1m", time.Second, time.Minute},
		{"ValidSeconds", "60", time.Second, 60 * time.Second},
		{"Invalid", "invalid", time.Second, time.Second},
		{"Empty", "", time.Second, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envVal != "" {
				os.Setenv(key, tt.envVal)
				defer os.Unsetenv(key)
			} else {
				os.Unsetenv(key)
			}

			if got := getEnvDuration(key, tt.defaultVal); got != tt.want {
				t.Errorf("getEnvDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnsureDir(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "dir")

	if err := ensureDir(path); err != nil {
		t.Fatalf("ensureDir() failed: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("directory was not created")
	}

	if err := ensureDir(""); err != nil {
		t.Error("ensureDir(\"\") should not error")
	}
}

func TestLoadRequiresEndpoints(t *testing.T) {
	tmpDir := t.TempDir()
	os.Setenv("DATABASE_PATH", filepath.Join(tmpDir, "test.db"))
	os.Unsetenv("HEALTH_ENDPOINT")
	os.Unsetenv("SPEND_FEED_URL")
	defer os.Unsetenv("DATABASE_PATH")

	if _, err := Load(); err == nil {
		t.Error("Expected error when HEALTH_ENDPOINT is missing")
	}

	os.Setenv("HEALTH_ENDPOINT", "http://localhost:9100")
	defer os.Unsetenv("HEALTH_ENDPOINT")

	if _, err := Load(); err == nil {
		t.Error("Expected error when SPEND_FEED_URL is missing")
	}

	os.Setenv("SPEND_FEED_URL", filepath.Join(tmpDir, "orders.csv"))
	defer os.Unsetenv("SPEND_FEED_URL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.GoalWeight != defaultGoalWeight {
		t.Errorf("Expected default goal weight %v, got %v", defaultGoalWeight, cfg.GoalWeight)
	}
	if cfg.ActiveStepThreshold != defaultActiveStepThreshold {
		t.Errorf("Expected default step threshold %v, got %v",
			defaultActiveStepThreshold, cfg.ActiveStepThreshold)
	}
}
