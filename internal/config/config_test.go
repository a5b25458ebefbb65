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
	t.Setenv(key, val)

	if got := getEnvString(key, "default"); got != val {
		t.Errorf("getEnvString() = %q, want %q", got, val)
	}

	if got := getEnvString("NON_EXISTENT", "default"); got != "default" {
		t.Errorf("getEnvString() = %q, want %q", got, "default")
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
				t.Setenv(key, tt.envVal)
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

func TestGetDefaultPaths(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Skipping test because user home dir cannot be found")
	}

	dbPath := getDefaultDatabasePath()
	expectedDb := filepath.Join(home, ".config", "convicti", "stats.db")
	if dbPath != expectedDb {
		t.Errorf("getDefaultDatabasePath() = %q, want %q", dbPath, expectedDb)
	}

	sessPath := getDefaultSessionPath()
	expectedSess := filepath.Join(home, ".config", "convicti", "session.json")
	if sessPath != expectedSess {
		t.Errorf("getDefaultSessionPath() = %q, want %q", sessPath, expectedSess)
	}
}

func TestGetEnvPaths(t *testing.T) {
	paths := getEnvPaths()
	if len(paths) == 0 {
		t.Error("getEnvPaths() returned empty list")
	}

	// Basic check that it contains current directory
	cwd, _ := os.Getwd()
	found := false
	for _, p := range paths {
		if p == filepath.Join(cwd, ".env") {
			found = true
			break
		}
	}
	if !found {
		t.Error("getEnvPaths() missing current directory .env")
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.com/")
	t.Setenv("API_AUTH_URL", "https://api.example.com/oauth/token")
	t.Setenv("CLIENT_ID", "test-id")
	t.Setenv("CLIENT_SECRET", "test-secret")

	// Use temp dir for paths to avoid permission issues
	tmpDir := t.TempDir()
	t.Setenv("DATABASE_PATH", filepath.Join(tmpDir, "stats.db"))
	t.Setenv("SESSION_PATH", filepath.Join(tmpDir, "session.json"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.ClientID != "test-id" {
		t.Errorf("ClientID = %q, want %q", cfg.ClientID, "test-id")
	}
	// Trailing slash must be trimmed so URL joining stays predictable
	if cfg.APIBaseURL != "https://api.example.com" {
		t.Errorf("APIBaseURL = %q, want %q", cfg.APIBaseURL, "https://api.example.com")
	}
	if cfg.StatsRefreshInterval != defaultStatsRefreshInterval {
		t.Errorf("StatsRefreshInterval = %v, want %v", cfg.StatsRefreshInterval, defaultStatsRefreshInterval)
	}
}

func TestLoad_MissingCredentials(t *testing.T) {
	// Ensure env is clean
	os.Unsetenv("API_BASE_URL")
	os.Unsetenv("API_AUTH_URL")
	os.Unsetenv("CLIENT_ID")
	os.Unsetenv("CLIENT_SECRET")

	// Create a temp directory and cd into it to avoid picking up local .env
	tmpDir := t.TempDir()
	wd, _ := os.Getwd()
	defer os.Chdir(wd)
	os.Chdir(tmpDir)

	// We also need to point HOME elsewhere to prevent loading from ~/.config
	t.Setenv("HOME", tmpDir)

	_, err := Load()
	if err == nil {
		t.Error("Load() should fail when credentials are missing")
	}
}

func TestLoad_WithEnvFile(t *testing.T) {
	tmpDir := t.TempDir()
	envPath := filepath.Join(tmpDir, ".env")
	content := "API_BASE_URL=https://env.example.com\n" +
		"API_AUTH_URL=https://env.example.com/oauth/token\n" +
		"CLIENT_ID=env-id\n" +
		"CLIENT_SECRET=env-secret\n"
	if err := os.WriteFile(envPath, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	// Change working directory to tmpDir so Load finds .env
	wd, _ := os.Getwd()
	defer os.Chdir(wd)
	os.Chdir(tmpDir)

	// Ensure no env vars interfere
	os.Unsetenv("API_BASE_URL")
	os.Unsetenv("API_AUTH_URL")
	os.Unsetenv("CLIENT_ID")
	os.Unsetenv("CLIENT_SECRET")
	t.Setenv("DATABASE_PATH", filepath.Join(tmpDir, "stats.db"))
	t.Setenv("SESSION_PATH", filepath.Join(tmpDir, "session.json"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.ClientID != "env-id" {
		t.Errorf("ClientID = %q, want env-id", cfg.ClientID)
	}
}
