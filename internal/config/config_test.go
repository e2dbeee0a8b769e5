package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

var keys = []string{
	"FACEIT_API_KEY", "TELEGRAM_TOKEN", "CHAT_ID", "ALLOWED_USER_IDS",
	"ROSTER_BACKEND", "ROSTER_PATH", "POLL_INTERVAL", "REQUEST_TIMEOUT",
	"HISTORY_LIMIT", "STATUS_PAGE_URL", "METRICS_ADDR", "LOG_LEVEL", "TIMEZONE",
}

// cleanEnv points HOME at a temp dir and unsets every config key for the
// duration of the test.
func cleanEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return home
}

func load(t *testing.T) *Config {
	t.Helper()
	cfg, err := Load(zerolog.Nop(), filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return cfg
}

func TestDefaults(t *testing.T) {
	home := cleanEnv(t)
	cfg := load(t)

	if cfg.RosterBackend != BackendYAML {
		t.Errorf("backend = %q", cfg.RosterBackend)
	}
	if want := filepath.Join(home, Dir, "roster.yml"); cfg.RosterPath != want {
		t.Errorf("roster path = %q, want %q", cfg.RosterPath, want)
	}
	if cfg.PollInterval != 60*time.Second || cfg.RequestTimeout != 30*time.Second {
		t.Errorf("durations = %v / %v", cfg.PollInterval, cfg.RequestTimeout)
	}
	if cfg.HistoryLimit != 1 {
		t.Errorf("history limit = %d", cfg.HistoryLimit)
	}
	if cfg.StatusPageURL != "https://www.faceitstatus.com" {
		t.Errorf("status page = %q", cfg.StatusPageURL)
	}
	if cfg.MetricsAddr != "" || cfg.FaceitAPIKey != "" || len(cfg.AllowedUserIDs) != 0 {
		t.Errorf("unexpected non-empty values: %+v", cfg)
	}
	if cfg.Location != time.Local {
		t.Errorf("location = %v", cfg.Location)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	cleanEnv(t)
	t.Setenv("FACEIT_API_KEY", "key")
	t.Setenv("ALLOWED_USER_IDS", " 42, 7 ,,-3")
	t.Setenv("ROSTER_BACKEND", "SQLite")
	t.Setenv("ROSTER_PATH", "/tmp/r.db")
	t.Setenv("POLL_INTERVAL", "15s")
	t.Setenv("HISTORY_LIMIT", "5")
	t.Setenv("TIMEZONE", "UTC")

	cfg := load(t)
	if cfg.FaceitAPIKey != "key" {
		t.Errorf("api key = %q", cfg.FaceitAPIKey)
	}
	if want := []int64{42, 7, -3}; !reflect.DeepEqual(cfg.AllowedUserIDs, want) {
		t.Errorf("allowed = %v, want %v", cfg.AllowedUserIDs, want)
	}
	if cfg.RosterBackend != BackendSQLite || cfg.RosterPath != "/tmp/r.db" {
		t.Errorf("roster = %s %s", cfg.RosterBackend, cfg.RosterPath)
	}
	if cfg.PollInterval != 15*time.Second {
		t.Errorf("poll interval = %v", cfg.PollInterval)
	}
	if cfg.HistoryLimit != 5 {
		t.Errorf("history limit = %d", cfg.HistoryLimit)
	}
	if cfg.Location.String() != "UTC" {
		t.Errorf("location = %v", cfg.Location)
	}
}

func TestSQLiteDefaultPath(t *testing.T) {
	home := cleanEnv(t)
	t.Setenv("ROSTER_BACKEND", "sqlite")
	cfg := load(t)
	if want := filepath.Join(home, Dir, "roster.db"); cfg.RosterPath != want {
		t.Errorf("roster path = %q, want %q", cfg.RosterPath, want)
	}
}

func TestInvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"ROSTER_BACKEND", "postgres"},
		{"ALLOWED_USER_IDS", "42,bob"},
		{"TIMEZONE", "Mars/Olympus"},
		{"HISTORY_LIMIT", "abc"},
		{"POLL_INTERVAL", "1x"},
		{"REQUEST_TIMEOUT", "garbage"},
		{"POLL_INTERVAL", "-5s"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			cleanEnv(t)
			t.Setenv(tt.key, tt.value)
			if _, err := Load(zerolog.Nop(), "missing.env"); err == nil {
				t.Errorf("%s=%s: expected an error", tt.key, tt.value)
			}
		})
	}
}

func TestAPIKeyFileFallback(t *testing.T) {
	home := cleanEnv(t)
	dir := filepath.Join(home, Dir)
	os.MkdirAll(dir, 0700)
	os.WriteFile(filepath.Join(dir, "faceit_api_key"), []byte("  from-file\n"), 0600)

	cfg := load(t)
	if cfg.FaceitAPIKey != "from-file" {
		t.Errorf("api key = %q", cfg.FaceitAPIKey)
	}
	if err := cfg.RequireFaceit(); err != nil {
		t.Errorf("RequireFaceit: %v", err)
	}

	t.Setenv("FACEIT_API_KEY", "from-env")
	if cfg := load(t); cfg.FaceitAPIKey != "from-env" {
		t.Errorf("env should win over file, got %q", cfg.FaceitAPIKey)
	}
}

func TestEnvFile(t *testing.T) {
	cleanEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	os.WriteFile(path, []byte("TELEGRAM_TOKEN=abc\nCHAT_ID=-100\n"), 0600)

	cfg, err := Load(zerolog.Nop(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TelegramToken != "abc" || cfg.ChatID != "-100" {
		t.Errorf("got token=%q chat=%q", cfg.TelegramToken, cfg.ChatID)
	}
	if err := cfg.RequireTelegram(); err != nil {
		t.Errorf("RequireTelegram: %v", err)
	}
}

func TestRequireChecks(t *testing.T) {
	cfg := &Config{}
	if err := cfg.RequireFaceit(); err == nil {
		t.Error("RequireFaceit: expected error")
	}
	err := cfg.RequireTelegram()
	if err == nil || !strings.Contains(err.Error(), "TELEGRAM_TOKEN") || !strings.Contains(err.Error(), "CHAT_ID") {
		t.Errorf("RequireTelegram: got %v", err)
	}

	cfg = &Config{TelegramToken: "t", ChatID: "general"}
	if err := cfg.RequireTelegram(); err == nil {
		t.Error("non-numeric chat id should be rejected")
	}
}
