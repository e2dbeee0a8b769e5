package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Roster backends.
const (
	BackendYAML   = "yaml"
	BackendSQLite = "sqlite"
)

// Dir is the per-user state directory under $HOME.
const Dir = ".faceitwatch"

// Config holds every setting read from the environment.
type Config struct {
	FaceitAPIKey   string
	TelegramToken  string
	ChatID         string
	AllowedUserIDs []int64
	RosterBackend  string
	RosterPath     string
	PollInterval   time.Duration
	RequestTimeout time.Duration
	HistoryLimit   int
	StatusPageURL  string
	MetricsAddr    string
	LogLevel       string
	Location       *time.Location
}

// Load reads envFile (a missing file is fine) and then the environment.
// Only malformed values are errors here; callers check the keys they need
// with RequireFaceit and RequireTelegram.
func Load(logger zerolog.Logger, envFile string) (*Config, error) {
	if err := godotenv.Load(envFile); err != nil {
		logger.Debug().Str("file", envFile).Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		FaceitAPIKey:  getEnv("FACEIT_API_KEY", readKeyFile("faceit_api_key")),
		TelegramToken: getEnv("TELEGRAM_TOKEN", ""),
		ChatID:        getEnv("CHAT_ID", ""),
		RosterBackend: strings.ToLower(getEnv("ROSTER_BACKEND", BackendYAML)),
		StatusPageURL: getEnv("STATUS_PAGE_URL", "https://www.faceitstatus.com"),
		MetricsAddr:   getEnv("METRICS_ADDR", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		Location:      time.Local,
	}

	var err error
	if cfg.PollInterval, err = getEnvDuration("POLL_INTERVAL", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = getEnvDuration("REQUEST_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.HistoryLimit, err = getEnvInt("HISTORY_LIMIT", 1); err != nil {
		return nil, err
	}

	switch cfg.RosterBackend {
	case BackendYAML:
		cfg.RosterPath = getEnv("ROSTER_PATH", filepath.Join(userHome(), Dir, "roster.yml"))
	case BackendSQLite:
		cfg.RosterPath = getEnv("ROSTER_PATH", filepath.Join(userHome(), Dir, "roster.db"))
	default:
		return nil, fmt.Errorf("ROSTER_BACKEND must be %q or %q, got %q", BackendYAML, BackendSQLite, cfg.RosterBackend)
	}

	ids, err := parseUserIDs(getEnv("ALLOWED_USER_IDS", ""))
	if err != nil {
		return nil, err
	}
	cfg.AllowedUserIDs = ids

	if tz := getEnv("TIMEZONE", ""); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("TIMEZONE: %w", err)
		}
		cfg.Location = loc
	}

	if cfg.HistoryLimit < 1 {
		cfg.HistoryLimit = 1
	}

	logger.Debug().
		Str("roster_backend", cfg.RosterBackend).
		Str("roster_path", cfg.RosterPath).
		Dur("poll_interval", cfg.PollInterval).
		Dur("request_timeout", cfg.RequestTimeout).
		Int("history_limit", cfg.HistoryLimit).
		Int("allowed_users", len(cfg.AllowedUserIDs)).
		Str("metrics_addr", cfg.MetricsAddr).
		Str("timezone", cfg.Location.String()).
		Msg("configuration loaded")

	return cfg, nil
}

// RequireFaceit checks that a FACEIT Data API key is available.
func (c *Config) RequireFaceit() error {
	if c.FaceitAPIKey == "" {
		return fmt.Errorf("FACEIT API key not found: set FACEIT_API_KEY or create ~/%s/faceit_api_key", Dir)
	}
	return nil
}

// RequireTelegram checks the keys needed to deliver to a chat.
func (c *Config) RequireTelegram() error {
	var errs []error
	if c.TelegramToken == "" {
		errs = append(errs, errors.New("missing required environment variable: TELEGRAM_TOKEN"))
	}
	if c.ChatID == "" {
		errs = append(errs, errors.New("missing required environment variable: CHAT_ID"))
	} else if _, err := strconv.ParseInt(c.ChatID, 10, 64); err != nil {
		errs = append(errs, fmt.Errorf("CHAT_ID must be a numeric chat id, got %q", c.ChatID))
	}
	return errors.Join(errs...)
}

func parseUserIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ALLOWED_USER_IDS: invalid user id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// readKeyFile returns the trimmed contents of ~/.faceitwatch/<name>, or "".
func readKeyFile(name string) string {
	data, err := os.ReadFile(filepath.Join(userHome(), Dir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func userHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, value)
	}
	return i, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s: invalid duration %q", key, value)
	}
	return d, nil
}
