package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
)

type Config struct {
	LogLevel string
	LogFile  string

	TelegramToken string
	TelegramAPI   string
	TelegramPoll  int

	SSHHost           string
	SSHPort           int
	SSHUser           string
	SSHPassword       string
	CommandTimeoutSec int

	DBPath string

	PageMaxChars      int
	PageMaxLines      int
	PagerBufferTTLSec int
	PagerSweepSpec    string
}

func FromEnv() Config {
	return Config{
		LogLevel: stringOrDefault("OPSGATE_LOG_LEVEL", "info"),
		LogFile:  strings.TrimSpace(os.Getenv("OPSGATE_LOG_FILE")),

		TelegramToken: os.Getenv("OPSGATE_TELEGRAM_TOKEN"),
		TelegramAPI:   stringOrDefault("OPSGATE_TELEGRAM_API_BASE", "https://api.telegram.org"),
		TelegramPoll:  intOrDefault("OPSGATE_TELEGRAM_POLL_SECONDS", 25),

		SSHHost:           strings.TrimSpace(os.Getenv("OPSGATE_SSH_HOST")),
		SSHPort:           intOrDefault("OPSGATE_SSH_PORT", 22),
		SSHUser:           strings.TrimSpace(os.Getenv("OPSGATE_SSH_USER")),
		SSHPassword:       os.Getenv("OPSGATE_SSH_PASSWORD"),
		CommandTimeoutSec: intOrDefault("OPSGATE_COMMAND_TIMEOUT_SECONDS", 60),

		DBPath: stringOrDefault("OPSGATE_DB_PATH", "/data/opsgate/records.sqlite"),

		PageMaxChars:      intOrDefault("OPSGATE_PAGE_MAX_CHARS", 3096),
		PageMaxLines:      intOrDefault("OPSGATE_PAGE_MAX_LINES", 500),
		PagerBufferTTLSec: intOrDefault("OPSGATE_PAGER_BUFFER_TTL_SECONDS", 1800),
		PagerSweepSpec:    stringOrDefault("OPSGATE_PAGER_SWEEP_SPEC", "@every 10m"),
	}
}

// Validate reports the first missing or malformed required setting.
// The process must not start when it returns an error.
func (c Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if strings.TrimSpace(c.TelegramToken) == "" {
		return fmt.Errorf("OPSGATE_TELEGRAM_TOKEN is required")
	}
	if c.SSHHost == "" {
		return fmt.Errorf("OPSGATE_SSH_HOST is required")
	}
	if c.SSHUser == "" {
		return fmt.Errorf("OPSGATE_SSH_USER is required")
	}
	if c.SSHPassword == "" {
		return fmt.Errorf("OPSGATE_SSH_PASSWORD is required")
	}
	if c.SSHPort < 1 || c.SSHPort > 65535 {
		return fmt.Errorf("OPSGATE_SSH_PORT out of range: %d", c.SSHPort)
	}
	if _, err := cron.ParseStandard(c.PagerSweepSpec); err != nil {
		return fmt.Errorf("OPSGATE_PAGER_SWEEP_SPEC invalid: %w", err)
	}
	return nil
}

// ParseLevel maps the configured log level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

func stringOrDefault(name, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func intOrDefault(name string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		return fallback
	}
	return parsed
}
