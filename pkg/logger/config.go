package logger

import (
	"log/slog"
	"strings"
)

// Config holds logger settings loaded from the environment.
type Config struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	Service     string `env:"SERVICE_NAME" envDefault:"quotakit"`
	Level       string `env:"LOG_LEVEL" envDefault:""`
}

// FromConfig turns Config into options: environment defaults first, then an
// explicit level override when LOG_LEVEL is set. Records logged with a context
// from WithOrganization carry the organization id.
func FromConfig(cfg Config) []Option {
	opts := []Option{
		WithEnvironment(cfg.Environment, cfg.Service),
		WithContextExtractors(OrganizationExtractor()),
	}
	if lvl, ok := parseLevel(cfg.Level); ok {
		opts = append(opts, WithLevel(lvl))
	}
	return opts
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
