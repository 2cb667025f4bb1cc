// Package logging builds the process-wide structured logger. Every log line
// carries the service and env attributes so the key-distribution and message
// paths can be filtered apart from collaborator services in aggregated logs.
package logging

import (
	"log/slog"
	"os"
)

type Config struct {
	ServiceName string
	Environment string
	Level       string
}

// NewLogger returns a JSON slog logger writing to stdout. Unknown level
// strings fall back to info rather than failing startup.
func NewLogger(cfg Config) *slog.Logger {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "msgcore"
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	})

	return slog.New(handler).With(
		slog.String("service", cfg.ServiceName),
		slog.String("env", cfg.Environment),
	)
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
