package config

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewLogger returns a slog.Logger for the configured environment writing to stdout.
// Production uses the JSON handler; otherwise the text handler.
// LOG_LEVEL may be: debug, info, warn, error (default: info).
func NewLogger(environment string) *slog.Logger {
	return newLogger(os.Stdout, environment, os.Getenv("LOG_LEVEL"))
}

func newLogger(w io.Writer, environment, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	var handler slog.Handler
	if environment == "production" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With("service", "seminar-rsvp")
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
