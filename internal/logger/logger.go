package logger

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/clean-dependency-project/devserve/internal/console"
)

// New sets up the slog logger with level and format from arguments.
// logLevel: "info", "debug", "warn", "error"
// logFormat: "console", "json" or "text"
// The console format renders through p; the others write to w.
func New(logLevel, logFormat string, w io.Writer, p *console.Printer) (*slog.Logger, error) {
	if strings.TrimSpace(logLevel) == "" || strings.TrimSpace(logFormat) == "" {
		return nil, errors.New("logLevel and logFormat must not be empty")
	}
	level, err := ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}

	var handler slog.Handler
	switch strings.ToLower(logFormat) {
	case "console":
		if p == nil {
			p = console.New(w, console.ColorNever)
		}
		handler = NewConsoleHandler(p, level)
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	case "text":
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	default:
		return nil, errors.New("invalid logFormat: " + logFormat)
	}

	return slog.New(handler), nil
}

// ParseLevel parses "debug", "info", "warn" or "error".
func ParseLevel(logLevel string) (slog.Level, error) {
	switch strings.ToLower(logLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	case "info":
		return slog.LevelInfo, nil
	default:
		return slog.LevelInfo, errors.New("invalid logLevel: " + logLevel)
	}
}

// ParseLevelOrDefault parses a log level string or returns slog.LevelInfo.
func ParseLevelOrDefault(logLevel string) slog.Level {
	level, err := ParseLevel(logLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}
