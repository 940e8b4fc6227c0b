// Package logging provides the structured logger shared by the livewire packages.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger with livewire-specific helpers.
type Logger struct {
	*slog.Logger
}

// New creates a Logger with the given handler.
// If handler is nil, a text handler writing to stderr at info level is used.
func New(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewText creates a Logger that writes human-readable lines to stderr.
func NewText(level slog.Level) *Logger {
	return New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewJSON creates a Logger that writes JSON lines to stderr.
func NewJSON(level slog.Level) *Logger {
	return New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Noop creates a Logger that discards everything.
func Noop() *Logger {
	return New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000),
	}))
}

// FromConfig builds a logger from the textual level and format stored in
// the configuration file ("debug", "info", "warn", "error"; "text" or "json").
func FromConfig(level, format string) *Logger {
	lvl := ParseLevel(level)
	if strings.EqualFold(format, "json") {
		return NewJSON(lvl)
	}
	return NewText(lvl)
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithImage adds image dimension attributes.
func (l *Logger) WithImage(width, height int) *Logger {
	return &Logger{Logger: l.Logger.With("width", width, "height", height)}
}

// WithJob tags records with a job name.
func (l *Logger) WithJob(name string) *Logger {
	return &Logger{Logger: l.Logger.With("job", name)}
}
