package utils

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Logger provides leveled logging throughout the application. It keeps a
// printf-style surface so call sites read like "[component] message" lines,
// while records go through slog so handlers can be swapped.
type Logger struct {
	sl *slog.Logger
}

// NewLogger creates a Logger writing colorized records to stderr at the
// level named by LOG_LEVEL (debug, info, warn, error; default info).
func NewLogger() *Logger {
	return NewLoggerTo(os.Stderr, ParseLevel(os.Getenv("LOG_LEVEL")))
}

// NewLoggerTo creates a Logger writing to w at the given level.
func NewLoggerTo(w io.Writer, level slog.Level) *Logger {
	handler := tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.DateTime,
		NoColor:    w != os.Stderr && w != os.Stdout,
	})
	return &Logger{sl: slog.New(handler)}
}

// NewDiscardLogger returns a Logger that drops everything. Used by tests.
func NewDiscardLogger() *Logger {
	return &Logger{sl: slog.New(tint.NewHandler(io.Discard, &tint.Options{Level: slog.LevelError + 4}))}
}

// ParseLevel maps a level name onto a slog.Level, defaulting to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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

// Slog exposes the underlying structured logger.
func (l *Logger) Slog() *slog.Logger {
	return l.sl
}

// With returns a Logger that attaches the given key/value pairs to every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{sl: l.sl.With(args...)}
}

func (l *Logger) log(level slog.Level, format string, args ...any) {
	if !l.sl.Enabled(context.Background(), level) {
		return
	}
	l.sl.Log(context.Background(), level, fmt.Sprintf(format, args...))
}

func (l *Logger) Info(format string, args ...any) {
	l.log(slog.LevelInfo, format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.log(slog.LevelWarn, format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.log(slog.LevelError, format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.log(slog.LevelDebug, format, args...)
}
