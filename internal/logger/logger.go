// Package logger sets up structured logging for the application
package logger

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls handler format, level and optional file output
type Config struct {
	Level  string
	Format string
	// File, when set, receives a rotated copy of every record
	File string
}

func levelFromString(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, errors.New("invalid log level: " + level)
	}
}

// New creates a logger writing to console and, if configured, a rotating file.
// The returned closer releases the file and is safe to call when no file is used.
func New(cfg Config, console io.Writer) (*slog.Logger, io.Closer, error) {
	lvl, err := levelFromString(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	var out io.Writer = console
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    50, // MB
			MaxBackups: 5,
			MaxAge:     14, // days
			Compress:   true,
		}
		out = io.MultiWriter(console, rotating)
		closer = rotating
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler), closer, nil
}

// Discard returns a logger that drops everything, for tests and library defaults
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
