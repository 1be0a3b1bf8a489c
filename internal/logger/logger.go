// Package logger provides structured logging on stderr.
//
// The generated script is the only thing written to stdout, so every
// diagnostic (skipped rules, overwritten rules, progress) goes through
// this package instead.
//
//	logger.Initialize(cfg.Logging, os.Stderr)
//	logger.Warn("ignoring rule", "rule", name, "reason", err)
package logger

import (
	"io"
	"log/slog"
	"os"

	"tb2imapfilter/internal/config"
)

var globalLogger *slog.Logger

// Initialize sets up the global logger. A nil writer means stderr.
func Initialize(cfg config.LoggingConfig, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}

func parseLogLevel(level string) slog.Level {
	switch level {
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

// Get returns the global logger instance
func Get() *slog.Logger {
	if globalLogger == nil {
		return slog.Default()
	}
	return globalLogger
}

func Debug(msg string, args ...any) {
	Get().Debug(msg, args...)
}

func Info(msg string, args ...any) {
	Get().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	Get().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	Get().Error(msg, args...)
}

// Fatal logs at error level and exits with status 1.
func Fatal(msg string, args ...any) {
	Get().Error(msg, args...)
	os.Exit(1)
}
