// Package logger owns the process-wide slog setup and the context-scoped
// logger used to carry request fields like the trace id.
package logger

import (
	"log/slog"
	"os"
)

var defaultLogger *slog.Logger

// Init configures the process-wide logger: JSON at info level in
// production, text at debug level everywhere else. Every record carries
// the service name.
func Init(env string) {
	var handler slog.Handler

	if env == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	defaultLogger = slog.New(handler).With("service", "taskgraph")
	slog.SetDefault(defaultLogger)
}

// LoggerWrapper returns the configured logger, initializing a development
// one on first use so callers never get nil.
func LoggerWrapper() *slog.Logger {
	if defaultLogger == nil {
		Init("development")
	}
	return defaultLogger
}
