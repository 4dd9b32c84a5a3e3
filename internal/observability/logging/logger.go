package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// New opens (creating if necessary) app.log under dir and returns a JSON
// logger writing to it, gated by the LOG_LEVEL environment variable
// (debug|info|warn|error, default info). The returned io.Closer must be
// closed on shutdown; closing it does not affect slog.Default().
//
// The terminal's alternate screen buffer occupies stdout/stderr while the
// event loop runs, so logging there would corrupt the display.
func New(dir string) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("New: MkdirAll: %w", err)
	}
	path := filepath.Join(dir, "app.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("New: OpenFile: %w", err)
	}

	level := levelFromEnv()
	handler := slog.NewJSONHandler(f, &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelWarn,
	})
	return slog.New(handler), f, nil
}

// NewWriter returns a JSON logger writing to an arbitrary io.Writer, useful
// for tests that want to inspect log output without touching the filesystem.
func NewWriter(w io.Writer) *slog.Logger {
	level := levelFromEnv()
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelWarn,
	})
	return slog.New(handler)
}

func levelFromEnv() slog.Level {
	switch os.Getenv("LOG_LEVEL") {
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

// WithFields returns a new logger with additional structured fields attached.
func WithFields(logger *slog.Logger, fields map[string]interface{}) *slog.Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return logger.With(args...)
}

type contextKey string

const loggerContextKey contextKey = "logger"

// WithLogger attaches a logger to the context for retrieval by FromContext.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

// FromContext retrieves the logger attached by WithLogger, or slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
