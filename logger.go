package swmesh

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with swmesh-specific helpers. This provides
// structured logging with consistent field names across the loader.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{Logger: slog.New(handler)}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{Logger: slog.New(handler)}
}

// LogLoad logs the outcome of one file load.
func (l *Logger) LogLoad(ctx context.Context, name string, size int, err error) {
	if err != nil {
		l.WarnContext(ctx, "load failed",
			"name", name,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "load completed",
			"name", name,
			"bytes", size,
		)
	}
}

// LogBatch logs the outcome of a bulk load.
func (l *Logger) LogBatch(ctx context.Context, total, failed int) {
	if failed > 0 {
		l.WarnContext(ctx, "batch load completed with failures",
			"total", total,
			"failed", failed,
			"success", total-failed,
		)
	} else {
		l.InfoContext(ctx, "batch load completed",
			"count", total,
		)
	}
}
