// Package raptorlog is the routing engine's structured-logging wrapper:
// a thin log/slog layer giving callers a request-scoped *slog.Logger
// threaded through context, JSON-encoded, optionally rotated to disk.
package raptorlog

import (
	"context"
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

type contextKey struct{}

// NewStructuredLogger builds a JSON slog.Logger at the given level,
// writing to w.
func NewStructuredLogger(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

// NewRotatingFileLogger wires a lumberjack.Logger as the handler's
// io.Writer so long-running benchmark/search processes can log to a
// capped, rotated file instead of growing one unbounded log on disk.
func NewRotatingFileLogger(path string, level slog.Level) *slog.Logger {
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    50, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
	return NewStructuredLogger(rotator, level)
}

// NewMultiLogger logs to stdout and a rotated file simultaneously, for a
// CLI invocation that wants both a live console trace and a durable log.
func NewMultiLogger(path string, level slog.Level) *slog.Logger {
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	}
	return NewStructuredLogger(io.MultiWriter(os.Stdout, rotator), level)
}

// WithContext attaches logger to ctx, retrievable by FromContext.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the logger attached by WithContext, or slog.Default
// if none was attached.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// LogOperation records a single structured event for a named operation.
func LogOperation(logger *slog.Logger, operation string, args ...any) {
	logger.Info(operation, args...)
}

// LogError records a structured error event. A nil err logs nothing, so
// call sites can pass through whatever error a lower layer returned
// without an extra nil check.
func LogError(logger *slog.Logger, msg string, err error, args ...any) {
	if err == nil {
		return
	}
	logger.Error(msg, append([]any{"error", err}, args...)...)
}
