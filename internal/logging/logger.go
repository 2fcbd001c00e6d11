// Package logging defines the structured-logging interface used across the
// client. Two backends are provided: log/slog (default) and zerolog.
package logging

import (
	"context"
	"io"
	"strings"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "login succeeded", "user_id", id)
type Logger interface {
	// Debug logs request-level tracing.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

// Backend names accepted by New.
const (
	BackendSlog    = "slog"
	BackendZerolog = "zerolog"
)

// New builds a Logger writing to w. backend is BackendSlog or BackendZerolog
// (anything else falls back to slog); level is debug, info, warn or error.
func New(backend, level string, w io.Writer) Logger {
	if strings.EqualFold(backend, BackendZerolog) {
		return NewZerologLogger(w, level)
	}
	return NewSlogLogger(w, level)
}
