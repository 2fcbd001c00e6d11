package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// SlogLogger is the default backend. It writes logfmt-style text lines.
type SlogLogger struct {
	l *slog.Logger
}

// NewSlogLogger writes to w at level (debug, info, warn or error; anything
// else means info).
func NewSlogLogger(w io.Writer, level string) *SlogLogger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseSlogLevel(level)})
	return &SlogLogger{l: slog.New(h)}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return &SlogLogger{l: slog.New(slog.DiscardHandler)}
}

func parseSlogLevel(level string) slog.Level {
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

func (s *SlogLogger) Debug(ctx context.Context, msg string, args ...any) {
	s.l.DebugContext(ctx, msg, args...)
}

func (s *SlogLogger) Info(ctx context.Context, msg string, args ...any) {
	s.l.InfoContext(ctx, msg, args...)
}

func (s *SlogLogger) Warn(ctx context.Context, msg string, args ...any) {
	s.l.WarnContext(ctx, msg, args...)
}

func (s *SlogLogger) Error(ctx context.Context, msg string, args ...any) {
	s.l.ErrorContext(ctx, msg, args...)
}

func (s *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{l: s.l.With(args...)}
}
