package logging

import (
	"context"
	"log/slog"
)

// slogLogger adapts a slog handler to the Logger interface. Construct one
// per binary and hand children out via With.
type slogLogger struct {
	l *slog.Logger
}

// NewSlog wraps the given slog handler.
func NewSlog(h slog.Handler) Logger {
	return &slogLogger{l: slog.New(h)}
}

func (s *slogLogger) Info(ctx context.Context, msg string, args ...any) {
	s.l.InfoContext(ctx, msg, args...)
}

func (s *slogLogger) Warn(ctx context.Context, msg string, args ...any) {
	s.l.WarnContext(ctx, msg, args...)
}

func (s *slogLogger) Error(ctx context.Context, msg string, args ...any) {
	s.l.ErrorContext(ctx, msg, args...)
}

func (s *slogLogger) With(args ...any) Logger {
	return &slogLogger{l: s.l.With(args...)}
}
