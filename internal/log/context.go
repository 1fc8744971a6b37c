package log

import (
	"context"
	"log/slog"
)

type (
	logCtxKey struct{}
)

func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, logCtxKey{}, logger)
}

// FromContext returns the logger stored on ctx, or a logger that discards everything.
func FromContext(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(logCtxKey{}).(*slog.Logger)
	if ok && logger != nil {
		return logger
	}

	return New(WithWriter(nil))
}
