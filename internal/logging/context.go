package logging

import (
	"context"

	"github.com/charmbracelet/log"
)

type loggerKey struct{}

// Attach returns a copy of ctx carrying logger.
func Attach(ctx context.Context, logger *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// From returns the logger carried by ctx, or the package default.
func From(ctx context.Context) *log.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*log.Logger); ok && logger != nil {
		return logger
	}
	return Default()
}

// With returns a copy of ctx whose logger carries keyvals on every entry.
func With(ctx context.Context, keyvals ...any) context.Context {
	return Attach(ctx, From(ctx).With(keyvals...))
}
