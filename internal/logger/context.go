package logger

import (
	"context"

	"github.com/rs/zerolog"
)

type requestIDKey struct{}

// WithRequestID records the correlation id for loggers derived through Ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the correlation id stored by WithRequestID.
func RequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok && id != ""
}

// Ctx tags base with the request id carried by ctx, if any.
func Ctx(ctx context.Context, base zerolog.Logger) *zerolog.Logger {
	if id, ok := RequestID(ctx); ok {
		base = base.With().Str("request_id", id).Logger()
	}
	return &base
}
