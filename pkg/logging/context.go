package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// contextKey keys context values stored by this package.
type contextKey int

const loggerKey contextKey = iota

// WithLogger stores logger in the context.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger stored in the context, or the default
// logger when none is present.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}
	if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && logger != nil {
		return logger
	}
	return Default()
}

// Ctx is shorthand for FromContext.
func Ctx(ctx context.Context) *zerolog.Logger {
	return FromContext(ctx)
}

// withStr derives the context's logger with an extra string field and
// stores the child back in the context.
func withStr(ctx context.Context, key, value string) context.Context {
	child := FromContext(ctx).With().Str(key, value).Logger()
	return WithLogger(ctx, &child)
}

// WithRequestID annotates the context's logger with a request id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return withStr(ctx, "request_id", requestID)
}

// WithFeed annotates the context's logger with a feed name.
func WithFeed(ctx context.Context, feed string) context.Context {
	return withStr(ctx, "feed", feed)
}

// WithClient annotates the context's logger with a client id.
func WithClient(ctx context.Context, clientID string) context.Context {
	return withStr(ctx, "client_id", clientID)
}

// WithComponent annotates the context's logger with a component name.
func WithComponent(ctx context.Context, component string) context.Context {
	return withStr(ctx, "component", component)
}
