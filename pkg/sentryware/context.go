// context.go provides accessors for request-scoped values carried on context.Context.

package sentryware

import (
	"context"

	"github.com/getsentry/sentry-go"
)

type requestIDKey struct{}

// WithRequestID returns a context with the request ID attached.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext extracts the request ID from context.
// Returns empty string and false if not set or empty.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok && id != ""
}

// HubFromContext returns the request hub installed by the middleware.
func HubFromContext(ctx context.Context) (*sentry.Hub, bool) {
	if ctx == nil {
		return nil, false
	}
	hub := sentry.GetHubFromContext(ctx)
	return hub, hub != nil
}
