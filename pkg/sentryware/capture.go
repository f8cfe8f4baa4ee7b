// capture.go provides the manual capture API and scope accessors.

package sentryware

import (
	"context"
	"fmt"

	"github.com/getsentry/sentry-go"
)

// CaptureException reports err through the request hub on ctx, or the base
// hub outside of a request. It is a no-op returning nil without a DSN.
func (p *Plugin) CaptureException(ctx context.Context, err error) *sentry.EventID {
	if !p.Enabled() || err == nil {
		return nil
	}
	return p.hubFor(ctx).CaptureException(err)
}

// CaptureMessage reports msg like CaptureException.
func (p *Plugin) CaptureMessage(ctx context.Context, msg string) *sentry.EventID {
	if !p.Enabled() {
		return nil
	}
	return p.hubFor(ctx).CaptureMessage(msg)
}

// Recover captures a panic and returns the recovered value. Unlike the
// middleware, Recover does NOT re-panic after reporting.
//
// Use in defer:
//
//	go func() {
//	    defer plugin.Recover(ctx)
//	    // code that might panic
//	}()
func (p *Plugin) Recover(ctx context.Context) any {
	r := recover()
	if r == nil {
		return nil
	}

	if p.Enabled() && !p.ignore.Contains(r) {
		p.hubFor(ctx).RecoverWithContext(ctx, r)
	}
	return r
}

// Scope returns the scope of the request running on ctx.
// It returns ErrScopeUnavailable outside of a wrapped request.
func (p *Plugin) Scope(ctx context.Context) (*sentry.Scope, error) {
	hub, ok := HubFromContext(ctx)
	if !ok {
		return nil, ErrScopeUnavailable
	}
	return hub.Scope(), nil
}

// ConfigureScope runs fn against the scope of the request running on ctx.
func (p *Plugin) ConfigureScope(ctx context.Context, fn func(scope *sentry.Scope)) error {
	hub, ok := HubFromContext(ctx)
	if !ok {
		return ErrScopeUnavailable
	}
	hub.ConfigureScope(fn)
	return nil
}

func (p *Plugin) hubFor(ctx context.Context) *sentry.Hub {
	if hub, ok := HubFromContext(ctx); ok {
		return hub
	}
	return p.hub
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
