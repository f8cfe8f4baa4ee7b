// chain.go composes processors into one.

package processors

import (
	"github.com/getsentry/sentry-go"
	"github.com/strongdm/sentryware/pkg/sentryware"
)

// Chain runs processors in order with the same rules as the plugin pipeline:
// nil keeps the previous event and sentryware.Drop stops the chain.
func Chain(processors ...sentryware.Processor) sentryware.Processor {
	ps := make([]sentryware.Processor, 0, len(processors))
	for _, fn := range processors {
		if fn != nil {
			ps = append(ps, fn)
		}
	}
	return func(event *sentry.Event, hint *sentry.EventHint, req sentryware.Request) *sentry.Event {
		return sentryware.RunProcessors(ps, event, hint, req)
	}
}

// DropPaths vetoes events raised while serving one of paths.
func DropPaths(paths ...string) sentryware.Processor {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return func(event *sentry.Event, hint *sentry.EventHint, req sentryware.Request) *sentry.Event {
		if req == nil {
			return nil
		}
		if _, ok := set[req.Path()]; ok {
			return sentryware.Drop
		}
		return nil
	}
}
