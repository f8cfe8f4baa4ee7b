// attrs.go provides processors that attach tags, user and extra data.

package processors

import (
	"github.com/getsentry/sentry-go"
	"github.com/strongdm/sentryware/pkg/sentryware"
)

// Tags sets static tags. Tags already on the event win.
func Tags(tags map[string]string) sentryware.Processor {
	return func(event *sentry.Event, hint *sentry.EventHint, req sentryware.Request) *sentry.Event {
		if len(tags) == 0 {
			return nil
		}
		if event.Tags == nil {
			event.Tags = make(map[string]string, len(tags))
		}
		for k, v := range tags {
			if _, exists := event.Tags[k]; !exists {
				event.Tags[k] = v
			}
		}
		return event
	}
}

// User attributes events to the user returned by lookup.
// lookup is not called outside of a request.
func User(lookup func(req sentryware.Request) (sentry.User, bool)) sentryware.Processor {
	return func(event *sentry.Event, hint *sentry.EventHint, req sentryware.Request) *sentry.Event {
		if req == nil {
			return nil
		}
		user, ok := lookup(req)
		if !ok {
			return nil
		}
		event.User = user
		return event
	}
}

// Extra stores the value returned by fn under key in the event extras.
// A nil value is not stored.
func Extra(key string, fn func(req sentryware.Request) any) sentryware.Processor {
	return func(event *sentry.Event, hint *sentry.EventHint, req sentryware.Request) *sentry.Event {
		if req == nil {
			return nil
		}
		v := fn(req)
		if v == nil {
			return nil
		}
		if event.Extra == nil {
			event.Extra = make(map[string]interface{})
		}
		event.Extra[key] = v
		return event
	}
}
