// inapp.go marks frames under excluded module prefixes as not in-app.

package sentryware

import (
	"strings"

	"github.com/getsentry/sentry-go"
)

func excludeFrames(prefixes []string) sentry.EventProcessor {
	prefixes = append([]string(nil), prefixes...)
	return func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
		for i := range event.Exception {
			markNotInApp(event.Exception[i].Stacktrace, prefixes)
		}
		for i := range event.Threads {
			markNotInApp(event.Threads[i].Stacktrace, prefixes)
		}
		return event
	}
}

func markNotInApp(st *sentry.Stacktrace, prefixes []string) {
	if st == nil {
		return
	}
	for i := range st.Frames {
		if hasAnyPrefix(st.Frames[i].Module, prefixes) {
			st.Frames[i].InApp = false
		}
	}
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
