// fingerprint.go generates stable grouping keys for error events.

package processors

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/strongdm/sentryware/pkg/sentryware"
)

// maxFingerprintFrames is the number of innermost frames folded into a fingerprint.
const maxFingerprintFrames = 3

// Fingerprint sets a grouping fingerprint on error events that carry none.
// Transactions and message-only events keep the server-side default grouping.
func Fingerprint() sentryware.Processor {
	return func(event *sentry.Event, hint *sentry.EventHint, req sentryware.Request) *sentry.Event {
		if len(event.Exception) == 0 || len(event.Fingerprint) > 0 {
			return nil
		}
		event.Fingerprint = []string{FingerprintOf(event)}
		return event
	}
}

// FingerprintOf hashes the stable parts of an error event:
//   - exception type, transaction and request method
//   - function names of the innermost frames
//
// It ignores variable data like event IDs, messages, line numbers and addresses.
func FingerprintOf(event *sentry.Event) string {
	var parts []string

	var exc sentry.Exception
	if n := len(event.Exception); n > 0 {
		exc = event.Exception[n-1]
	}
	parts = append(parts, exc.Type, event.Transaction)

	if event.Request != nil {
		parts = append(parts, event.Request.Method)
	} else {
		parts = append(parts, "")
	}

	parts = append(parts, innermostFunctions(exc.Stacktrace)...)

	hash := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(hash[:16])
}

// innermostFunctions returns up to maxFingerprintFrames module-qualified
// function names, innermost first. Sentry orders frames oldest first.
func innermostFunctions(st *sentry.Stacktrace) []string {
	if st == nil {
		return nil
	}

	var names []string
	for i := len(st.Frames) - 1; i >= 0 && len(names) < maxFingerprintFrames; i-- {
		f := st.Frames[i]
		if f.Function == "" {
			continue
		}
		name := f.Function
		if f.Module != "" {
			name = f.Module + "." + f.Function
		}
		names = append(names, name)
	}
	return names
}
