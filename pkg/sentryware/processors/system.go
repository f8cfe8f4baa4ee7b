// system.go captures process state at event time.

package processors

import (
	"os"
	"runtime"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/strongdm/sentryware/pkg/sentryware"
)

// RuntimeStateContext is the event context key written by SystemState.
const RuntimeStateContext = "runtime_state"

// SystemState adds memory, goroutine, uptime and hostname data to every
// event. startTime is used to calculate process uptime.
func SystemState(startTime time.Time) sentryware.Processor {
	hostname, _ := os.Hostname() // empty hostname is acceptable

	return func(event *sentry.Event, hint *sentry.EventHint, req sentryware.Request) *sentry.Event {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptimeMs := time.Since(startTime).Milliseconds()
		if uptimeMs < 0 {
			uptimeMs = 0
		}

		if event.Contexts == nil {
			event.Contexts = make(map[string]sentry.Context)
		}
		event.Contexts[RuntimeStateContext] = sentry.Context{
			"memory_bytes":    memStats.Alloc,
			"goroutine_count": runtime.NumGoroutine(),
			"uptime_ms":       uptimeMs,
			"host_name":       hostname,
		}
		return event
	}
}
