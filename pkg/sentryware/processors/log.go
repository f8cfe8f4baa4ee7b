// log.go provides a processor that logs a summary of every outgoing event.

package processors

import (
	"github.com/getsentry/sentry-go"
	"github.com/go-logr/logr"
	"github.com/strongdm/sentryware/pkg/sentryware"
)

// LogOption configures the Log processor.
type LogOption func(*logConfig)

type logConfig struct {
	verbose bool
}

// WithVerbose adds request and stack details to each log line.
func WithVerbose() LogOption {
	return func(c *logConfig) {
		c.verbose = true
	}
}

// Log writes one line per outgoing event to logger and leaves the event unchanged.
// Useful during development to see what would be reported.
func Log(logger logr.Logger, opts ...LogOption) sentryware.Processor {
	cfg := &logConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(event *sentry.Event, hint *sentry.EventHint, req sentryware.Request) *sentry.Event {
		kv := []any{
			"eventID", string(event.EventID),
			"level", string(event.Level),
			"transaction", event.Transaction,
		}

		if n := len(event.Exception); n > 0 {
			exc := event.Exception[n-1]
			kv = append(kv, "type", exc.Type, "message", exc.Value)
			if cfg.verbose && exc.Stacktrace != nil {
				kv = append(kv, "frames", innermostFunctions(exc.Stacktrace))
			}
		} else if event.Message != "" {
			kv = append(kv, "message", event.Message)
		}

		if len(event.Fingerprint) > 0 {
			kv = append(kv, "fingerprint", event.Fingerprint)
		}

		if cfg.verbose && event.Request != nil {
			kv = append(kv, "method", event.Request.Method, "url", event.Request.URL)
		}

		msg := "sentry event"
		if event.Type == "transaction" {
			msg = "sentry transaction"
		}
		logger.Info(msg, kv...)
		return nil
	}
}
