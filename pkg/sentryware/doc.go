// Package sentryware connects HTTP request handling to Sentry.
//
// It initializes a Sentry client from a DSN, wraps every request in an
// isolated reporting scope with a transaction, reports unhandled failures
// with the request attached, and exposes a manual capture API plus an
// ordered processor pipeline for enriching outgoing events.
//
// # Core Components
//
//   - Config: DSN, SDK options, ignore rules and transaction naming, loadable from YAML
//   - Plugin: owns the client and base hub; registers processors; manual capture
//   - RequestScope: per-request hub clone, event enrichment and transaction
//   - Request: framework-neutral request view implemented by each adapter
//   - Processor: callback that enriches, replaces or drops an outgoing event
//
// # Quick Start
//
// For net/http:
//
//	plugin, err := sentryware.New(cfg, sentryware.WithIgnoreErrors(&NotFoundError{}))
//	plugin.Register(func(event *sentry.Event, hint *sentry.EventHint, req sentryware.Request) *sentry.Event {
//	    event.Tags["tenant"] = req.Header("X-Tenant")
//	    return event
//	})
//	http.ListenAndServe(":8080", plugin.Handle(mux))
//
// For gin and fiber, see the ginsentry and fibersentry adapters.
//
// # Design Principles
//
//   - Failures always propagate: panics are re-panicked and errors returned unchanged
//   - Ignore rules match the exact runtime type of the failure
//   - No DSN means no client: capture calls are no-ops and nothing leaves the process
//   - Transport, batching and retries belong to the Sentry SDK
package sentryware
