// lifecycle.go implements the per-request reporting scope shared by all adapters.

package sentryware

import (
	"context"
	"net/http"
	"sync"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
)

const (
	sentryTraceHeader = "sentry-trace"
	baggageHeader     = "baggage"

	// OpHTTPServer is the operation name of request transactions.
	OpHTTPServer = "http.server"
)

// RequestScope is the reporting state of one request: an isolated hub whose
// scope enriches events with the request, and the request transaction.
// Adapters call Begin, hand Context to the next handler, report the outcome,
// and call Finish exactly once.
type RequestScope struct {
	plugin    *Plugin
	req       Request
	hub       *sentry.Hub
	tx        *sentry.Span
	ctx       context.Context
	requestID string

	mu   sync.Mutex
	name string
}

// Begin opens a reporting scope for req. framework is reported as a tag.
func (p *Plugin) Begin(req Request, framework string) *RequestScope {
	rs := &RequestScope{
		plugin:    p,
		req:       req,
		hub:       p.hub.Clone(),
		name:      req.Path(),
		requestID: req.Header(p.requestIDHeader),
	}
	if rs.requestID == "" {
		rs.requestID = uuid.NewString()
	}

	rs.hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.ClearBreadcrumbs()
		scope.SetTags(p.cfg.Tags)
		scope.SetTag("framework", framework)
		scope.SetTag("transport", "http")
		scope.SetTag("request_id", rs.requestID)
		scope.AddEventProcessor(rs.processEvent)
	})

	ctx := sentry.SetHubOnContext(req.Context(), rs.hub)
	ctx = WithRequestID(ctx, rs.requestID)

	rs.tx = sentry.StartTransaction(ctx, rs.name,
		sentry.ContinueFromHeaders(req.Header(sentryTraceHeader), req.Header(baggageHeader)),
		sentry.WithOpName(OpHTTPServer),
		sentry.WithTransactionSource(sentry.SourceURL),
	)
	rs.tx.SetData("http.request.method", req.Method())
	rs.ctx = rs.tx.Context()

	return rs
}

func (rs *RequestScope) processEvent(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
	if event.Transaction == "" {
		event.Transaction = rs.Name()
	}
	return rs.plugin.ProcessEvent(event, hint, rs.req)
}

// Context returns the request context carrying the hub, the transaction and the request ID.
func (rs *RequestScope) Context() context.Context {
	return rs.ctx
}

// Hub returns the request hub.
func (rs *RequestScope) Hub() *sentry.Hub {
	return rs.hub
}

// Transaction returns the request transaction.
func (rs *RequestScope) Transaction() *sentry.Span {
	return rs.tx
}

// RequestID returns the request ID reported in the request_id tag.
func (rs *RequestScope) RequestID() string {
	return rs.requestID
}

// Name returns the current transaction name.
func (rs *RequestScope) Name() string {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.name
}

// SetStatus records the response status on the transaction.
func (rs *RequestScope) SetStatus(code int) {
	rs.tx.Status = sentry.HTTPtoSpanStatus(code)
	rs.tx.SetData("http.response.status_code", code)
}

// SetEndpoint renames the transaction after the matched route when the
// transaction style is "endpoint". Empty routes are ignored.
func (rs *RequestScope) SetEndpoint(route string) {
	if route == "" || rs.plugin.cfg.TransactionStyle != TransactionStyleEndpoint {
		return
	}
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.name = route
	rs.tx.Name = route
	rs.tx.Source = sentry.SourceRoute
}

// CaptureError reports err unless it is nil or its type is ignored.
func (rs *RequestScope) CaptureError(err error) *sentry.EventID {
	if err == nil {
		return nil
	}
	if rs.plugin.ignore.Contains(err) {
		rs.plugin.logger.V(1).Info("ignoring error", "type", typeName(err), "requestID", rs.requestID)
		return nil
	}
	return rs.hub.CaptureException(err)
}

// CapturePanic reports a recovered panic value unless its type is ignored.
func (rs *RequestScope) CapturePanic(v any) *sentry.EventID {
	if v == nil {
		return nil
	}
	if rs.plugin.ignore.Contains(v) {
		rs.plugin.logger.V(1).Info("ignoring panic", "type", typeName(v), "requestID", rs.requestID)
		return nil
	}
	return rs.hub.RecoverWithContext(rs.ctx, v)
}

// Finish ends the transaction.
func (rs *RequestScope) Finish() {
	rs.tx.Finish()
}

// StatusFromError maps a handler error to a response status: errors exposing
// StatusCode() keep their code, everything else is a 500.
func StatusFromError(err error) int {
	if sc, ok := err.(interface{ StatusCode() int }); ok {
		if code := sc.StatusCode(); code > 0 {
			return code
		}
	}
	return http.StatusInternalServerError
}
