package sentryware

import (
	"sync"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/require"
)

const testDSN = "https://public@example.com/1"

// recorder captures outgoing events at BeforeSend so nothing reaches the network.
type recorder struct {
	mu           sync.Mutex
	events       []*sentry.Event
	transactions []*sentry.Event
}

func (r *recorder) beforeSend(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recorder) beforeSendTransaction(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transactions = append(r.transactions, event)
	return nil
}

func (r *recorder) getEvents() []*sentry.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*sentry.Event(nil), r.events...)
}

func (r *recorder) getTransactions() []*sentry.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*sentry.Event(nil), r.transactions...)
}

func (r *recorder) option() Option {
	return WithClientOptions(func(o *sentry.ClientOptions) {
		o.BeforeSend = r.beforeSend
		o.BeforeSendTransaction = r.beforeSendTransaction
	})
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.DSN = testDSN
	cfg.SDKOptions.TracesSampleRate = 1.0
	return cfg
}

func newTestPlugin(t *testing.T, cfg Config, opts ...Option) (*Plugin, *recorder) {
	t.Helper()
	rec := &recorder{}
	p, err := New(cfg, append([]Option{rec.option()}, opts...)...)
	require.NoError(t, err)
	return p, rec
}

// notFoundError is a typed error used to exercise the ignore list.
type notFoundError struct{ what string }

func (e *notFoundError) Error() string   { return e.what + " not found" }
func (e *notFoundError) StatusCode() int { return 404 }
