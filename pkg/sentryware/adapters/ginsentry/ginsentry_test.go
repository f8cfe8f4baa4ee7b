package ginsentry

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/strongdm/sentryware/pkg/sentryware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type recorder struct {
	mu           sync.Mutex
	events       []*sentry.Event
	transactions []*sentry.Event
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

func newTestPlugin(t *testing.T, style sentryware.TransactionStyle, opts ...sentryware.Option) (*sentryware.Plugin, *recorder) {
	t.Helper()
	rec := &recorder{}

	cfg := sentryware.DefaultConfig()
	cfg.DSN = "https://public@example.com/1"
	cfg.SDKOptions.TracesSampleRate = 1.0
	cfg.TransactionStyle = style

	opts = append(opts, sentryware.WithClientOptions(func(o *sentry.ClientOptions) {
		o.BeforeSend = func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			rec.mu.Lock()
			defer rec.mu.Unlock()
			rec.events = append(rec.events, event)
			return nil
		}
		o.BeforeSendTransaction = func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			rec.mu.Lock()
			defer rec.mu.Unlock()
			rec.transactions = append(rec.transactions, event)
			return nil
		}
	}))

	p, err := sentryware.New(cfg, opts...)
	require.NoError(t, err)
	return p, rec
}

func newRouter(p *sentryware.Plugin, opts ...Option) *gin.Engine {
	r := gin.New()
	r.Use(gin.RecoveryWithWriter(io.Discard), New(p, opts...))
	return r
}

type forbiddenError struct{}

func (forbiddenError) Error() string { return "forbidden" }

func TestMiddleware_Success(t *testing.T) {
	p, rec := newTestPlugin(t, sentryware.TransactionStyleURL)
	r := newRouter(p)
	r.GET("/users/:id", func(c *gin.Context) {
		assert.NotNil(t, GetHub(c))
		_, ok := sentryware.HubFromContext(c.Request.Context())
		assert.True(t, ok)
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/5", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, rec.getEvents())
	txs := rec.getTransactions()
	require.Len(t, txs, 1)
	assert.Equal(t, "/users/5", txs[0].Transaction)
	assert.Equal(t, Framework, txs[0].Tags["framework"])
}

func TestMiddleware_EndpointStyleUsesFullPath(t *testing.T) {
	p, rec := newTestPlugin(t, sentryware.TransactionStyleEndpoint)
	r := newRouter(p)
	r.GET("/users/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users/5", nil))

	txs := rec.getTransactions()
	require.Len(t, txs, 1)
	assert.Equal(t, "/users/:id", txs[0].Transaction)
}

func TestMiddleware_PanicIsReportedAndRecovered(t *testing.T) {
	p, rec := newTestPlugin(t, sentryware.TransactionStyleEndpoint)
	r := newRouter(p)
	r.GET("/error", func(c *gin.Context) { panic("handler exploded") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/error?x=1", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code, "gin.Recovery still renders the 500")
	events := rec.getEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "handler exploded", events[0].Message)
	assert.Equal(t, "/error", events[0].Transaction)
	require.NotNil(t, events[0].Request)
	assert.Equal(t, "x=1", events[0].Request.QueryString)
	assert.Len(t, rec.getTransactions(), 1)
}

func TestMiddleware_IgnoredPanic(t *testing.T) {
	p, rec := newTestPlugin(t, sentryware.TransactionStyleURL, sentryware.WithIgnoreErrors(forbiddenError{}))
	r := newRouter(p)
	r.GET("/admin", func(c *gin.Context) { panic(forbiddenError{}) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, rec.getEvents())
}

func TestMiddleware_AbortHandlerIsNotReported(t *testing.T) {
	p, rec := newTestPlugin(t, sentryware.TransactionStyleURL)
	r := gin.New()
	r.Use(New(p))
	r.GET("/stream", func(c *gin.Context) { panic(http.ErrAbortHandler) })

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/stream", nil))
	})
	assert.Empty(t, rec.getEvents())
	assert.Len(t, rec.getTransactions(), 1)
}

func TestMiddleware_ContextErrors(t *testing.T) {
	p, rec := newTestPlugin(t, sentryware.TransactionStyleURL)
	r := newRouter(p)
	r.POST("/orders", func(c *gin.Context) {
		_ = c.Error(errors.New("bad payload")).SetType(gin.ErrorTypeBind)
		_ = c.Error(errors.New("queue unavailable"))
		c.Status(http.StatusServiceUnavailable)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/orders", nil))

	events := rec.getEvents()
	require.Len(t, events, 1, "bind errors are skipped by default")
	exc := events[0].Exception
	require.NotEmpty(t, exc)
	assert.Equal(t, "queue unavailable", exc[len(exc)-1].Value)
}

func TestMiddleware_WithoutContextErrors(t *testing.T) {
	p, rec := newTestPlugin(t, sentryware.TransactionStyleURL)
	r := newRouter(p, WithoutContextErrors())
	r.GET("/", func(c *gin.Context) {
		_ = c.Error(errors.New("ignored"))
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, rec.getEvents())
}

func TestMiddleware_ProcessorSeesGinContext(t *testing.T) {
	p, rec := newTestPlugin(t, sentryware.TransactionStyleURL)
	p.Register(func(event *sentry.Event, _ *sentry.EventHint, req sentryware.Request) *sentry.Event {
		if gr, ok := req.(*Request); ok {
			if tenant, ok := gr.GinContext().Get("tenant"); ok {
				event.Tags["tenant"] = tenant.(string)
			}
		}
		return event
	})

	r := newRouter(p)
	r.GET("/report", func(c *gin.Context) {
		c.Set("tenant", "initech")
		GetHub(c).CaptureMessage("report generated")
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/report", nil))

	events := rec.getEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "initech", events[0].Tags["tenant"])
}

func TestGetHub_WithoutMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, GetHub(c))
}
