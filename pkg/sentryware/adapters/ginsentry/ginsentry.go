// Package ginsentry adapts sentryware to gin.
//
// Register the middleware after gin.Recovery so that re-panicked values are
// still turned into 500 responses:
//
//	r := gin.New()
//	r.Use(gin.Recovery(), ginsentry.New(plugin))
package ginsentry

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/strongdm/sentryware/pkg/sentryware"
)

// Framework is the value of the framework tag on gin requests.
const Framework = "gin"

// hubKey is the gin context key holding the request hub.
const hubKey = "sentryware.hub"

// Option configures the middleware.
type Option func(*options)

type options struct {
	captureErrors bool
	skipTypes     gin.ErrorType
}

// WithoutContextErrors disables reporting of errors attached with c.Error.
func WithoutContextErrors() Option {
	return func(o *options) {
		o.captureErrors = false
	}
}

// WithSkippedErrorTypes replaces the gin error types that are never
// reported. The default skips gin.ErrorTypeBind.
func WithSkippedErrorTypes(types gin.ErrorType) Option {
	return func(o *options) {
		o.skipTypes = types
	}
}

// New returns gin middleware reporting to p.
//
// Panics are reported unless ignored and re-panicked; http.ErrAbortHandler
// is never reported. Errors attached with c.Error are reported unless
// ignored or skipped and stay on the context.
func New(p *sentryware.Plugin, opts ...Option) gin.HandlerFunc {
	o := &options{
		captureErrors: true,
		skipTypes:     gin.ErrorTypeBind,
	}
	for _, opt := range opts {
		opt(o)
	}

	return func(c *gin.Context) {
		req := &Request{HTTPRequest: p.NewRequest(c.Request), c: c}
		rs := p.Begin(req, Framework)
		c.Request = c.Request.WithContext(rs.Context())
		c.Set(hubKey, rs.Hub())

		defer func() {
			if v := recover(); v != nil {
				if v != http.ErrAbortHandler {
					rs.CapturePanic(v)
				}
				rs.SetEndpoint(c.FullPath())
				rs.SetStatus(http.StatusInternalServerError)
				rs.Finish()
				panic(v)
			}
		}()

		c.Next()

		if o.captureErrors {
			for _, e := range c.Errors {
				if e.IsType(o.skipTypes) {
					continue
				}
				rs.CaptureError(e.Err)
			}
		}

		rs.SetEndpoint(c.FullPath())
		rs.SetStatus(c.Writer.Status())
		rs.Finish()
	}
}

// GetHub returns the request hub installed by the middleware.
func GetHub(c *gin.Context) *sentry.Hub {
	if v, ok := c.Get(hubKey); ok {
		if hub, ok := v.(*sentry.Hub); ok {
			return hub
		}
	}
	return nil
}

// Request adapts *gin.Context to sentryware.Request.
type Request struct {
	*sentryware.HTTPRequest
	c *gin.Context
}

// NewRequest wraps c.
func NewRequest(c *gin.Context) *Request {
	return &Request{HTTPRequest: sentryware.NewHTTPRequest(c.Request), c: c}
}

// GinContext returns the wrapped gin context, for processors that read values set with c.Set.
func (r *Request) GinContext() *gin.Context {
	return r.c
}
