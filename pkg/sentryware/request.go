// request.go provides the framework-neutral request view used for event enrichment.

package sentryware

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/getsentry/sentry-go"
)

// Request is the framework-neutral view of an inbound request.
// Adapters implement it for their framework's request type.
type Request interface {
	// URL returns scheme://host/path without the query string.
	URL() string

	// Path returns the request path.
	Path() string

	// Method returns the HTTP method.
	Method() string

	// QueryString returns the raw query string without the leading "?".
	QueryString() string

	// Header returns the first value of the named header.
	Header(name string) string

	// Headers returns all headers, multi-valued headers joined with ", ".
	Headers() map[string]string

	// RemoteAddr returns the client address when the transport exposes one.
	RemoteAddr() (string, bool)

	// Context returns the request context.
	Context() context.Context
}

// bodyRequest is implemented by requests that captured their body.
type bodyRequest interface {
	Body() []byte
}

// HTTPRequest adapts *http.Request to Request.
type HTTPRequest struct {
	r    *http.Request
	body []byte
}

// NewHTTPRequest wraps r.
func NewHTTPRequest(r *http.Request) *HTTPRequest {
	return &HTTPRequest{r: r}
}

// NewRequest wraps r, capturing its body when the plugin was built WithBody.
func (p *Plugin) NewRequest(r *http.Request) *HTTPRequest {
	req := NewHTTPRequest(r)
	req.captureBody(p.maxBody)
	return req
}

// Raw returns the wrapped *http.Request.
func (h *HTTPRequest) Raw() *http.Request {
	return h.r
}

func (h *HTTPRequest) URL() string {
	scheme := "http"
	if h.r.TLS != nil {
		scheme = "https"
	} else if h.r.URL.Scheme != "" {
		scheme = h.r.URL.Scheme
	}
	host := h.r.Host
	if host == "" {
		host = h.r.URL.Host
	}
	return scheme + "://" + host + h.r.URL.Path
}

func (h *HTTPRequest) Path() string {
	return h.r.URL.Path
}

func (h *HTTPRequest) Method() string {
	return h.r.Method
}

func (h *HTTPRequest) QueryString() string {
	return h.r.URL.RawQuery
}

func (h *HTTPRequest) Header(name string) string {
	if strings.EqualFold(name, "Host") {
		return h.r.Host
	}
	return h.r.Header.Get(name)
}

func (h *HTTPRequest) Headers() map[string]string {
	headers := make(map[string]string, len(h.r.Header)+1)
	if h.r.Host != "" {
		headers["Host"] = h.r.Host
	}
	for k, v := range h.r.Header {
		headers[k] = strings.Join(v, ", ")
	}
	return headers
}

func (h *HTTPRequest) RemoteAddr() (string, bool) {
	if h.r.RemoteAddr == "" {
		return "", false
	}
	host, _, err := net.SplitHostPort(h.r.RemoteAddr)
	if err != nil {
		return h.r.RemoteAddr, true
	}
	return host, true
}

func (h *HTTPRequest) Context() context.Context {
	return h.r.Context()
}

// Body returns the captured request body, if any.
func (h *HTTPRequest) Body() []byte {
	return h.body
}

// captureBody reads up to max bytes of the body for methods that carry one
// and puts them back in front of the remaining stream.
func (h *HTTPRequest) captureBody(max int64) {
	if max <= 0 || h.r.Body == nil || h.r.Body == http.NoBody {
		return
	}
	switch h.r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		return
	}

	buf, err := io.ReadAll(io.LimitReader(h.r.Body, max))
	if err == nil {
		h.body = buf
	}
	h.r.Body = readCloser{Reader: io.MultiReader(bytes.NewReader(buf), h.r.Body), Closer: h.r.Body}
}

type readCloser struct {
	io.Reader
	io.Closer
}

// RequestData builds the event request description for req.
// Env carries REMOTE_ADDR only when the transport exposed a client address.
func RequestData(req Request) *sentry.Request {
	data := &sentry.Request{
		URL:         req.URL(),
		Method:      req.Method(),
		QueryString: req.QueryString(),
		Headers:     req.Headers(),
	}
	if addr, ok := req.RemoteAddr(); ok {
		data.Env = map[string]string{"REMOTE_ADDR": addr}
	}
	if br, ok := req.(bodyRequest); ok {
		if body := br.Body(); len(body) > 0 {
			data.Data = string(body)
		}
	}
	return data
}
