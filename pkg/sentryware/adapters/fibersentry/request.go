// request.go snapshots a fiber request into a sentryware.Request.

package fibersentry

import (
	"context"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Request adapts *fiber.Ctx to sentryware.Request. fasthttp reuses request
// buffers, so every field is copied when the Request is built.
type Request struct {
	c          *fiber.Ctx
	url        string
	path       string
	method     string
	query      string
	headers    map[string]string
	remoteAddr string
	body       []byte
}

// NewRequest snapshots c. Up to maxBody bytes of POST, PUT and PATCH bodies are kept.
func NewRequest(c *fiber.Ctx, maxBody int64) *Request {
	path := strings.Clone(c.Path())
	r := &Request{
		c:      c,
		url:    c.Protocol() + "://" + strings.Clone(c.Hostname()) + path,
		path:   path,
		method: strings.Clone(c.Method()),
		query:  string(c.Request().URI().QueryString()),
	}

	reqHeaders := c.GetReqHeaders()
	r.headers = make(map[string]string, len(reqHeaders)+1)
	for k, v := range reqHeaders {
		r.headers[strings.Clone(k)] = strings.Clone(strings.Join(v, ", "))
	}
	if _, ok := r.headers[fiber.HeaderHost]; !ok {
		if host := c.Hostname(); host != "" {
			r.headers[fiber.HeaderHost] = strings.Clone(host)
		}
	}

	if ip := c.Context().RemoteIP(); ip != nil && !ip.IsUnspecified() {
		r.remoteAddr = ip.String()
	}

	if maxBody > 0 {
		switch r.method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			body := c.Body()
			if int64(len(body)) > maxBody {
				body = body[:maxBody]
			}
			if len(body) > 0 {
				r.body = append([]byte(nil), body...)
			}
		}
	}

	return r
}

// Ctx returns the wrapped fiber context. It is only valid while the request is being served.
func (r *Request) Ctx() *fiber.Ctx {
	return r.c
}

func (r *Request) URL() string {
	return r.url
}

func (r *Request) Path() string {
	return r.path
}

func (r *Request) Method() string {
	return r.method
}

func (r *Request) QueryString() string {
	return r.query
}

func (r *Request) Header(name string) string {
	if v, ok := r.headers[name]; ok {
		return v
	}
	for k, v := range r.headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func (r *Request) Headers() map[string]string {
	headers := make(map[string]string, len(r.headers))
	for k, v := range r.headers {
		headers[k] = v
	}
	return headers
}

func (r *Request) RemoteAddr() (string, bool) {
	return r.remoteAddr, r.remoteAddr != ""
}

// Context returns the user context of the fiber request.
func (r *Request) Context() context.Context {
	return r.c.UserContext()
}

// Body returns the captured request body, if any.
func (r *Request) Body() []byte {
	return r.body
}
