// middleware.go provides net/http middleware built on RequestScope.

package sentryware

import (
	"bufio"
	"net"
	"net/http"
	"strings"
)

// ErrorHandler is a net/http handler that reports failure by returning an error.
type ErrorHandler func(w http.ResponseWriter, r *http.Request) error

// Handle wraps next so that every request runs inside its own reporting
// scope and transaction. Panics are reported unless ignored and then
// re-panicked; http.ErrAbortHandler is never reported.
func (p *Plugin) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs, sw, r := p.begin(w, r)

		defer func() {
			if v := recover(); v != nil {
				if v != http.ErrAbortHandler {
					rs.CapturePanic(v)
				}
				rs.SetEndpoint(routeFromPattern(r.Pattern))
				rs.SetStatus(http.StatusInternalServerError)
				rs.Finish()
				panic(v)
			}
		}()

		next.ServeHTTP(sw, r)

		rs.SetEndpoint(routeFromPattern(r.Pattern))
		rs.SetStatus(sw.Status())
		rs.Finish()
	})
}

// HandleFunc is Handle for a handler function.
func (p *Plugin) HandleFunc(next http.HandlerFunc) http.Handler {
	return p.Handle(next)
}

// WrapError is Handle for error-returning handlers. A returned error is
// reported unless ignored and then returned unchanged.
func (p *Plugin) WrapError(next ErrorHandler) ErrorHandler {
	return func(w http.ResponseWriter, r *http.Request) error {
		rs, sw, r := p.begin(w, r)

		defer func() {
			if v := recover(); v != nil {
				if v != http.ErrAbortHandler {
					rs.CapturePanic(v)
				}
				rs.SetEndpoint(routeFromPattern(r.Pattern))
				rs.SetStatus(http.StatusInternalServerError)
				rs.Finish()
				panic(v)
			}
		}()

		err := next(sw, r)

		rs.SetEndpoint(routeFromPattern(r.Pattern))
		if err != nil {
			rs.CaptureError(err)
			rs.SetStatus(StatusFromError(err))
		} else {
			rs.SetStatus(sw.Status())
		}
		rs.Finish()

		return err
	}
}

func (p *Plugin) begin(w http.ResponseWriter, r *http.Request) (*RequestScope, *StatusWriter, *http.Request) {
	rs := p.Begin(p.NewRequest(r), "net/http")
	return rs, NewStatusWriter(w), r.WithContext(rs.Context())
}

// routeFromPattern strips the method and host of a ServeMux pattern,
// "GET example.com/items/{id}" becoming "/items/{id}".
func routeFromPattern(pattern string) string {
	if i := strings.IndexByte(pattern, ' '); i >= 0 {
		pattern = strings.TrimLeft(pattern[i+1:], " \t")
	}
	if i := strings.IndexByte(pattern, '/'); i > 0 {
		pattern = pattern[i:]
	}
	return pattern
}

// StatusWriter records the status code written through it.
type StatusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

// NewStatusWriter wraps w. The status defaults to 200.
func NewStatusWriter(w http.ResponseWriter) *StatusWriter {
	return &StatusWriter{ResponseWriter: w, status: http.StatusOK}
}

// Status returns the written status code.
func (w *StatusWriter) Status() int {
	return w.status
}

func (w *StatusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *StatusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// Flush sends buffered data to the client when the underlying writer
// supports it.
func (w *StatusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		w.wroteHeader = true
		f.Flush()
	}
}

// Hijack hands over the connection when the underlying writer supports it
// and returns http.ErrNotSupported otherwise.
func (w *StatusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	if !w.wroteHeader {
		w.status = http.StatusSwitchingProtocols
		w.wroteHeader = true
	}
	return h.Hijack()
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (w *StatusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
