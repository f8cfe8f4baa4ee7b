// Package fibersentry adapts sentryware to fiber.
//
// Register the middleware after the recover middleware so that re-panicked
// values are still turned into 500 responses:
//
//	app := fiber.New()
//	app.Use(recover.New(), fibersentry.New(plugin))
package fibersentry

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/strongdm/sentryware/pkg/sentryware"
)

// Framework is the value of the framework tag on fiber requests.
const Framework = "fiber"

// Option configures the middleware.
type Option func(*options)

type options struct {
	ignore sentryware.IgnoreList
}

// WithIgnoreErrors adds the runtime type of each sample to the adapter's
// ignore list, on top of the plugin's.
func WithIgnoreErrors(samples ...any) Option {
	return func(o *options) {
		o.ignore = o.ignore.With(samples...)
	}
}

// WithoutDefaultIgnores reports *fiber.Error values, which are ignored by default.
func WithoutDefaultIgnores() Option {
	return func(o *options) {
		o.ignore = sentryware.NewIgnoreList()
	}
}

// New returns fiber middleware reporting to p.
//
// A returned error is reported unless ignored and returned unchanged, so the
// app's ErrorHandler still renders it. *fiber.Error is ignored by default.
// Panics are reported unless ignored and re-panicked.
func New(p *sentryware.Plugin, opts ...Option) fiber.Handler {
	o := &options{
		ignore: sentryware.NewIgnoreList(&fiber.Error{}),
	}
	for _, opt := range opts {
		opt(o)
	}

	return func(c *fiber.Ctx) error {
		req := NewRequest(c, p.BodyLimit())
		rs := p.Begin(req, Framework)
		c.SetUserContext(rs.Context())

		defer func() {
			if v := recover(); v != nil {
				if !o.ignore.Contains(v) {
					rs.CapturePanic(v)
				}
				rs.SetEndpoint(routePath(c))
				rs.SetStatus(http.StatusInternalServerError)
				rs.Finish()
				panic(v)
			}
		}()

		err := c.Next()

		rs.SetEndpoint(routePath(c))
		if err != nil {
			if !o.ignore.Contains(err) {
				rs.CaptureError(err)
			}
			rs.SetStatus(StatusFromError(err))
		} else {
			rs.SetStatus(c.Response().StatusCode())
		}
		rs.Finish()

		return err
	}
}

// StatusFromError returns the code of a *fiber.Error anywhere in err's chain, or 500.
func StatusFromError(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return sentryware.StatusFromError(err)
}

func routePath(c *fiber.Ctx) string {
	if r := c.Route(); r != nil {
		return r.Path
	}
	return ""
}
