// errors.go declares the sentinel errors returned by the package.

package sentryware

import (
	"strconv"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidConfig is wrapped by every configuration validation failure.
	ErrInvalidConfig = errors.New("sentryware: invalid config")

	// ErrScopeUnavailable is returned when a scope is requested outside of a
	// request wrapped by the middleware.
	ErrScopeUnavailable = errors.New("sentryware: scope is not available")

	// ErrFlushTimeout is returned by Flush when buffered events were not delivered in time.
	ErrFlushTimeout = errors.New("sentryware: flush timed out")
)

func parseRate(s string) (float64, error) {
	rate, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidConfig, "rate %q: %v", s, err)
	}
	return rate, nil
}
