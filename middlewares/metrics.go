package middlewares

import (
	"time"

	"github.com/weiye465/Kindle-Transfer-App/internal"
)

// HTTPObserver records finished requests. *metrics.Metrics implements it.
type HTTPObserver interface {
	HTTPRequest(method string, status int, d time.Duration)
}

// Metrics returns middleware that reports every request to obs.
// Handler errors not yet rendered are counted as 500.
func Metrics(obs HTTPObserver) internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		if obs == nil {
			return next
		}
		return func(c internal.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Status()
			if err != nil && !c.Written() {
				status = 500
				if he := internal.AsHTTPError(err); he != nil {
					status = he.Code
				}
			}
			obs.HTTPRequest(c.Request().Method, status, time.Since(start))
			return err
		}
	}
}
