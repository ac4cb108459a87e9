package middlewares

import (
	"fmt"
	"net/http"

	"github.com/weiye465/Kindle-Transfer-App/internal"
)

// BodyLimit returns middleware that caps request bodies at limit bytes.
// Requests that declare a larger Content-Length are rejected with 413 before
// the handler runs; streamed bodies fail with *http.MaxBytesError on read.
// A non-positive limit disables the cap.
func BodyLimit(limit int64) internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		if limit <= 0 {
			return next
		}
		return func(c internal.Context) error {
			r := c.Request()
			if r.ContentLength > limit {
				return internal.ErrRequestTooLarge(
					fmt.Sprintf("request body exceeds %d MB", limit>>20),
					internal.WithErrorCode("request_too_large"),
				)
			}
			r.Body = http.MaxBytesReader(c.Response(), r.Body, limit)
			return next(c)
		}
	}
}
