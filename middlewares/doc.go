// Package middlewares provides HTTP middleware for the Kindle transfer service.
//
// # Request ID
//
// RequestID assigns a unique ID to each request. An incoming X-Request-ID
// (or X-Correlation-ID) header is reused; otherwise a UUID is generated.
// The ID is echoed in the response header and stored in the request context.
// Pair it with RequestIDExtractor so every log line carries request_id:
//
//	app := kindle.New(
//	    kindle.WithLogger("http", cfg.Log, middlewares.RequestIDExtractor()),
//	    kindle.WithMiddleware(middlewares.RequestID()),
//	)
//
// # Recover
//
// Recover catches panics and converts them to *PanicError, which the global
// ErrorHandler renders as a generic 500:
//
//	kindle.WithErrorHandler(func(c kindle.Context, err error) error {
//	    if middlewares.IsPanicError(err) {
//	        return c.JSON(500, map[string]any{"success": false, "message": "internal error"})
//	    }
//	    ...
//	})
//
// # Request logging and metrics
//
// RequestLogger writes one structured line per request with method, path,
// status and duration. Metrics reports the same data to an HTTPObserver such
// as *metrics.Metrics.
//
// # Body limit
//
// BodyLimit rejects oversized uploads with 413 and caps streamed bodies:
//
//	kindle.WithMiddleware(middlewares.BodyLimit(cfg.Server.MaxUploadBytes()))
package middlewares
