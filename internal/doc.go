// Package internal provides the HTTP core of the Kindle transfer service.
//
// This package is internal and should not be used directly. Import the root
// kindle package instead, which re-exports the public API.
//
// # Core Types
//
//   - App: owns the chi router, middleware, health endpoints and the server lifecycle
//   - Context: request/response access plus JSON, multipart and rendering helpers
//   - Router: interface handlers use to declare routes with HTTP methods and grouping
//   - Handler: implemented by types that declare routes on a router
//   - HandlerFunc: signature for route handlers that return errors
//   - Middleware: wraps handlers to add cross-cutting concerns
//   - ErrorHandler: renders errors returned by handlers
//
// # Context as context.Context
//
// Context embeds context.Context, so it can be passed to anything that takes
// a standard library context:
//
//	func (h *API) history(c internal.Context) error {
//	    entries, err := h.lib.History(c, library.HistoryLimit)
//	    if err != nil {
//	        return err
//	    }
//	    return c.JSON(http.StatusOK, map[string]any{"success": true, "history": entries})
//	}
//
// # Application Structure
//
//	app := internal.New(
//	    internal.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	    internal.WithHandlers(api, pages),
//	    internal.WithHealthChecks(internal.WithReadinessCheck("uploads", lib.Healthcheck())),
//	    internal.WithMount("/metrics", m.Handler()),
//	)
//
// Handlers receive dependencies via constructor injection.
//
// # Error Handling
//
// Handlers return errors; the ErrorHandler renders them. HTTPError carries
// the status code and client-facing message while keeping the cause for logs.
// Without an ErrorHandler, HTTPError messages are written as plain text and
// any other error becomes a bare 500.
//
// # Server Runtime
//
// Run listens on the address, runs startup hooks, and shuts down gracefully
// on SIGINT/SIGTERM or when the base context is cancelled:
//
//	err := app.Run(":5000",
//	    internal.StartupHook(scheduler.StartFunc()),
//	    internal.ShutdownHook(scheduler.Shutdown()),
//	)
package internal
