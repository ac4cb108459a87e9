// Package kindle is the HTTP application layer of the Kindle transfer
// service: a web page and JSON API that take an uploaded document, convert
// PDFs to EPUB when asked, and mail the result to a Kindle address.
//
// The package re-exports the application core (App, Context, Router,
// options). The domain lives in pkg/: pipeline orchestrates
// library (storage), converter (Calibre) and mailer (SMTP or Resend).
//
// # Quick Start
//
//	lib, _ := library.New("uploads")
//	store := settings.NewFileStore("config.json")
//	conv := converter.New(&converter.Calibre{})
//	disp := mailer.NewDispatcher(smtp.Factory(smtp.Config{}))
//	p := pipeline.New(lib, conv, disp, store)
//	pages, err := handlers.NewPages(p, store, handlers.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	app := kindle.New(
//	    kindle.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	    kindle.WithErrorHandler(handlers.ErrorHandler),
//	    kindle.WithHandlers(
//	        handlers.NewAPI(p, store, handlers.Config{}),
//	        pages,
//	    ),
//	)
//
//	if err := app.Run(":5000"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Handlers
//
// Handlers implement the [Handler] interface to declare routes and return
// errors instead of writing failures:
//
//	func (h *API) history(c kindle.Context) error {
//	    entries, err := h.lib.History(c, library.HistoryLimit)
//	    if err != nil {
//	        return err
//	    }
//	    return c.JSON(http.StatusOK, map[string]any{"success": true, "history": entries})
//	}
//
// # Shutdown
//
// Run handles SIGINT/SIGTERM. Background work is tied to the server with
// StartupHook and ShutdownHook:
//
//	app.Run(":5000",
//	    kindle.StartupHook(jobs.StartFunc()),
//	    kindle.ShutdownHook(jobs.Shutdown()),
//	)
package kindle
