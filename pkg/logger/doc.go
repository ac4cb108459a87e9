// Package logger builds the application's slog logger.
//
// Records are written as JSON (or text) to stdout. Context extractors add
// request-scoped attributes, such as the request id set by the RequestID
// middleware or the pipeline run id, to every record logged with a context:
//
//	log := logger.New(logger.Config{Level: "info"},
//		middlewares.RequestIDExtractor(),
//		pipeline.RunIDExtractor(),
//	)
//	log.InfoContext(ctx, "delivered", slog.String("to", "me@kindle.com"))
//	// {"level":"INFO","msg":"delivered","to":"me@kindle.com","request_id":"...","run_id":"..."}
//
// # Sentry
//
// Set Config.Sentry.DSN to fan records out to Sentry as well. Errors become
// issues; warnings and errors are stored as Sentry logs. Call Flush on
// shutdown so buffered events are not lost.
//
// # Testing
//
// NewNope returns a logger that discards all output.
package logger
