// Package pipeline sequences one transfer: an upload is validated and stored,
// optionally converted, then mailed to the configured Kindle address.
//
// A run moves strictly forward:
//
//	received -> stored -> converted | conversion_skipped -> delivered | failed
//
// Validation errors (ErrNoFile, ErrEmptyFilename, ErrDisallowedExtension)
// are returned before anything is written. A converter that is not installed
// is not an error: the PDF is sent as is. A converter that runs and fails
// ends the run with ErrConversionFailed unless Options.TolerateConversionFailure
// is set. Missing configuration is reported with the settings errors before
// delivery is attempted. Every delivery failure is reported as
// ErrDeliveryFailed; the underlying cause is logged and joined to the error.
//
// Files produced before a failure stay in the library for a manual retry.
//
// Usage:
//
//	p := pipeline.New(lib, conv, dispatcher, store,
//		pipeline.WithLogger(log),
//		pipeline.WithRecorder(m),
//	)
//	res, err := p.Process(ctx, &pipeline.Upload{Filename: name, Content: file},
//		pipeline.Options{Convert: true})
//
// Each run gets a UUID run id, stored in the context and added to log records
// by RunIDExtractor.
package pipeline
