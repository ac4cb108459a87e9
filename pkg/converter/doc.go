// Package converter decides what file gets delivered for an upload and, for
// PDFs, optionally converts them to EPUB with Calibre's ebook-convert.
//
// Policy, evaluated in order:
//
//  1. Non-PDF sources pass through unchanged.
//  2. PDFs pass through when conversion is disabled.
//  3. PDFs are converted when enabled. A missing converter passes the PDF
//     through; a converter that fails returns ErrConversionFailed.
//
// Usage:
//
//	conv := converter.New(&converter.Calibre{}, converter.WithLogger(log))
//	out, err := conv.Convert(ctx, "uploads/book.pdf", true)
//	if errors.Is(err, converter.ErrConversionFailed) {
//	    // tool ran and failed
//	}
//	fmt.Println(out.DeliverablePath, out.Format, out.WasConverted)
//
// The Tool interface isolates process spawning so tests can substitute a fake.
package converter
