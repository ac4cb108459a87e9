// Package library manages the upload directory: it stores incoming files
// under unique timestamped names, resolves client-supplied paths back to
// stored files, lists recent files for the history view and removes files
// older than a retention age.
//
// # Storing
//
//	lib, err := library.New("uploads")
//	art, err := lib.Save(ctx, "report.pdf", r)
//	// art.StoredName == "20240102_150405_report.pdf"
//	// art.Checksum is the BLAKE3 hex digest of the stored bytes
//
// Names come from filename.UniqueName. The collision probe and the file
// creation are not atomic; files are opened with O_EXCL so a lost race is
// retried once with a fresh name and then reported as ErrStoreFailed.
//
// # Resolving
//
// Resolve accepts an absolute path, a path relative to the working
// directory or a bare stored name, and rejects anything outside the library
// with ErrOutsideLibrary.
//
//	path, err := lib.Resolve(req.FilePath)
//
// # History
//
//	entries, err := lib.History(ctx, library.HistoryLimit)
//
// Entries are sorted newest first. Sizes are MiB rounded to two decimals and
// times use the local "2006-01-02 15:04:05" layout.
package library
