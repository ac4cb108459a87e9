package library

import "errors"

var (
	// ErrNotFound is returned when a requested file does not exist in the library.
	ErrNotFound = errors.New("library: file not found")

	// ErrOutsideLibrary is returned for paths that resolve outside the library directory.
	ErrOutsideLibrary = errors.New("library: path outside library")

	// ErrStoreFailed is returned when an upload cannot be written.
	ErrStoreFailed = errors.New("library: failed to store file")
)
