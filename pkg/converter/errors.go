package converter

import "errors"

var (
	// ErrNotFound is returned when the source file does not exist.
	ErrNotFound = errors.New("converter: source file not found")

	// ErrConversionFailed is returned when the converter ran but exited
	// non-zero, produced no output, or could not be started.
	ErrConversionFailed = errors.New("converter: conversion failed")

	// ErrUnsupportedFormat is returned for extensions outside the accepted set.
	ErrUnsupportedFormat = errors.New("converter: unsupported format")
)
