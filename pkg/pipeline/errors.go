package pipeline

import (
	"errors"

	"github.com/weiye465/Kindle-Transfer-App/pkg/settings"
)

var (
	// ErrNoFile is returned when a request carries no file.
	ErrNoFile = errors.New("pipeline: no file provided")

	// ErrEmptyFilename is returned when the file has no name.
	ErrEmptyFilename = errors.New("pipeline: no file selected")

	// ErrDisallowedExtension is returned for extensions outside the accepted set.
	ErrDisallowedExtension = errors.New("pipeline: unsupported file format")

	// ErrSourceNotFound is returned when a conversion or delivery target is missing.
	ErrSourceNotFound = errors.New("pipeline: file not found")

	// ErrConversionFailed is returned when the converter ran and failed.
	ErrConversionFailed = errors.New("pipeline: conversion failed")

	// ErrDeliveryFailed is the single caller-facing delivery failure.
	ErrDeliveryFailed = errors.New("delivery failed, check configuration")
)

var validationErrors = []error{
	ErrNoFile,
	ErrEmptyFilename,
	ErrDisallowedExtension,
	ErrSourceNotFound,
	settings.ErrMissingDestination,
	settings.ErrMissingSender,
	settings.ErrInvalidPort,
}

// IsValidation reports whether err was caused by bad input or missing
// configuration rather than a failure of conversion or delivery.
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
