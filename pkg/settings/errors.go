package settings

import "errors"

var (
	// ErrMissingDestination is returned when no Kindle address is configured.
	ErrMissingDestination = errors.New("settings: kindle email is not configured")

	// ErrMissingSender is returned when the sender address or password is missing.
	ErrMissingSender = errors.New("settings: sender email is not configured")

	// ErrInvalidPort is returned for non-numeric or out-of-range ports.
	ErrInvalidPort = errors.New("settings: invalid smtp port")

	// ErrCorrupt is returned when the settings file cannot be decoded.
	ErrCorrupt = errors.New("settings: file is corrupt")
)
