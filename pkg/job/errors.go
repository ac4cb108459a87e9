package job

import "errors"

// Job errors.
var (
	// ErrUnknownTask is returned when running a task that has not been registered.
	ErrUnknownTask = errors.New("job: unknown task")

	// ErrInvalidSchedule is returned for cron expressions that do not parse.
	ErrInvalidSchedule = errors.New("job: invalid schedule")

	// ErrAlreadyStarted is returned when attempting to start a manager
	// that is already running.
	ErrAlreadyStarted = errors.New("job: already started")

	// ErrNotStarted is returned when attempting to stop a manager
	// that is not running.
	ErrNotStarted = errors.New("job: not started")
)
