package health

import "errors"

// ErrCheckTimeout is reported for a check that exceeds the timeout.
var ErrCheckTimeout = errors.New("health: check timeout")
