package filename

import "errors"

// ErrProbeFailed is returned when the target directory cannot be inspected
// for collisions.
var ErrProbeFailed = errors.New("filename: collision probe failed")
