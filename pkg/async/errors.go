package async

import "errors"

// ErrTimeout is returned when a future does not complete before the deadline.
var ErrTimeout = errors.New("async: operation timed out")
