package store

import "errors"

// ErrNotFound is returned when a record does not exist or is not owned by the caller.
var ErrNotFound = errors.New("store: not found")
