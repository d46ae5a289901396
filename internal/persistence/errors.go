package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record or collection does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrCorrupt is returned when a stored collection cannot be decoded.
	ErrCorrupt = errors.New("persistence: corrupt payload")
)
