package grid

import "errors"

var (
	// ErrOutOfRange indicates a slot id, day or time of day outside the grid.
	ErrOutOfRange = errors.New("slot out of range")
	// ErrInvalidRange indicates a malformed start/end time range.
	ErrInvalidRange = errors.New("invalid time range")
)
