package activity

import "errors"

// ErrInvalidInput indicates an empty or incomplete activity entry.
var ErrInvalidInput = errors.New("invalid activity input")
