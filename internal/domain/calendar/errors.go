package calendar

import (
	"errors"

	"github.com/rpggio/groupmeet/internal/domain/grid"
)

var (
	// ErrUnauthenticated indicates an edit attempted without a current user.
	ErrUnauthenticated = errors.New("no authenticated user")
	// ErrStorageUnavailable indicates a failed load or save against the store.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrReservedUser indicates a user id that collides with a metadata key.
	ErrReservedUser = errors.New("user id uses reserved prefix")
	// ErrInvalidInput indicates an empty dataset key.
	ErrInvalidInput = errors.New("invalid calendar input")
	// ErrOutOfRange indicates a vector or cell that does not fit the grid.
	ErrOutOfRange = grid.ErrOutOfRange

	errUninitialized = errors.New("dataset not initialized")
)
