package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/groupmeet/internal/domain/activity"
	"github.com/rpggio/groupmeet/internal/domain/calendar"
	"github.com/rpggio/groupmeet/internal/domain/grid"
	"github.com/rpggio/groupmeet/internal/transport"
)

var (
	// ErrUnknownMethod is returned for methods the handler does not dispatch.
	ErrUnknownMethod = transport.ErrUnknownMethod
	// ErrInvalidParams is returned when params cannot be decoded.
	ErrInvalidParams = transport.ErrBadParams
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
	cause        error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.cause
}

func (e *APIError) CodeValue() string {
	return e.Code
}

func (e *APIError) MessageValue() string {
	return e.Message
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	switch {
	case errors.Is(err, calendar.ErrUnauthenticated):
		return &APIError{Code: "UNAUTHENTICATED", Message: "sign in to edit availability", RecoveryHint: "Send a bearer token", cause: err}
	case errors.Is(err, calendar.ErrStorageUnavailable):
		return &APIError{Code: "STORAGE_UNAVAILABLE", Message: "availability could not be stored", RecoveryHint: "Edits are kept; call flush to retry", cause: err}
	case errors.Is(err, calendar.ErrReservedUser):
		return &APIError{Code: "RESERVED_USER", Message: "user id may not start with an underscore", cause: err}
	case errors.Is(err, grid.ErrOutOfRange):
		return &APIError{Code: "OUT_OF_RANGE", Message: "cell is outside the grid", RecoveryHint: "Call get_labels for the grid size", cause: err}
	case errors.Is(err, calendar.ErrInvalidInput), errors.Is(err, activity.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: "calendar_key is required", RecoveryHint: "Call open_calendar first", cause: err}
	case errors.Is(err, ErrInvalidParams):
		return &APIError{Code: "INVALID_PARAMS", Message: err.Error(), cause: err}
	default:
		return nil
	}
}
