package services

import (
	"errors"
	"fmt"

	"github.com/gunalchandran/grocery-backend/store"
)

// Error kinds. Every error returned by a service matches exactly one of
// these with errors.Is, or none when the failure is internal.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidState      = errors.New("invalid state")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Error is a failed service operation.
type Error struct {
	Op      string // e.g. "orders.Place"
	Kind    error  // one of the Err* kinds above
	Message string // client-facing message
	Err     error  // underlying cause, if any
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	if e.Kind != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return e.Op + " failed"
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the error's kind in addition to the wrapped cause.
func (e *Error) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

func newError(op string, kind error, msg string) *Error {
	return &Error{Op: op, Kind: kind, Message: msg}
}

// translate maps store sentinels onto service kinds. Anything unknown is
// wrapped with the operation name and left kindless.
func translate(op string, err error, notFoundMsg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return &Error{Op: op, Kind: ErrNotFound, Message: notFoundMsg, Err: err}
	case errors.Is(err, store.ErrInvalidID):
		return &Error{Op: op, Kind: ErrValidation, Message: "Invalid ID format", Err: err}
	case errors.Is(err, store.ErrDuplicate):
		return &Error{Op: op, Kind: ErrConflict, Message: "Already exists", Err: err}
	case errors.Is(err, store.ErrInsufficientStock):
		return &Error{Op: op, Kind: ErrInsufficientStock, Message: "Insufficient stock", Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsClientError reports whether err carries one of the request-caused kinds.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrInsufficientStock)
}
