package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the booking error taxonomy. Services wrap them with
// fmt.Errorf("...: %w", ...) so handlers can map them to HTTP statuses with
// errors.Is.
var (
	// ErrInvalidInput covers malformed requests: out-of-range seat
	// coordinates, duplicate seats in one selection, seat counts outside 1-10.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict covers seats that are already booked or otherwise
	// contended. The whole request aborts with no partial mutation.
	ErrConflict = errors.New("conflict")

	// ErrNotFound covers unknown event ids, booking ids, and booking refs.
	// A batch operation containing a bad reference aborts entirely.
	ErrNotFound = errors.New("not found")

	// ErrPrecondition indicates a ledger/matrix desynchronization (reserving
	// a booked seat, releasing a free one). It is a programming error, fatal
	// to the enclosing transaction.
	ErrPrecondition = errors.New("precondition violation")

	ErrUnauthorized = errors.New("user is not authorized")
)

func Invalidf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidInput)...)
}

func Conflictf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrConflict)...)
}

func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

func Preconditionf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrPrecondition)...)
}
