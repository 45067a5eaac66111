package apperr

import (
	"errors"
	"fmt"
)

// Sentinel kinds for the expected, recoverable-by-caller failures of the
// attempt engine. Services wrap these with context via %w; controllers match
// with errors.Is to pick an HTTP status. Anything not wrapping one of these
// is treated as an internal error.
var (
	// ErrConflict: a duplicate active attempt already exists for the user
	// and assessment. Callers should surface "already in progress", not retry.
	ErrConflict = errors.New("conflict")

	// ErrNotFound: the referenced attempt, assessment or question does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState: the operation is not allowed in the attempt's current
	// lifecycle state (e.g. resuming an attempt that is not paused).
	ErrInvalidState = errors.New("invalid state")

	// ErrExpired: a write arrived after the attempt's time ran out. Callers
	// should redirect to the result flow.
	ErrExpired = errors.New("attempt expired")

	// ErrTransient: persistence-level contention or timeout that survived the
	// bounded retries. Callers report it as a 5xx-equivalent.
	ErrTransient = errors.New("transient storage failure")
)

func Conflictf(format string, args ...any) error {
	return wrapf(ErrConflict, format, args...)
}

func NotFoundf(format string, args ...any) error {
	return wrapf(ErrNotFound, format, args...)
}

func InvalidStatef(format string, args ...any) error {
	return wrapf(ErrInvalidState, format, args...)
}

func Expiredf(format string, args ...any) error {
	return wrapf(ErrExpired, format, args...)
}

func Transientf(format string, args ...any) error {
	return wrapf(ErrTransient, format, args...)
}

func wrapf(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}
