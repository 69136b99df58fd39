package errors

import "github.com/cockroachdb/errors"

// Sentinel error kinds. Every predictable domain failure raised by the
// engine is marked with exactly one of these via Mark(). Callers use
// Is/IsNotFound/... to classify an error without inspecting its message.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("invalid argument")
	ErrInvalidState = errors.New("invalid state")
	ErrConflict     = errors.New("conflict")
	ErrSystem       = errors.New("internal error")
	ErrDatabase     = errors.New("database error")
)

// Is reports whether err is marked with sentinel.
func Is(err, sentinel error) bool {
	return errors.Is(err, sentinel)
}

func IsNotFound(err error) bool     { return Is(err, ErrNotFound) }
func IsValidation(err error) bool   { return Is(err, ErrValidation) }
func IsInvalidState(err error) bool { return Is(err, ErrInvalidState) }
func IsConflict(err error) bool     { return Is(err, ErrConflict) }
func IsSystem(err error) bool       { return Is(err, ErrSystem) }
func IsDatabase(err error) bool     { return Is(err, ErrDatabase) }
