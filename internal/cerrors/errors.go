// Package cerrors defines the typed error taxonomy shared across the
// Conversation Context Engine. Every public operation that can fail
// returns (or wraps) one of these kinds instead of an ad hoc string error.
package cerrors

import (
	"errors"
	"fmt"
)

// Kind enumerates the error taxonomy from the engine's error-handling design.
type Kind string

const (
	InputInvalid Kind = "input_invalid"
	NotFound     Kind = "not_found"
	Expired      Kind = "expired"
	IOError      Kind = "io_error"
	Corrupt      Kind = "corrupt"
	Timeout      Kind = "timeout"
	Cancelled    Kind = "cancelled"
	Conflict     Kind = "conflict"
)

// Error is the typed error carried across package boundaries.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs a typed Error.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Is reports whether target is an *Error with the same Kind, so callers
// can write errors.Is(err, cerrors.ErrNotFound)-style checks against the
// sentinels below; KindOf extracts the Kind directly.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// KindOf extracts the Kind from err, or "" if err is not a typed Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Sentinel values usable with errors.Is(err, cerrors.ErrNotFound) etc,
// for callers that only care about kind and not op/wrapped detail.
var (
	ErrNotFound     = &Error{Kind: NotFound}
	ErrExpired      = &Error{Kind: Expired}
	ErrInputInvalid = &Error{Kind: InputInvalid}
	ErrConflict     = &Error{Kind: Conflict}
	ErrCancelled    = &Error{Kind: Cancelled}
	ErrTimeout      = &Error{Kind: Timeout}
)
