package swerr

import (
	"fmt"
)

// Error is a statwatch error that tagged with a kind.
//
// Please use errors.Is with the kinds in lib-statwatch, like statwatch.ErrParse.
type Error struct {
	kind    error
	from    error
	message string
}

// New creates a new Error.
// The from can be nil if there is no cause.
func New(kind error, from error, format string, args ...interface{}) Error {
	msg := fmt.Sprintf(format, args...)
	if from != nil {
		if msg != "" {
			msg += ": "
		}
		msg += from.Error()
	}

	return Error{
		kind:    kind,
		from:    from,
		message: msg,
	}
}

func (e Error) Error() string {
	return e.message
}

// Unwrap returns the cause.
func (e Error) Unwrap() error {
	return e.from
}

// Is reports the kind of this error is err.
func (e Error) Is(err error) bool {
	return e.kind == err
}

// Kind returns the kind of this error.
func (e Error) Kind() error {
	return e.kind
}
