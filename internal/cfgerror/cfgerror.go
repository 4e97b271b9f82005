// Package cfgerror defines the configuration-error kind shared by the
// selector codec, the derivation cache, and the numeric kernels.
//
// A configuration error is always fatal for the artifact branch being
// derived: it is surfaced immediately, never retried, and callers must not
// cache partial results after seeing one.
package cfgerror

import (
	"errors"
	"fmt"
)

// Error marks a failure caused by an invalid or incomplete selection,
// as opposed to a numeric or I/O failure during kernel execution.
type Error struct {
	msg string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.msg
}

// New returns a configuration error with the given message.
func New(msg string) error {
	return &Error{msg: msg}
}

// Newf returns a configuration error with a formatted message.
func Newf(format string, args ...any) error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}

// Is reports whether any error in err's chain is a configuration error.
func Is(err error) bool {
	var ce *Error
	return errors.As(err, &ce)
}
