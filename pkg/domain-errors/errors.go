// Package domainerrors defines the coded errors the core surfaces to its
// callers. Stores return sentinel errors for infrastructure facts; services
// translate those, and their own rule violations, into coded errors so the
// excluded CRUD layer can map codes onto form/field errors without string
// matching.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

const (
	// CodeValidation marks bad input shape: malformed card numbers,
	// out-of-range wages, non two-decimal amounts.
	CodeValidation Code = "validation"
	// CodeStatus marks a lifecycle transition not permitted from the
	// person's current state.
	CodeStatus Code = "status"
	// CodeAge marks an eligibility rule violation (too young to register,
	// retire day before the standard retire day).
	CodeAge Code = "age"
	// CodeCycle marks a tree reparent that would create a cycle.
	CodeCycle Code = "cycle"
	// CodeDuplicateBinding marks a standard binding that is already
	// effective for the same person/standard pair.
	CodeDuplicateBinding Code = "duplicate_binding"
	// CodeNotFound marks a referenced entity that does not exist.
	CodeNotFound Code = "not_found"
	// CodeReferenced marks a deletion blocked by existing references.
	CodeReferenced Code = "referenced"
	// CodeConfiguration marks a missing seed item or similar startup-time
	// misconfiguration. Fatal, not recoverable by retry.
	CodeConfiguration Code = "configuration"
	// CodeFormat marks a settlement report line that does not match the
	// feed contract.
	CodeFormat Code = "format"

	// Operational codes.
	CodeConflict Code = "conflict"
	CodeTimeout  Code = "timeout"
	CodeInternal Code = "internal"
)

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a coded error.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf returns the code of the outermost coded error in err's chain, or
// CodeInternal when err carries no code.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	var de *Error
	return errors.As(err, &de) && de.Code == code
}
