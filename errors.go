package shaderkit

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes the errors returned by shaderkit.
type ErrorKind uint8

const (
	// ParseError reports malformed WGSL source or a malformed SPIR-V binary.
	ParseError ErrorKind = iota

	// ValidationError reports a well-formed but semantically invalid module.
	ValidationError

	// EntryPointNotFound reports a named entry point missing from the module.
	EntryPointNotFound

	// CodegenError reports a valid module that cannot be written for the
	// requested target.
	CodegenError

	// LengthError reports a SPIR-V binary whose length is not a whole number
	// of words.
	LengthError
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case ParseError:
		return "ParseError"
	case ValidationError:
		return "ValidationError"
	case EntryPointNotFound:
		return "EntryPointNotFound"
	case CodegenError:
		return "CodegenError"
	case LengthError:
		return "LengthError"
	default:
		return "Unknown"
	}
}

// Error is the error type returned by every shaderkit operation.
type Error struct {
	// Kind categorizes the error.
	Kind ErrorKind

	// Message is the text shown to the caller.
	Message string

	// Err is the error reported by the failing stage, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying stage error.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind, so the sentinels
// below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrEntryPointNotFound = &Error{Kind: EntryPointNotFound, Message: "entry point not found"}
	ErrLength             = &Error{Kind: LengthError, Message: "SPIR-V binary length must be multiple of 4"}
)

// KindOf returns the kind of err, and false when err is not a shaderkit
// error.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return 0, false
	}
	return e.Kind, true
}

func newError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}
