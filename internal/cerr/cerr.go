// Package cerr defines Cadence's error taxonomy: a closed set of error
// kinds, each carrying an optional source span, wrapped the way the rest
// of the stack wraps I/O errors (fmt.Errorf("...: %w", err)).
package cerr

import (
	"fmt"

	"github.com/schollz/cadence/internal/span"
)

// Kind is one of the taxonomy entries from the error handling design.
type Kind string

const (
	KindParse       Kind = "ParseError"
	KindType        Kind = "TypeError"
	KindName        Kind = "NameError"
	KindArity       Kind = "ArityError"
	KindRange       Kind = "RangeError"
	KindPattern     Kind = "PatternError"
	KindDivideByZero Kind = "DivideByZeroError"
	KindModule      Kind = "ModuleError"
	KindAssertion   Kind = "AssertionError"
	KindIO          Kind = "IOError"
)

// Error is the single error type used across the core. It implements
// errors.Unwrap so callers can use errors.Is/As against wrapped causes.
type Error struct {
	Kind    Kind
	Message string
	Span    *span.Span
	Wrapped error
}

func (e *Error) Error() string {
	if e.Span != nil {
		return fmt.Sprintf("%s at %d:%d: %s", e.Kind, e.Span.Line, e.Span.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Wrapped }

// New builds an Error with no span.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// At builds an Error anchored to a span.
func At(kind Kind, sp span.Span, format string, args ...interface{}) *Error {
	s := sp
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Span: &s}
}

// Wrap attaches a Kind to an underlying error, following the teacher's
// fmt.Errorf("doing X: %w", err) idiom.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Wrapped: err}
}

// Diagnostic is the host-facing shape of an error: span + message, used by
// parse_and_check and by load/update's diagnostic batches.
type Diagnostic struct {
	Kind    Kind       `json:"kind"`
	Message string     `json:"message"`
	Span    *span.Span `json:"span,omitempty"`
}

// ToDiagnostic converts an *Error to the wire Diagnostic shape.
func ToDiagnostic(err *Error) Diagnostic {
	return Diagnostic{Kind: err.Kind, Message: err.Message, Span: err.Span}
}
