// Package jterr defines the failure taxonomy for json-tree.
//
// Every error returned by the arena, the object map, the parser, or the CLI
// maps to exactly one FailureClass, which determines the process exit code
// and lets tests verify failure classification, not just "did it fail."
package jterr

import (
	"fmt"
	"strings"
)

// FailureClass is a stable failure category.
type FailureClass string

const (
	// EarlyEOF: the stream ended where the grammar required more bytes.
	EarlyEOF FailureClass = "EARLY_EOF"
	// UnexpectedChar: a byte inconsistent with the current production.
	UnexpectedChar FailureClass = "UNEXPECTED_CHAR"
	// DuplicateKey: an object member name was inserted twice.
	DuplicateKey FailureClass = "DUPLICATE_KEY"
	// AllocFailure: the arena's configured byte limit was exceeded.
	AllocFailure FailureClass = "ALLOC_FAILURE"
	// BoundExceeded: nesting depth exceeded the configured maximum.
	BoundExceeded FailureClass = "BOUND_EXCEEDED"
	// CLIUsage: bad command-line arguments.
	CLIUsage FailureClass = "CLI_USAGE"
	// InternalIO: the input or output channel itself failed.
	InternalIO FailureClass = "INTERNAL_IO"
)

// ExitCode returns the process exit code for this failure class.
//
// EarlyEOF and UnexpectedChar keep their distinguished codes (200, 201);
// everything else collapses to the generic codes.
func (fc FailureClass) ExitCode() int {
	switch fc {
	case EarlyEOF:
		return 200
	case UnexpectedChar:
		return 201
	case CLIUsage:
		return 2
	case InternalIO:
		return 10
	default:
		return 1
	}
}

// Error is the structured error type for all json-tree failures.
//
// Window and WindowStart carry the diagnostic context captured at the point
// of failure: a slice of the input surrounding Offset, locally owned by this
// error value. They are advisory only and never affect control flow.
type Error struct {
	Class   FailureClass
	Offset  int64 // byte offset in the input, -1 if not applicable
	Message string
	Cause   error

	Window      []byte
	WindowStart int64
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("jterr: %s at byte %d: %s", e.Class, e.Offset, e.Message)
	}
	return fmt.Sprintf("jterr: %s: %s", e.Class, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given class and message.
func New(class FailureClass, offset int64, message string) *Error {
	return &Error{Class: class, Offset: offset, Message: message}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(class FailureClass, offset int64, message string, cause error) *Error {
	return &Error{Class: class, Offset: offset, Message: message, Cause: cause}
}

// RenderContext renders the captured context window as two lines: the window
// bytes with \n, \r and \t expanded to two-character escapes, and a caret
// aligned under the byte at Offset. Returns "" when no window was captured.
//
//	context:
//	\n\t\t{ "foo" "bar" },\n\t
//	             ^
func (e *Error) RenderContext() string {
	if e.Window == nil {
		return ""
	}

	var rendered strings.Builder
	caretCol := -1
	for i, b := range e.Window {
		if int64(i)+e.WindowStart == e.Offset {
			caretCol = rendered.Len()
		}
		switch b {
		case '\n':
			rendered.WriteString(`\n`)
		case '\r':
			rendered.WriteString(`\r`)
		case '\t':
			rendered.WriteString(`\t`)
		default:
			rendered.WriteByte(b)
		}
	}
	// Failure at EOF: the caret points one past the last window byte.
	if caretCol < 0 {
		caretCol = rendered.Len()
	}

	var out strings.Builder
	out.WriteString(rendered.String())
	out.WriteByte('\n')
	for i := 0; i < caretCol; i++ {
		out.WriteByte(' ')
	}
	out.WriteByte('^')
	return out.String()
}
