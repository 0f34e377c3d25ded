package gcode

import (
	"fmt"

	"github.com/pkg/errors"
)

// ParseError is the single parse-exception value every fallible parameter
// read produces (§7). ReadPointer is the cursor position at which the
// failure was detected; Message distinguishes the error kind by text, as
// the spec requires ("the implementer must distinguish by message, not by
// type").
type ParseError struct {
	ReadPointer int
	Message     string
}

func (e *ParseError) Error() string {
	return e.Message
}

func newParseError(at int, format string, args ...interface{}) *ParseError {
	return &ParseError{ReadPointer: at, Message: fmt.Sprintf(format, args...)}
}

// ErrInternal is the sentinel behind every "internal" error (§7): a typed
// query called while read_pointer is not positioned by a preceding Seen.
// It is always a caller bug, never user input, so executors should
// distinguish it with errors.Is rather than by message text.
var ErrInternal = errors.New("gcode: internal error: Get* called without a successful Seen")

func internalError() error {
	return errors.WithStack(ErrInternal)
}

// wrapIOError attaches propagation context to a lower-level I/O failure
// (from the file source, or a write sink) before it reaches the caller, per
// the AMBIENT STACK error-handling note: the file source is the one place
// outside parameter reads where an underlying error needs that context.
func wrapIOError(err error, context string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, context)
}
