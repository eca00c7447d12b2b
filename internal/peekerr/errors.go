// Package peekerr defines the closed set of error kinds the shell
// distinguishes. Failures carry a kind and a message safe to print to the
// user; callers branch on the kind, never on concrete cause types.
package peekerr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	// KindUnknown marks errors that did not originate in this program's
	// taxonomy. They are always fatal.
	KindUnknown Kind = iota

	// KindConfiguration covers path resolution and directory creation
	// failures. Fatal at startup.
	KindConfiguration

	// KindFileNotFound means the model path does not exist or is not a
	// regular readable file. Fatal at startup.
	KindFileNotFound

	// KindInvalidModel means the path exists but its content is not a
	// usable IFC model. Fatal at startup.
	KindInvalidModel

	// KindQuery covers invalid or failing queries. Recoverable: the
	// session prints the message and keeps running.
	KindQuery
)

// String returns a short lowercase label for the kind.
func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindFileNotFound:
		return "file not found"
	case KindInvalidModel:
		return "invalid model"
	case KindQuery:
		return "query"
	default:
		return "unknown"
	}
}

// Error is a classified failure. Message is always printable verbatim;
// Err optionally carries the underlying cause for wrapping.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies an existing error. The formatted message is prefixed to
// the cause's message, and the cause remains reachable via errors.Unwrap.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	if err != nil {
		msg = msg + ": " + err.Error()
	}
	return &Error{Kind: kind, Message: msg, Err: err}
}

// Classify tags an existing error with a kind, keeping its message
// untouched. Used where the cause's own text is already the right thing
// to show the user.
func Classify(kind Kind, err error) *Error {
	return &Error{Kind: kind, Message: err.Error(), Err: err}
}

// KindOf extracts the kind from an error chain. Errors that do not carry a
// taxonomy kind report KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsRecoverable reports whether the session loop may continue after err.
// Only query failures are recoverable; everything else tears the session
// down.
func IsRecoverable(err error) bool {
	return KindOf(err) == KindQuery
}
