package selector

import "fmt"

// ParseError reports a malformed query with the 1-based column of the
// offending character.
type ParseError struct {
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at column %d: %s", e.Column, e.Message)
}

func parseErrorf(pos int, format string, args ...any) *ParseError {
	return &ParseError{Column: pos + 1, Message: fmt.Sprintf(format, args...)}
}
