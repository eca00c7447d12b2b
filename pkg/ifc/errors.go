package ifc

import "fmt"

// ParseError describes a failure to parse a STEP physical file. Line is
// the 1-based line on which the offending record starts; ID is the entity
// id when one had been read, 0 otherwise.
type ParseError struct {
	Line    int
	ID      int64
	Message string
}

func (e *ParseError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("line %d: #%d: %s", e.Line, e.ID, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

func parseErrorf(line int, id int64, format string, args ...any) *ParseError {
	return &ParseError{Line: line, ID: id, Message: fmt.Sprintf(format, args...)}
}
