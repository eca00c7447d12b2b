package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/ifcpeek/ifcpeek/internal/peekerr"
)

const ruleWidth = 60

// QueryErrorBox prints the framed report the interactive shell shows on
// stderr when a query fails.
func QueryErrorBox(w io.Writer, query string, err error) {
	rule := strings.Repeat("=", ruleWidth)
	_, _ = fmt.Fprintln(w, rule)
	_, _ = fmt.Fprintln(w, "IFC QUERY EXECUTION ERROR")
	_, _ = fmt.Fprintln(w, rule)
	_, _ = fmt.Fprintf(w, "Query: %s\n", query)
	_, _ = fmt.Fprintf(w, "Exception: %s: %v\n", exceptionLabel(err), err)
	_, _ = fmt.Fprintln(w, rule)
}

// CombinedErrorBox is the variant for failed combined filter plus value
// extraction queries.
func CombinedErrorBox(w io.Writer, filterQuery string, valueQueries []string, err error) {
	rule := strings.Repeat("=", ruleWidth)
	_, _ = fmt.Fprintln(w, rule)
	_, _ = fmt.Fprintln(w, "COMBINED QUERY EXECUTION ERROR")
	_, _ = fmt.Fprintln(w, rule)
	_, _ = fmt.Fprintf(w, "Filter query: %s\n", filterQuery)
	_, _ = fmt.Fprintf(w, "Value queries: %s\n", strings.Join(valueQueries, "; "))
	_, _ = fmt.Fprintf(w, "Exception: %s: %v\n", exceptionLabel(err), err)
	_, _ = fmt.Fprintln(w, rule)
}

// PlainError is the single-line form used when output is piped.
func PlainError(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
}

// exceptionLabel maps an error to the taxonomy name shown in reports.
func exceptionLabel(err error) string {
	switch peekerr.KindOf(err) {
	case peekerr.KindConfiguration:
		return "ConfigurationError"
	case peekerr.KindFileNotFound:
		return "FileNotFoundError"
	case peekerr.KindInvalidModel:
		return "InvalidIfcFileError"
	case peekerr.KindQuery:
		return "QueryExecutionError"
	default:
		return "Error"
	}
}
