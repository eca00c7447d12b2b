package selector

import "fmt"

type tokenType int

const (
	tokEOF tokenType = iota
	tokIllegal

	// Literals. Words cover identifiers, class names and unquoted values;
	// numbers keep their literal text; strings are stored unquoted.
	tokWord
	tokNumber
	tokString

	// Punctuation.
	tokComma
	tokPlus
	tokBang
	tokDot
	tokLParen
	tokRParen

	// Comparison operators.
	tokEQ       // =
	tokNE       // !=
	tokMatch    // *=
	tokNotMatch // !*=
	tokGT       // >
	tokGE       // >=
	tokLT       // <
	tokLE       // <=
)

var tokenNames = map[tokenType]string{
	tokEOF:      "end of query",
	tokIllegal:  "illegal token",
	tokWord:     "word",
	tokNumber:   "number",
	tokString:   "string",
	tokComma:    "','",
	tokPlus:     "'+'",
	tokBang:     "'!'",
	tokDot:      "'.'",
	tokLParen:   "'('",
	tokRParen:   "')'",
	tokEQ:       "'='",
	tokNE:       "'!='",
	tokMatch:    "'*='",
	tokNotMatch: "'!*='",
	tokGT:       "'>'",
	tokGE:       "'>='",
	tokLT:       "'<'",
	tokLE:       "'<='",
}

func (t tokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// token is one lexeme of a query. Pos is the byte offset of the first
// character, used for error positions.
type token struct {
	typ tokenType
	lit string
	pos int
}

func (t token) isComparison() bool {
	switch t.typ {
	case tokEQ, tokNE, tokMatch, tokNotMatch, tokGT, tokGE, tokLT, tokLE:
		return true
	}
	return false
}
