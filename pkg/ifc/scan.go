package ifc

// record is one semicolon-terminated statement of a STEP file, with the
// terminator stripped and surrounding whitespace trimmed.
type record struct {
	text string
	line int
}

// scanner splits a STEP file into records. It understands quoted strings
// (with '' doubling), binary literals and /* */ comments, so a ; inside
// any of those never ends a record. Comments are dropped; strings keep
// their delimiters for the record parser.
type scanner struct {
	src  []byte
	pos  int
	line int
}

func newScanner(src []byte) *scanner {
	return &scanner{src: src, line: 1}
}

// next returns the next record. ok is false at end of input.
func (s *scanner) next() (rec record, ok bool, err error) {
	if err := s.skipBlank(); err != nil {
		return record{}, false, err
	}
	if s.pos >= len(s.src) {
		return record{}, false, nil
	}

	start := s.pos
	startLine := s.line
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch c {
		case ';':
			text := string(s.src[start:s.pos])
			s.pos++
			return record{text: trimRight(text), line: startLine}, true, nil
		case '\'', '"':
			if err := s.skipQuoted(c); err != nil {
				return record{}, false, err
			}
		case '/':
			if s.pos+1 < len(s.src) && s.src[s.pos+1] == '*' {
				// Comments inside a record would land in the record text;
				// they are rare enough there that cutting the record short
				// is not worth the complexity. Reject loudly instead.
				return record{}, false, parseErrorf(s.line, 0, "comment inside a record is not supported")
			}
			s.pos++
		case '\n':
			s.line++
			s.pos++
		default:
			s.pos++
		}
	}
	return record{}, false, parseErrorf(startLine, 0, "unterminated record (missing ';')")
}

// skipBlank consumes whitespace and comments between records.
func (s *scanner) skipBlank() error {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == '\n':
			s.line++
			s.pos++
		case c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v':
			s.pos++
		case c == '/' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '*':
			startLine := s.line
			s.pos += 2
			for {
				if s.pos+1 >= len(s.src) {
					return parseErrorf(startLine, 0, "unterminated comment")
				}
				if s.src[s.pos] == '*' && s.src[s.pos+1] == '/' {
					s.pos += 2
					break
				}
				if s.src[s.pos] == '\n' {
					s.line++
				}
				s.pos++
			}
		default:
			return nil
		}
	}
	return nil
}

// skipQuoted consumes a quoted run starting at the current delimiter.
// Apostrophe strings double the delimiter to embed it.
func (s *scanner) skipQuoted(delim byte) error {
	startLine := s.line
	s.pos++
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == '\n' {
			s.line++
		}
		if c == delim {
			if delim == '\'' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '\'' {
				s.pos += 2
				continue
			}
			s.pos++
			return nil
		}
		s.pos++
	}
	return parseErrorf(startLine, 0, "unterminated string literal")
}

func trimRight(s string) string {
	end := len(s)
	for end > 0 {
		switch s[end-1] {
		case ' ', '\t', '\r', '\n', '\f', '\v':
			end--
		default:
			return s[:end]
		}
	}
	return s[:end]
}
