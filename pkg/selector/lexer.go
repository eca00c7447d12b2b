package selector

// lexer tokenizes a query string. Queries are single lines, so positions
// are byte offsets only.
type lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
}

func newLexer(input string) *lexer {
	l := &lexer{input: input}
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
}

// peekChar returns the next character without advancing.
func (l *lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *lexer) peekChar2() byte {
	if l.readPos+1 >= len(l.input) {
		return 0
	}
	return l.input[l.readPos+1]
}

// next returns the next token.
func (l *lexer) next() token {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
		l.readChar()
	}
	pos := l.pos

	switch {
	case l.ch == 0:
		return token{typ: tokEOF, pos: pos}
	case l.ch == ',':
		l.readChar()
		return token{typ: tokComma, lit: ",", pos: pos}
	case l.ch == '.':
		l.readChar()
		return token{typ: tokDot, lit: ".", pos: pos}
	case l.ch == '(':
		l.readChar()
		return token{typ: tokLParen, lit: "(", pos: pos}
	case l.ch == ')':
		l.readChar()
		return token{typ: tokRParen, lit: ")", pos: pos}
	case l.ch == '=':
		l.readChar()
		return token{typ: tokEQ, lit: "=", pos: pos}
	case l.ch == '>':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return token{typ: tokGE, lit: ">=", pos: pos}
		}
		return token{typ: tokGT, lit: ">", pos: pos}
	case l.ch == '<':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return token{typ: tokLE, lit: "<=", pos: pos}
		}
		return token{typ: tokLT, lit: "<", pos: pos}
	case l.ch == '*':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return token{typ: tokMatch, lit: "*=", pos: pos}
		}
		l.readChar()
		return token{typ: tokIllegal, lit: "unexpected '*'", pos: pos}
	case l.ch == '!':
		switch {
		case l.peekChar() == '=':
			l.readChar()
			l.readChar()
			return token{typ: tokNE, lit: "!=", pos: pos}
		case l.peekChar() == '*' && l.peekChar2() == '=':
			l.readChar()
			l.readChar()
			l.readChar()
			return token{typ: tokNotMatch, lit: "!*=", pos: pos}
		}
		l.readChar()
		return token{typ: tokBang, lit: "!", pos: pos}
	case l.ch == '+':
		// A plus directly before a digit is a signed number; anywhere
		// else it joins groups.
		if isDigit(l.peekChar()) {
			return l.scanNumberOrWord()
		}
		l.readChar()
		return token{typ: tokPlus, lit: "+", pos: pos}
	case l.ch == '-':
		if isDigit(l.peekChar()) {
			return l.scanNumberOrWord()
		}
		l.readChar()
		return token{typ: tokIllegal, lit: "unexpected '-'", pos: pos}
	case l.ch == '"' || l.ch == '\'':
		return l.scanString()
	case isDigit(l.ch):
		return l.scanNumberOrWord()
	case isWordStart(l.ch):
		return l.scanWord()
	}
	tok := token{typ: tokIllegal, lit: "unexpected character '" + string(l.ch) + "'", pos: pos}
	l.readChar()
	return tok
}

// scanString reads a quoted value. The delimiter is doubled to embed it.
func (l *lexer) scanString() token {
	pos := l.pos
	delim := l.ch
	l.readChar()
	var out []byte
	for {
		if l.ch == 0 {
			return token{typ: tokIllegal, lit: "unterminated string", pos: pos}
		}
		if l.ch == delim {
			if l.peekChar() == delim {
				out = append(out, delim)
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar()
			break
		}
		out = append(out, l.ch)
		l.readChar()
	}
	return token{typ: tokString, lit: string(out), pos: pos}
}

// scanWord reads an identifier, class name or unquoted value. Dollar
// signs appear in unquoted GUIDs.
func (l *lexer) scanWord() token {
	pos := l.pos
	for isWordChar(l.ch) {
		l.readChar()
	}
	return token{typ: tokWord, lit: l.input[pos:l.pos], pos: pos}
}

// scanNumberOrWord reads a numeric literal, degrading to a word when
// trailing word characters show the digits were the start of an unquoted
// value such as a GUID.
func (l *lexer) scanNumberOrWord() token {
	pos := l.pos
	if l.ch == '+' || l.ch == '-' {
		l.readChar()
	}
	fraction := false
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		fraction = true
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		if isDigit(l.peekChar()) || ((l.peekChar() == '+' || l.peekChar() == '-') && isDigit(l.peekChar2())) {
			fraction = true
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}
	if isWordChar(l.ch) {
		if fraction {
			return token{typ: tokIllegal, lit: "invalid number literal", pos: pos}
		}
		for isWordChar(l.ch) {
			l.readChar()
		}
		return token{typ: tokWord, lit: l.input[pos:l.pos], pos: pos}
	}
	return token{typ: tokNumber, lit: l.input[pos:l.pos], pos: pos}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isWordStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_' || c == '$'
}

func isWordChar(c byte) bool {
	return isWordStart(c) || isDigit(c)
}
