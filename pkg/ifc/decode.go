package ifc

import (
	"fmt"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/encoding/charmap"
)

// STEP string literals are ASCII with escape directives for everything
// else (ISO 10303-21 §6.4.3): \\ for a backslash, \S\c for the upper half
// of the current code page, \Px\ to switch the code page, \X\hh\ for one
// ISO 8859-1 byte, and \X2\..\X0\ / \X4\..\X0\ for UTF-16BE and UTF-32BE
// hex runs. Quote doubling ('') is handled by the record parser before
// these are decoded.

// codePages maps the \Px\ directive letter to its ISO 8859 part.
var codePages = map[byte]*charmap.Charmap{
	'A': charmap.ISO8859_1,
	'B': charmap.ISO8859_2,
	'C': charmap.ISO8859_3,
	'D': charmap.ISO8859_4,
	'E': charmap.ISO8859_5,
	'F': charmap.ISO8859_6,
	'G': charmap.ISO8859_7,
	'H': charmap.ISO8859_8,
	'I': charmap.ISO8859_9,
}

// decodeString expands the escape directives in a raw string body.
// Malformed directives fail rather than pass through silently: models in
// the wild that use them at all use them correctly, and a copied-through
// directive would corrupt query output.
func decodeString(raw string) (string, error) {
	if !strings.ContainsRune(raw, '\\') {
		return raw, nil
	}

	var b strings.Builder
	b.Grow(len(raw))
	page := charmap.ISO8859_1

	for i := 0; i < len(raw); {
		c := raw[i]
		if c != '\\' {
			b.WriteByte(c)
			i++
			continue
		}
		if i+1 >= len(raw) {
			return "", fmt.Errorf("dangling backslash in string literal")
		}
		switch raw[i+1] {
		case '\\':
			b.WriteByte('\\')
			i += 2
		case 'S':
			// \S\c
			if i+3 >= len(raw) || raw[i+2] != '\\' {
				return "", fmt.Errorf("malformed \\S\\ directive")
			}
			b.WriteRune(page.DecodeByte(raw[i+3] + 0x80))
			i += 4
		case 'P':
			// \Px\
			if i+3 >= len(raw) || raw[i+3] != '\\' {
				return "", fmt.Errorf("malformed \\P directive")
			}
			p, ok := codePages[raw[i+2]]
			if !ok {
				return "", fmt.Errorf("unknown code page %q", raw[i+2])
			}
			page = p
			i += 4
		case 'X':
			n, err := decodeHexDirective(raw[i:], &b)
			if err != nil {
				return "", err
			}
			i += n
		default:
			return "", fmt.Errorf("unknown escape \\%c", raw[i+1])
		}
	}
	return b.String(), nil
}

// decodeHexDirective consumes one \X\hh\, \X2\..\X0\ or \X4\..\X0\
// directive at the start of s and returns the number of bytes consumed.
func decodeHexDirective(s string, b *strings.Builder) (int, error) {
	if len(s) < 3 {
		return 0, fmt.Errorf("truncated \\X directive")
	}
	switch s[2] {
	case '\\':
		// \X\hh\
		if len(s) < 6 || s[5] != '\\' {
			return 0, fmt.Errorf("malformed \\X\\ directive")
		}
		v, err := hexByte(s[3], s[4])
		if err != nil {
			return 0, err
		}
		b.WriteRune(charmap.ISO8859_1.DecodeByte(v))
		return 6, nil
	case '2', '4':
		width := 4
		if s[2] == '4' {
			width = 8
		}
		if len(s) < 4 || s[3] != '\\' {
			return 0, fmt.Errorf("malformed \\X%c\\ directive", s[2])
		}
		end := strings.Index(s[4:], `\X0\`)
		if end < 0 {
			return 0, fmt.Errorf("unterminated \\X%c\\ directive", s[2])
		}
		hex := s[4 : 4+end]
		if len(hex)%width != 0 {
			return 0, fmt.Errorf("odd-length \\X%c\\ hex run", s[2])
		}
		if width == 4 {
			units := make([]uint16, 0, len(hex)/4)
			for j := 0; j < len(hex); j += 4 {
				v, err := hexUint(hex[j : j+4])
				if err != nil {
					return 0, err
				}
				units = append(units, uint16(v))
			}
			for _, r := range utf16.Decode(units) {
				b.WriteRune(r)
			}
		} else {
			for j := 0; j < len(hex); j += 8 {
				v, err := hexUint(hex[j : j+8])
				if err != nil {
					return 0, err
				}
				b.WriteRune(rune(v))
			}
		}
		return 4 + end + 4, nil
	}
	return 0, fmt.Errorf("malformed \\X directive")
}

func hexByte(hi, lo byte) (byte, error) {
	h, err := hexVal(hi)
	if err != nil {
		return 0, err
	}
	l, err := hexVal(lo)
	if err != nil {
		return 0, err
	}
	return h<<4 | l, nil
}

func hexUint(s string) (uint32, error) {
	var v uint32
	for i := 0; i < len(s); i++ {
		d, err := hexVal(s[i])
		if err != nil {
			return 0, err
		}
		v = v<<4 | uint32(d)
	}
	return v, nil
}

func hexVal(c byte) (byte, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	}
	return 0, fmt.Errorf("invalid hex digit %q", c)
}

// encodeString renders a decoded string back into STEP escape form:
// quotes doubled, backslashes doubled, control bytes as \X\hh\ and
// everything past ASCII as a UTF-16BE \X2\..\X0\ run.
func encodeString(s string) string {
	plain := true
	for i := 0; i < len(s); i++ {
		if c := s[i]; c < 0x20 || c > 0x7E || c == '\'' || c == '\\' {
			plain = false
			break
		}
	}
	if plain {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)
	runes := []rune(s)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case r == '\'':
			b.WriteString("''")
			i++
		case r == '\\':
			b.WriteString(`\\`)
			i++
		case r >= 0x20 && r <= 0x7E:
			b.WriteRune(r)
			i++
		case r < 0x20:
			fmt.Fprintf(&b, `\X\%02X\`, r)
			i++
		default:
			j := i
			for j < len(runes) && runes[j] > 0x7E {
				j++
			}
			b.WriteString(`\X2\`)
			for _, u := range utf16.Encode(runes[i:j]) {
				fmt.Fprintf(&b, "%04X", u)
			}
			b.WriteString(`\X0\`)
			i = j
		}
	}
	return b.String()
}
