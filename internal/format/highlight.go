package format

import (
	"regexp"
	"strings"

	"github.com/muesli/termenv"
)

// Highlighting always emits plain 4-bit ANSI regardless of terminal
// depth; the palette is the classic STEP viewer one.
const highlightProfile = termenv.ANSI

var (
	colorEntityID   = termenv.ANSIBrightBlue
	colorEntityType = termenv.ANSIBrightGreen
	colorString     = termenv.ANSIBrightYellow
	colorGUID       = termenv.ANSIBrightCyan
	colorNumber     = termenv.ANSIBrightMagenta
	colorOperator   = termenv.ANSIBrightBlack
)

var (
	stepLine       = regexp.MustCompile(`^(#\d+)=([A-Z][A-Za-z0-9_]*)\((.*)\);?\s*$`)
	uuidGUID       = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
	compressedGUID = regexp.MustCompile(`^[0-9a-zA-Z_$]{22}`)
)

// Highlighter colors SPF result lines: entity ids blue, types green,
// strings yellow, GUID strings cyan, numbers magenta, punctuation gray.
// When disabled every method returns its input unchanged.
type Highlighter struct {
	enabled bool
}

func NewHighlighter(enabled bool) *Highlighter {
	return &Highlighter{enabled: enabled}
}

// Enabled reports whether the highlighter emits escape sequences.
func (h *Highlighter) Enabled() bool {
	return h.enabled
}

// Line highlights one record of the shape #id=TYPE(params);. Lines that
// do not look like SPF records pass through untouched; a trailing
// newline survives.
func (h *Highlighter) Line(line string) string {
	if !h.enabled || strings.TrimSpace(line) == "" {
		return line
	}
	m := stepLine.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return line
	}

	var b strings.Builder
	b.WriteString(h.paint(m[1], colorEntityID))
	b.WriteString(h.paint("=", colorOperator))
	b.WriteString(h.paint(m[2], colorEntityType))
	b.WriteByte('(')
	b.WriteString(h.params(m[3]))
	b.WriteString(");")
	if strings.HasSuffix(line, "\n") {
		b.WriteByte('\n')
	}
	return b.String()
}

// params scans a parameter list byte-wise and colors quoted strings,
// numbers, entity references and punctuation. Anything else passes
// through, so multibyte text inside already-decoded strings is safe.
func (h *Highlighter) params(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '\'':
			j := i + 1
			for j < len(s) {
				if s[j] == '\'' {
					if j+1 < len(s) && s[j+1] == '\'' {
						j += 2
						continue
					}
					j++
					break
				}
				j++
			}
			lit := s[i:j]
			if isGUIDString(lit) {
				b.WriteString(h.paint(lit, colorGUID))
			} else {
				b.WriteString(h.paint(lit, colorString))
			}
			i = j
		case isDigit(c) || (c == '-' && i+1 < len(s) && isDigit(s[i+1])):
			j := i
			if c == '-' {
				j++
			}
			for j < len(s) && (isDigit(s[j]) || strings.IndexByte(".eE+-", s[j]) >= 0) {
				j++
			}
			b.WriteString(h.paint(s[i:j], colorNumber))
			i = j
		case strings.IndexByte("=$,();", c) >= 0:
			b.WriteString(h.paint(string(c), colorOperator))
			i++
		case c == '#':
			j := i + 1
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			b.WriteString(h.paint(s[i:j], colorEntityID))
			i = j
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// isGUIDString reports whether a quoted literal holds a GUID: either the
// hyphenated uuid form or the 22-character compressed IFC form.
func isGUIDString(lit string) bool {
	content := strings.Trim(lit, "'")
	return uuidGUID.MatchString(content) || compressedGUID.MatchString(content)
}

func (h *Highlighter) paint(s string, c termenv.Color) string {
	if !h.enabled {
		return s
	}
	return highlightProfile.String(s).Foreground(c).String()
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
