package ifc

import (
	"strconv"
	"strings"
)

// ParamKind discriminates the value held by a Param.
type ParamKind uint8

const (
	// ParamUnset is the $ placeholder.
	ParamUnset ParamKind = iota
	// ParamDerived is the * placeholder (value derived from a supertype).
	ParamDerived
	// ParamRef is an entity reference (#N).
	ParamRef
	// ParamString is a quoted string, stored decoded.
	ParamString
	// ParamInteger is a whole-number literal.
	ParamInteger
	// ParamReal is a floating-point literal.
	ParamReal
	// ParamEnum is a .TOKEN. enumeration value (including .T./.F./.U.).
	ParamEnum
	// ParamBinary is a "..." binary literal, stored as its hex text.
	ParamBinary
	// ParamList is a parenthesized aggregate.
	ParamList
	// ParamTyped is a wrapped simple type, e.g. IFCLABEL('x').
	ParamTyped
)

// Param is one attribute value of an instance. Exactly the fields implied
// by Kind are meaningful: Ref for references, Str for strings, enum
// tokens, numeric literals, binary text and typed names, Num for parsed
// numbers, List for aggregates and typed arguments.
type Param struct {
	Kind ParamKind
	Ref  int64
	Str  string
	Num  float64
	List []Param
}

// IsSet reports whether the parameter carries a value ($ and * do not).
func (p Param) IsSet() bool {
	return p.Kind != ParamUnset && p.Kind != ParamDerived
}

// Underlying unwraps single-argument typed wrappers, so that
// IFCLABEL('2HR') behaves as the string '2HR' when its value is read.
func (p Param) Underlying() Param {
	for p.Kind == ParamTyped && len(p.List) == 1 {
		p = p.List[0]
	}
	return p
}

// Bool interprets the .T./.F. enumeration values.
func (p Param) Bool() (value, ok bool) {
	p = p.Underlying()
	if p.Kind != ParamEnum {
		return false, false
	}
	switch p.Str {
	case "T":
		return true, true
	case "F":
		return false, true
	}
	return false, false
}

// Float returns the numeric value of integer and real parameters.
func (p Param) Float() (float64, bool) {
	p = p.Underlying()
	if p.Kind == ParamInteger || p.Kind == ParamReal {
		return p.Num, true
	}
	return 0, false
}

// Display renders the parameter for user-facing value output. Unset and
// derived values render empty; booleans render True/False; references
// render as #N; aggregates render their elements comma-separated in
// parentheses.
func (p Param) Display() string {
	p = p.Underlying()
	switch p.Kind {
	case ParamUnset, ParamDerived:
		return ""
	case ParamString, ParamBinary:
		return p.Str
	case ParamInteger, ParamReal:
		return p.Str
	case ParamEnum:
		switch p.Str {
		case "T":
			return "True"
		case "F":
			return "False"
		}
		return p.Str
	case ParamRef:
		return "#" + strconv.FormatInt(p.Ref, 10)
	case ParamList:
		var b strings.Builder
		b.WriteByte('(')
		for i, el := range p.List {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(el.Display())
		}
		b.WriteByte(')')
		return b.String()
	}
	return ""
}

// spf renders the parameter in STEP physical-file form.
func (p Param) spf(b *strings.Builder) {
	switch p.Kind {
	case ParamUnset:
		b.WriteByte('$')
	case ParamDerived:
		b.WriteByte('*')
	case ParamRef:
		b.WriteByte('#')
		b.WriteString(strconv.FormatInt(p.Ref, 10))
	case ParamString:
		b.WriteByte('\'')
		b.WriteString(encodeString(p.Str))
		b.WriteByte('\'')
	case ParamInteger, ParamReal:
		if p.Str != "" {
			b.WriteString(p.Str)
		} else {
			b.WriteString(formatReal(p.Num, p.Kind == ParamInteger))
		}
	case ParamEnum:
		b.WriteByte('.')
		b.WriteString(p.Str)
		b.WriteByte('.')
	case ParamBinary:
		b.WriteByte('"')
		b.WriteString(p.Str)
		b.WriteByte('"')
	case ParamList:
		b.WriteByte('(')
		for i, el := range p.List {
			if i > 0 {
				b.WriteByte(',')
			}
			el.spf(b)
		}
		b.WriteByte(')')
	case ParamTyped:
		b.WriteString(p.Str)
		b.WriteByte('(')
		for i, el := range p.List {
			if i > 0 {
				b.WriteByte(',')
			}
			el.spf(b)
		}
		b.WriteByte(')')
	}
}

// formatReal renders a number without a source literal. STEP requires a
// decimal point in real literals.
func formatReal(v float64, integer bool) string {
	if integer {
		return strconv.FormatInt(int64(v), 10)
	}
	s := strconv.FormatFloat(v, 'G', -1, 64)
	if !strings.ContainsAny(s, ".E") {
		s += "."
	}
	return s
}
