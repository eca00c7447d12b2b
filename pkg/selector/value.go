package selector

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ifcpeek/ifcpeek/pkg/ifc"
)

// Value is a parsed value-extraction query, evaluated per instance.
type Value struct {
	src  string
	root valueNode
}

// ParseValue parses a value-extraction query.
func ParseValue(src string) (*Value, error) {
	root, err := newParser(src).parseValueQuery()
	if err != nil {
		return nil, err
	}
	return &Value{src: src, root: root}, nil
}

// Source returns the query text the value was parsed from.
func (v *Value) Source() string {
	return v.src
}

// Eval extracts the value for one instance. Errors mean the path did not
// resolve or a function received an unusable argument; callers decide
// whether that is fatal or renders as an empty cell.
func (v *Value) Eval(m *ifc.Model, inst *ifc.Instance) (string, error) {
	return v.root.eval(m, inst)
}

type valueNode interface {
	eval(m *ifc.Model, inst *ifc.Instance) (string, error)
}

type litNode struct{ str string }

func (n litNode) eval(*ifc.Model, *ifc.Instance) (string, error) {
	return n.str, nil
}

type pathNode struct{ segs []string }

func (n pathNode) eval(m *ifc.Model, inst *ifc.Instance) (string, error) {
	values := fieldValues(m, inst, n.segs)
	if len(values) == 0 {
		return "", fmt.Errorf("no value for %s on #%d", strings.Join(n.segs, "."), inst.ID)
	}
	return values[0].str, nil
}

type callNode struct {
	fn   string
	args []valueNode
}

type arity struct{ min, max int }

func (a arity) describe() string {
	switch {
	case a.max < 0:
		return fmt.Sprintf("at least %d argument(s)", a.min)
	case a.min == a.max && a.min == 1:
		return "1 argument"
	case a.min == a.max:
		return fmt.Sprintf("%d arguments", a.min)
	}
	return fmt.Sprintf("%d to %d arguments", a.min, a.max)
}

var functions = map[string]arity{
	"upper":  {min: 1, max: 1},
	"lower":  {min: 1, max: 1},
	"title":  {min: 1, max: 1},
	"concat": {min: 1, max: -1},
	"round":  {min: 2, max: 2},
	"int":    {min: 1, max: 1},
	"number": {min: 1, max: 3},
}

var titleCaser = cases.Title(language.English)

func (n callNode) eval(m *ifc.Model, inst *ifc.Instance) (string, error) {
	args := make([]string, len(n.args))
	for i, a := range n.args {
		s, err := a.eval(m, inst)
		if err != nil {
			return "", err
		}
		args[i] = s
	}

	switch n.fn {
	case "upper":
		return strings.ToUpper(args[0]), nil
	case "lower":
		return strings.ToLower(args[0]), nil
	case "title":
		return titleCaser.String(args[0]), nil
	case "concat":
		return strings.Join(args, ""), nil
	case "round":
		v, err := numArg(n.fn, args[0])
		if err != nil {
			return "", err
		}
		prec, err := numArg(n.fn, args[1])
		if err != nil {
			return "", err
		}
		if prec <= 0 {
			return "", fmt.Errorf("round(): precision must be positive")
		}
		return formatRounded(math.Round(v/prec)*prec, args[1]), nil
	case "int":
		v, err := numArg(n.fn, args[0])
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(int64(v), 10), nil
	case "number":
		v, err := numArg(n.fn, args[0])
		if err != nil {
			return "", err
		}
		dsep, tsep := ".", ""
		if len(args) > 1 {
			dsep = args[1]
		}
		if len(args) > 2 {
			tsep = args[2]
		}
		return formatNumber(v, dsep, tsep), nil
	}
	return "", fmt.Errorf("unknown function %q", n.fn)
}

func numArg(fn, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%s(): %q is not numeric", fn, s)
	}
	return v, nil
}

// formatRounded renders a rounded value with the decimal places implied
// by the precision literal, so round(2.28, 0.1) prints 2.3 rather than a
// binary-noise tail.
func formatRounded(v float64, precLit string) string {
	decimals := 0
	if i := strings.IndexByte(precLit, '.'); i >= 0 {
		decimals = len(precLit) - i - 1
	}
	s := strconv.FormatFloat(v, 'f', decimals, 64)
	if decimals > 0 {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" || s == "" {
		s = "0"
	}
	return s
}

func formatNumber(v float64, dsep, tsep string) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i+1:]
	}
	if tsep != "" && len(intPart) > 3 {
		var b strings.Builder
		lead := len(intPart) % 3
		if lead > 0 {
			b.WriteString(intPart[:lead])
		}
		for i := lead; i < len(intPart); i += 3 {
			if b.Len() > 0 {
				b.WriteString(tsep)
			}
			b.WriteString(intPart[i : i+3])
		}
		intPart = b.String()
	}
	out := intPart
	if frac != "" {
		out += dsep + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}
