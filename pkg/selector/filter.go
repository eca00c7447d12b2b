package selector

import (
	"regexp"
	"strings"

	"github.com/ifcpeek/ifcpeek/pkg/ifc"
)

// Filter is a parsed filter query: groups joined by `+` (union), each a
// comma-separated list of facets. Class facets within a group widen the
// candidate set; attribute facets and exclusions narrow it.
type Filter struct {
	groups []group
}

// ParseFilter parses a filter query. All validation, including regex
// compilation for `*=`/`!*=`, happens here; evaluation cannot fail.
func ParseFilter(src string) (*Filter, error) {
	return newParser(src).parseFilterQuery()
}

// Eval returns the instances matched by any group, deduplicated, in model
// file order.
func (f *Filter) Eval(m *ifc.Model) []*ifc.Instance {
	matched := make(map[int64]struct{})
	for i := range f.groups {
		f.groups[i].collect(m, matched)
	}
	out := make([]*ifc.Instance, 0, len(matched))
	for _, inst := range m.Instances() {
		if _, ok := matched[inst.ID]; ok {
			out = append(out, inst)
		}
	}
	return out
}

// group is one `,`-joined run of facets. An instance matches when it is
// of any listed class (all instances when no class facet is present), is
// of no excluded class, and passes every attribute facet.
type group struct {
	classes  []classFacet
	excludes []classFacet
	attrs    []attrFacet
}

func (g *group) collect(m *ifc.Model, matched map[int64]struct{}) {
	if len(g.classes) == 0 {
		for _, inst := range m.Instances() {
			if g.narrows(m, inst) {
				matched[inst.ID] = struct{}{}
			}
		}
		return
	}
	seen := make(map[int64]struct{})
	for _, cf := range g.classes {
		for _, inst := range m.ByType(cf.name) {
			if _, dup := seen[inst.ID]; dup {
				continue
			}
			seen[inst.ID] = struct{}{}
			if g.narrows(m, inst) {
				matched[inst.ID] = struct{}{}
			}
		}
	}
}

// narrows applies the exclusion and attribute facets; class selection has
// already happened during candidate enumeration.
func (g *group) narrows(m *ifc.Model, inst *ifc.Instance) bool {
	for _, ex := range g.excludes {
		if ex.matchesType(inst.Type) {
			return false
		}
	}
	for i := range g.attrs {
		if !g.attrs[i].matches(m, inst) {
			return false
		}
	}
	return true
}

// classFacet matches instances by type, with subtype closure when the
// name is in the bundled hierarchy and exact type equality otherwise.
type classFacet struct {
	name    string
	upper   string
	closure map[string]struct{}
}

func (c classFacet) matchesType(typ string) bool {
	if c.closure != nil {
		_, ok := c.closure[typ]
		return ok
	}
	return typ == c.upper
}

// attrFacet compares a resolved attribute path against a value.
type attrFacet struct {
	path []string
	op   tokenType
	val  facetValue
}

type facetValue struct {
	raw    string
	num    float64
	isNum  bool
	isNull bool
	re     *regexp.Regexp
}

// matches evaluates the facet. Paths that resolve to several values
// (an element with several materials) match when any value passes, and
// negative operators require all values to pass.
func (f *attrFacet) matches(m *ifc.Model, inst *ifc.Instance) bool {
	values := fieldValues(m, inst, f.path)

	switch f.op {
	case tokEQ:
		if f.val.isNull {
			return len(values) == 0
		}
		for _, v := range values {
			if f.val.equals(v) {
				return true
			}
		}
		return false
	case tokNE:
		if f.val.isNull {
			return len(values) > 0
		}
		for _, v := range values {
			if f.val.equals(v) {
				return false
			}
		}
		return true
	case tokMatch:
		for _, v := range values {
			if f.val.re.MatchString(v.str) {
				return true
			}
		}
		return false
	case tokNotMatch:
		for _, v := range values {
			if f.val.re.MatchString(v.str) {
				return false
			}
		}
		return true
	case tokGT, tokGE, tokLT, tokLE:
		for _, v := range values {
			if v.isNum && ordered(f.op, v.num, f.val.num) {
				return true
			}
		}
		return false
	}
	return false
}

// equals compares one resolved value. Numbers compare numerically;
// enumeration and boolean values compare case-insensitively; strings
// compare exactly.
func (v facetValue) equals(c fieldValue) bool {
	if v.isNum && c.isNum {
		return c.num == v.num
	}
	if c.enum {
		return strings.EqualFold(c.str, v.raw)
	}
	return c.str == v.raw
}

func ordered(op tokenType, a, b float64) bool {
	switch op {
	case tokGT:
		return a > b
	case tokGE:
		return a >= b
	case tokLT:
		return a < b
	case tokLE:
		return a <= b
	}
	return false
}
