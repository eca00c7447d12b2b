package cache

import (
	"sort"

	"github.com/ifcpeek/ifcpeek/pkg/ifc"
)

// ClassCount is one entity type and its instance count.
type ClassCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Index is the completion and statistics payload derived from a loaded
// model: what the completer offers, what /classes and /info print and
// what doctor inspects. It is stored as one JSON row per file version.
type Index struct {
	Schema      string              `json:"schema"`
	EntityCount int                 `json:"entity_count"`
	Classes     []ClassCount        `json:"classes"`
	Attributes  map[string][]string `json:"attributes,omitempty"`
	PsetNames   []string            `json:"pset_names,omitempty"`
	PsetProps   map[string][]string `json:"pset_props,omitempty"`
}

// ClassNames returns the class names in index order (sorted).
func (ix *Index) ClassNames() []string {
	out := make([]string, len(ix.Classes))
	for i, c := range ix.Classes {
		out[i] = c.Name
	}
	return out
}

// BuildIndex derives the index from a parsed model.
func BuildIndex(m *ifc.Model) *Index {
	idx := &Index{
		Schema:      m.Schema(),
		EntityCount: m.Len(),
		Attributes:  make(map[string][]string),
		PsetProps:   make(map[string][]string),
	}

	counts := m.TypeCounts()
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		idx.Classes = append(idx.Classes, ClassCount{Name: name, Count: counts[name]})
		if attrs := ifc.AttrNames(name); attrs != nil {
			idx.Attributes[name] = attrs
		}
	}

	addSet := func(inst *ifc.Instance, membersAttr string) {
		name, ok := inst.Attr("Name")
		if !ok || name.Str == "" {
			return
		}
		members, ok := inst.Attr(membersAttr)
		if !ok || members.Kind != ifc.ParamList {
			return
		}
		var props []string
		for _, ref := range members.List {
			if ref.Kind != ifc.ParamRef {
				continue
			}
			member, ok := m.Get(ref.Ref)
			if !ok {
				continue
			}
			if mname, ok := member.Attr("Name"); ok && mname.Str != "" {
				props = append(props, mname.Str)
			}
		}
		sort.Strings(props)
		if existing, ok := idx.PsetProps[name.Str]; ok {
			idx.PsetProps[name.Str] = mergeSorted(existing, props)
			return
		}
		idx.PsetNames = append(idx.PsetNames, name.Str)
		idx.PsetProps[name.Str] = props
	}

	for _, ps := range m.ByTypeExact("IfcPropertySet") {
		addSet(ps, "HasProperties")
	}
	for _, qs := range m.ByTypeExact("IfcElementQuantity") {
		addSet(qs, "Quantities")
	}
	sort.Strings(idx.PsetNames)

	return idx
}

// mergeSorted unions two sorted string slices without duplicates. Models
// commonly repeat a property set name across many elements.
func mergeSorted(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		default:
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}
