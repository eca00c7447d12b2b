// Package ifc parses ISO 10303-21 "STEP physical file" building models
// (IFC) into an immutable, queryable in-memory form. It covers the data
// exchange structure and the slice of the IFC schema a query shell needs:
// entity instances with positional attributes, name resolution for common
// types, subtype matching over the core hierarchy, and the relationship
// lookups (property sets, type objects, materials, spatial containment)
// that attribute queries traverse. Geometry is carried verbatim but not
// interpreted.
package ifc

import (
	"sort"
	"strconv"
	"strings"
)

// Header holds the HEADER section fields of a STEP file.
type Header struct {
	Description         []string
	ImplementationLevel string
	Name                string
	Timestamp           string
	Authors             []string
	Organizations       []string
	PreprocessorVersion string
	OriginatingSystem   string
	Authorization       string
	Schema              string
}

// Instance is one entity instance of the DATA section. Params are
// positional; names resolve through the schema tables. Instances are
// immutable after parsing.
type Instance struct {
	ID     int64
	Type   string // upper-case, as written in the file
	Params []Param

	line int
}

// String renders the instance as its STEP physical-file line, the
// canonical display form for query results.
func (inst *Instance) String() string {
	var b strings.Builder
	b.Grow(64)
	b.WriteByte('#')
	b.WriteString(strconv.FormatInt(inst.ID, 10))
	b.WriteByte('=')
	b.WriteString(inst.Type)
	b.WriteByte('(')
	for i, p := range inst.Params {
		if i > 0 {
			b.WriteByte(',')
		}
		p.spf(&b)
	}
	b.WriteString(");")
	return b.String()
}

// CanonicalType returns the schema capitalization of the instance type
// (IFCWALL → IfcWall). Types outside the bundled tables are returned as
// written.
func (inst *Instance) CanonicalType() string {
	return CanonicalName(inst.Type)
}

// Attr resolves a named attribute. Resolution is case-insensitive and
// uses the bundled schema tables plus the common attribute layout shared
// by all rooted entities. The second result is false when the name is not
// known for this type or the instance is too short to carry it.
func (inst *Instance) Attr(name string) (Param, bool) {
	idx, ok := attrIndexFor(inst.Type, name, len(inst.Params))
	if !ok || idx >= len(inst.Params) {
		return Param{}, false
	}
	return inst.Params[idx], true
}

// GUID returns the GlobalId of rooted instances, "" otherwise.
func (inst *Instance) GUID() string {
	if !IsSubtypeOf(inst.Type, "IfcRoot") || len(inst.Params) == 0 {
		return ""
	}
	if p := inst.Params[0]; p.Kind == ParamString {
		return p.Str
	}
	return ""
}

// Model is a parsed STEP file. All access is read-only; a Model is safe
// for concurrent readers.
type Model struct {
	Path   string
	Header Header

	byID   map[int64]*Instance
	order  []*Instance // file order
	byType map[string][]*Instance

	psets     map[int64][]*Instance
	typeObj   map[int64]*Instance
	materials map[int64][]*Instance
	contained map[int64]*Instance
	aggParent map[int64]*Instance
}

// Schema returns the FILE_SCHEMA identifier (e.g. "IFC4"), or "".
func (m *Model) Schema() string {
	return m.Header.Schema
}

// Len returns the number of entity instances.
func (m *Model) Len() int {
	return len(m.order)
}

// Get returns the instance with the given id.
func (m *Model) Get(id int64) (*Instance, bool) {
	inst, ok := m.byID[id]
	return inst, ok
}

// Instances returns all instances in file order. Callers must not mutate
// the returned slice.
func (m *Model) Instances() []*Instance {
	return m.order
}

// ByTypeExact returns the instances of exactly the named type, in file
// order. The name is case-insensitive.
func (m *Model) ByTypeExact(name string) []*Instance {
	return m.byType[strings.ToUpper(name)]
}

// ByType returns the instances of the named type and all of its subtypes
// known to the bundled hierarchy, in file order. Unknown names fall back
// to exact matching.
func (m *Model) ByType(name string) []*Instance {
	closure := SubtypeClosure(name)
	if closure == nil {
		return m.ByTypeExact(name)
	}

	total := 0
	for t := range closure {
		total += len(m.byType[t])
	}
	if total == 0 {
		return nil
	}
	out := make([]*Instance, 0, total)
	for _, inst := range m.order {
		if _, ok := closure[inst.Type]; ok {
			out = append(out, inst)
		}
	}
	return out
}

// Types returns the canonical names of all entity types present in the
// model, sorted.
func (m *Model) Types() []string {
	out := make([]string, 0, len(m.byType))
	for t := range m.byType {
		out = append(out, CanonicalName(t))
	}
	sort.Strings(out)
	return out
}

// TypeCounts returns instance counts per canonical type name.
func (m *Model) TypeCounts() map[string]int {
	out := make(map[string]int, len(m.byType))
	for t, insts := range m.byType {
		out[CanonicalName(t)] = len(insts)
	}
	return out
}

// PropertySets returns the property and quantity sets attached to an
// element through IfcRelDefinesByProperties, in file order of the
// relationships.
func (m *Model) PropertySets(id int64) []*Instance {
	return m.psets[id]
}

// TypeObject returns the type object related to an element through
// IfcRelDefinesByType, or nil.
func (m *Model) TypeObject(id int64) *Instance {
	return m.typeObj[id]
}

// Materials returns the IfcMaterial instances associated with an element,
// flattening layer sets, constituent sets, profile sets and lists.
func (m *Model) Materials(id int64) []*Instance {
	return m.materials[id]
}

// Container returns the spatial structure element that directly contains
// the element (IfcRelContainedInSpatialStructure), or nil.
func (m *Model) Container(id int64) *Instance {
	return m.contained[id]
}

// Storey returns the building storey an element belongs to, walking the
// containment relation and then the spatial decomposition upward. Nil
// when the element is not contained in any storey.
func (m *Model) Storey(id int64) *Instance {
	cur := m.contained[id]
	for depth := 0; cur != nil && depth < 64; depth++ {
		if cur.Type == "IFCBUILDINGSTOREY" {
			return cur
		}
		cur = m.aggParent[cur.ID]
	}
	return nil
}

// resolve follows a reference parameter to its instance.
func (m *Model) resolve(p Param) *Instance {
	if p.Kind != ParamRef {
		return nil
	}
	return m.byID[p.Ref]
}
