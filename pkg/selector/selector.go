// Package selector implements the ifcpeek query language over ifc
// models: filter queries that select entity instances, and
// value-extraction queries that pull attribute values out of each match.
//
// Filter queries select instances:
//
//	IfcWall                                all walls (subtypes included)
//	IfcWall, IfcSlab                       walls and slabs
//	IfcWall, Name=Foo                      walls named Foo
//	IfcWall, material=Concrete + IfcDoor   union of two groups
//	IfcElement, !IfcOpeningElement         exclusion
//	IfcWall, Pset_WallCommon.FireRating=2HR
//	IfcDoor, OverallHeight>=2.1
//	IfcWall, Name*=North                   regular-expression match
//	IfcWall, Description!=NULL             presence test
//
// Comma-separated facets form a group: class facets widen it, `!Class`
// and attribute comparisons narrow it, and `+` unions groups. Operators
// are =, !=, *=, !*=, >, >=, <, <=. Values with spaces or punctuation
// are quoted with single or double quotes; NULL tests emptiness. The
// keywords `material`, `type` and `storey` compare against related
// instances rather than the element itself.
//
// Value queries extract one value per matched instance:
//
//	Name                       a direct attribute
//	id, class                  entity id and canonical class name
//	type.Name                  the related type object's name
//	material.Name              the first associated material
//	storey.Elevation           the containing storey
//	Pset_WallCommon.FireRating a property by set and name
//	Qto_WallBaseQuantities.NetSideArea
//	OwnerHistory.CreationDate  reference attributes are followed
//
// wrapped in formatting functions where needed: upper, lower, title,
// concat, round, int, number.
package selector

import (
	"sort"

	"github.com/ifcpeek/ifcpeek/pkg/ifc"
)

// Select parses a filter query and evaluates it against a model.
func Select(m *ifc.Model, query string) ([]*ifc.Instance, error) {
	f, err := ParseFilter(query)
	if err != nil {
		return nil, err
	}
	return f.Eval(m), nil
}

// Functions returns the value-extraction function names, sorted, for
// completion.
func Functions() []string {
	out := make([]string, 0, len(functions))
	for name := range functions {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Keywords returns the path keywords understood by filter and value
// queries, for completion.
func Keywords() []string {
	return []string{"class", "id", "material", "storey", "type"}
}
