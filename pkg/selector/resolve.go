package selector

import (
	"strconv"

	"github.com/ifcpeek/ifcpeek/pkg/ifc"
)

// fieldValue is one resolved value of an attribute path.
type fieldValue struct {
	str   string
	num   float64
	isNum bool
	enum  bool
}

func paramField(p ifc.Param) (fieldValue, bool) {
	p = p.Underlying()
	if !p.IsSet() {
		return fieldValue{}, false
	}
	f := fieldValue{str: p.Display()}
	f.num, f.isNum = p.Float()
	f.enum = p.Kind == ifc.ParamEnum
	return f, true
}

// fieldValues resolves an attribute path on an instance. Most paths
// yield zero values (absent) or one; material paths yield one per
// associated material. Heads resolve in this order: the relationship
// keywords `type`, `storey`, `material`; the pseudo-attributes `id` and
// `class` (final segment only); a property or quantity set name followed
// by a member name; a plain attribute, followed through entity
// references when more segments remain.
func fieldValues(m *ifc.Model, inst *ifc.Instance, path []string) []fieldValue {
	if inst == nil || len(path) == 0 {
		return nil
	}
	head, rest := path[0], path[1:]

	switch head {
	case "type":
		return relatedValues(m, rest, m.TypeObject(inst.ID))
	case "storey":
		return relatedValues(m, rest, m.Storey(inst.ID))
	case "material":
		return relatedValues(m, rest, m.Materials(inst.ID)...)
	}

	if len(rest) == 0 {
		switch head {
		case "id":
			return []fieldValue{{str: strconv.FormatInt(inst.ID, 10), num: float64(inst.ID), isNum: true}}
		case "class":
			return []fieldValue{{str: inst.CanonicalType()}}
		}
		if p, ok := inst.Attr(head); ok {
			if f, ok := paramField(p); ok {
				return []fieldValue{f}
			}
		}
		return nil
	}

	if p, ok := psetProperty(m, inst, head, rest[0]); ok {
		if len(rest) > 1 {
			return nil
		}
		if f, ok := paramField(p); ok {
			return []fieldValue{f}
		}
		return nil
	}

	if p, ok := inst.Attr(head); ok && p.Kind == ifc.ParamRef {
		if target, ok := m.Get(p.Ref); ok {
			return fieldValues(m, target, rest)
		}
	}
	return nil
}

// relatedValues resolves the remaining path on related instances; an
// empty remainder means their Name.
func relatedValues(m *ifc.Model, rest []string, targets ...*ifc.Instance) []fieldValue {
	if len(rest) == 0 {
		rest = []string{"Name"}
	}
	var out []fieldValue
	for _, t := range targets {
		if t == nil {
			continue
		}
		out = append(out, fieldValues(m, t, rest)...)
	}
	return out
}

// psetProperty finds a named member of a named property or quantity set
// attached to the instance and returns its value parameter.
func psetProperty(m *ifc.Model, inst *ifc.Instance, setName, memberName string) (ifc.Param, bool) {
	for _, ps := range m.PropertySets(inst.ID) {
		name, ok := ps.Attr("Name")
		if !ok || name.Str != setName {
			continue
		}
		var members ifc.Param
		switch ps.Type {
		case "IFCPROPERTYSET":
			members, _ = ps.Attr("HasProperties")
		case "IFCELEMENTQUANTITY":
			members, _ = ps.Attr("Quantities")
		default:
			continue
		}
		if members.Kind != ifc.ParamList {
			continue
		}
		for _, ref := range members.List {
			if ref.Kind != ifc.ParamRef {
				continue
			}
			member, ok := m.Get(ref.Ref)
			if !ok {
				continue
			}
			mname, ok := member.Attr("Name")
			if !ok || mname.Str != memberName {
				continue
			}
			if v, ok := memberValue(member); ok {
				return v, true
			}
		}
	}
	return ifc.Param{}, false
}

// quantityValueAttrs are the value slots of the IfcPhysicalSimpleQuantity
// subtypes; exactly one is set per quantity.
var quantityValueAttrs = []string{
	"AreaValue", "CountValue", "LengthValue", "TimeValue", "VolumeValue", "WeightValue",
}

func memberValue(member *ifc.Instance) (ifc.Param, bool) {
	switch member.Type {
	case "IFCPROPERTYSINGLEVALUE":
		if p, ok := member.Attr("NominalValue"); ok {
			return p, true
		}
	case "IFCPROPERTYENUMERATEDVALUE":
		if p, ok := member.Attr("EnumerationValues"); ok {
			return p, true
		}
	case "IFCPROPERTYLISTVALUE":
		if p, ok := member.Attr("ListValues"); ok {
			return p, true
		}
	default:
		for _, attr := range quantityValueAttrs {
			if p, ok := member.Attr(attr); ok && p.IsSet() {
				return p, true
			}
		}
	}
	return ifc.Param{}, false
}
