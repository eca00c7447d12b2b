package ifc

// derive builds the relationship indices the query layer leans on:
// property and quantity sets, type objects, associated materials, spatial
// containment and aggregation parents. Relationship instances with
// missing or dangling references are skipped, so a model that parses
// always yields an index, just a sparser one.
func (m *Model) derive() {
	m.psets = make(map[int64][]*Instance)
	m.typeObj = make(map[int64]*Instance)
	m.materials = make(map[int64][]*Instance)
	m.contained = make(map[int64]*Instance)
	m.aggParent = make(map[int64]*Instance)

	for _, rel := range m.byType["IFCRELDEFINESBYPROPERTIES"] {
		def := m.attrRef(rel, "RelatingPropertyDefinition")
		if def == nil {
			continue
		}
		for _, obj := range m.attrRefs(rel, "RelatedObjects") {
			m.psets[obj.ID] = append(m.psets[obj.ID], def)
		}
	}

	for _, rel := range m.byType["IFCRELDEFINESBYTYPE"] {
		typ := m.attrRef(rel, "RelatingType")
		if typ == nil {
			continue
		}
		for _, obj := range m.attrRefs(rel, "RelatedObjects") {
			m.typeObj[obj.ID] = typ
		}
	}

	for _, rel := range m.byType["IFCRELASSOCIATESMATERIAL"] {
		var mats []*Instance
		seen := map[int64]struct{}{}
		m.flattenMaterial(m.attrRef(rel, "RelatingMaterial"), 0, seen, &mats)
		if len(mats) == 0 {
			continue
		}
		for _, obj := range m.attrRefs(rel, "RelatedObjects") {
			m.materials[obj.ID] = append(m.materials[obj.ID], mats...)
		}
	}

	for _, rel := range m.byType["IFCRELCONTAINEDINSPATIALSTRUCTURE"] {
		structure := m.attrRef(rel, "RelatingStructure")
		if structure == nil {
			continue
		}
		for _, elem := range m.attrRefs(rel, "RelatedElements") {
			m.contained[elem.ID] = structure
		}
	}

	for _, rel := range m.byType["IFCRELAGGREGATES"] {
		whole := m.attrRef(rel, "RelatingObject")
		if whole == nil {
			continue
		}
		for _, part := range m.attrRefs(rel, "RelatedObjects") {
			m.aggParent[part.ID] = whole
		}
	}
}

const materialDepthLimit = 8

// flattenMaterial collects the IfcMaterial leaves reachable from a
// material select value: lists, layer sets and their usages, profile
// sets and constituent sets all reduce to their member materials.
func (m *Model) flattenMaterial(inst *Instance, depth int, seen map[int64]struct{}, out *[]*Instance) {
	if inst == nil || depth > materialDepthLimit {
		return
	}
	switch inst.Type {
	case "IFCMATERIAL":
		if _, dup := seen[inst.ID]; dup {
			return
		}
		seen[inst.ID] = struct{}{}
		*out = append(*out, inst)
	case "IFCMATERIALLIST":
		for _, mat := range m.attrRefs(inst, "Materials") {
			m.flattenMaterial(mat, depth+1, seen, out)
		}
	case "IFCMATERIALLAYERSETUSAGE":
		m.flattenMaterial(m.attrRef(inst, "ForLayerSet"), depth+1, seen, out)
	case "IFCMATERIALLAYERSET":
		for _, layer := range m.attrRefs(inst, "MaterialLayers") {
			m.flattenMaterial(layer, depth+1, seen, out)
		}
	case "IFCMATERIALLAYER":
		m.flattenMaterial(m.attrRef(inst, "Material"), depth+1, seen, out)
	case "IFCMATERIALPROFILESETUSAGE":
		m.flattenMaterial(m.attrRef(inst, "ForProfileSet"), depth+1, seen, out)
	case "IFCMATERIALPROFILESET":
		for _, prof := range m.attrRefs(inst, "MaterialProfiles") {
			m.flattenMaterial(prof, depth+1, seen, out)
		}
	case "IFCMATERIALPROFILE":
		m.flattenMaterial(m.attrRef(inst, "Material"), depth+1, seen, out)
	case "IFCMATERIALCONSTITUENTSET":
		for _, con := range m.attrRefs(inst, "MaterialConstituents") {
			m.flattenMaterial(con, depth+1, seen, out)
		}
	case "IFCMATERIALCONSTITUENT":
		m.flattenMaterial(m.attrRef(inst, "Material"), depth+1, seen, out)
	}
}

// attrRef resolves a named reference attribute to its instance, nil when
// the attribute is absent, unset or dangling.
func (m *Model) attrRef(inst *Instance, name string) *Instance {
	p, ok := inst.Attr(name)
	if !ok {
		return nil
	}
	return m.resolve(p)
}

// attrRefs resolves a named list attribute to the instances it references,
// skipping non-reference members and dangling ids.
func (m *Model) attrRefs(inst *Instance, name string) []*Instance {
	p, ok := inst.Attr(name)
	if !ok || p.Kind != ParamList {
		return nil
	}
	out := make([]*Instance, 0, len(p.List))
	for _, item := range p.List {
		if target := m.resolve(item); target != nil {
			out = append(out, target)
		}
	}
	return out
}
