package ifc

import "strings"

// The shell does not carry the full EXPRESS schemas. It bundles the core
// IFC4 type hierarchy and the attribute layouts queries actually touch:
// identification attributes of rooted entities, spatial structure,
// property/quantity sets, materials and the relationship entities used to
// derive indices. Rooted types without an explicit entry resolve through
// the layout of their nearest listed supertype, which covers the
// GlobalId/Name/Description/ObjectType/Tag family for every element.

// typeParents records the immediate supertype of each bundled type.
var typeParents = map[string]string{
	"IfcObjectDefinition":   "IfcRoot",
	"IfcPropertyDefinition": "IfcRoot",
	"IfcRelationship":       "IfcRoot",

	"IfcContext":    "IfcObjectDefinition",
	"IfcObject":     "IfcObjectDefinition",
	"IfcTypeObject": "IfcObjectDefinition",

	"IfcProject":        "IfcContext",
	"IfcProjectLibrary": "IfcContext",

	"IfcActor":    "IfcObject",
	"IfcControl":  "IfcObject",
	"IfcGroup":    "IfcObject",
	"IfcProcess":  "IfcObject",
	"IfcProduct":  "IfcObject",
	"IfcResource": "IfcObject",

	"IfcSystem":             "IfcGroup",
	"IfcZone":               "IfcSystem",
	"IfcBuildingSystem":     "IfcSystem",
	"IfcDistributionSystem": "IfcSystem",

	"IfcAnnotation":        "IfcProduct",
	"IfcElement":           "IfcProduct",
	"IfcGrid":              "IfcProduct",
	"IfcPort":              "IfcProduct",
	"IfcProxy":             "IfcProduct",
	"IfcSpatialElement":    "IfcProduct",
	"IfcStructuralItem":    "IfcProduct",
	"IfcDistributionPort":  "IfcPort",

	"IfcSpatialStructureElement":         "IfcSpatialElement",
	"IfcExternalSpatialStructureElement": "IfcSpatialElement",
	"IfcSpatialZone":                     "IfcSpatialElement",

	"IfcSite":           "IfcSpatialStructureElement",
	"IfcBuilding":       "IfcSpatialStructureElement",
	"IfcBuildingStorey": "IfcSpatialStructureElement",
	"IfcSpace":          "IfcSpatialStructureElement",

	"IfcBuildingElement":     "IfcElement",
	"IfcCivilElement":        "IfcElement",
	"IfcDistributionElement": "IfcElement",
	"IfcElementAssembly":     "IfcElement",
	"IfcElementComponent":    "IfcElement",
	"IfcFeatureElement":      "IfcElement",
	"IfcFurnishingElement":   "IfcElement",
	"IfcGeographicElement":   "IfcElement",
	"IfcTransportElement":    "IfcElement",
	"IfcVirtualElement":      "IfcElement",

	"IfcBeam":                 "IfcBuildingElement",
	"IfcBuildingElementProxy": "IfcBuildingElement",
	"IfcChimney":              "IfcBuildingElement",
	"IfcColumn":               "IfcBuildingElement",
	"IfcCovering":             "IfcBuildingElement",
	"IfcCurtainWall":          "IfcBuildingElement",
	"IfcDoor":                 "IfcBuildingElement",
	"IfcFooting":              "IfcBuildingElement",
	"IfcMember":               "IfcBuildingElement",
	"IfcPile":                 "IfcBuildingElement",
	"IfcPlate":                "IfcBuildingElement",
	"IfcRailing":              "IfcBuildingElement",
	"IfcRamp":                 "IfcBuildingElement",
	"IfcRampFlight":           "IfcBuildingElement",
	"IfcRoof":                 "IfcBuildingElement",
	"IfcShadingDevice":        "IfcBuildingElement",
	"IfcSlab":                 "IfcBuildingElement",
	"IfcStair":                "IfcBuildingElement",
	"IfcStairFlight":          "IfcBuildingElement",
	"IfcWall":                 "IfcBuildingElement",
	"IfcWindow":               "IfcBuildingElement",

	"IfcBeamStandardCase":   "IfcBeam",
	"IfcColumnStandardCase": "IfcColumn",
	"IfcDoorStandardCase":   "IfcDoor",
	"IfcMemberStandardCase": "IfcMember",
	"IfcPlateStandardCase":  "IfcPlate",
	"IfcSlabElementedCase":  "IfcSlab",
	"IfcSlabStandardCase":   "IfcSlab",
	"IfcWallElementedCase":  "IfcWall",
	"IfcWallStandardCase":   "IfcWall",
	"IfcWindowStandardCase": "IfcWindow",

	"IfcDistributionFlowElement":    "IfcDistributionElement",
	"IfcDistributionControlElement": "IfcDistributionElement",
	"IfcDistributionChamberElement": "IfcDistributionFlowElement",
	"IfcEnergyConversionDevice":     "IfcDistributionFlowElement",
	"IfcFlowController":             "IfcDistributionFlowElement",
	"IfcFlowFitting":                "IfcDistributionFlowElement",
	"IfcFlowMovingDevice":           "IfcDistributionFlowElement",
	"IfcFlowSegment":                "IfcDistributionFlowElement",
	"IfcFlowStorageDevice":          "IfcDistributionFlowElement",
	"IfcFlowTerminal":               "IfcDistributionFlowElement",
	"IfcFlowTreatmentDevice":        "IfcDistributionFlowElement",

	"IfcCableCarrierSegment": "IfcFlowSegment",
	"IfcCableSegment":        "IfcFlowSegment",
	"IfcDuctSegment":         "IfcFlowSegment",
	"IfcPipeSegment":         "IfcFlowSegment",
	"IfcAirTerminal":         "IfcFlowTerminal",
	"IfcLightFixture":        "IfcFlowTerminal",
	"IfcOutlet":              "IfcFlowTerminal",
	"IfcSanitaryTerminal":    "IfcFlowTerminal",

	"IfcDiscreteAccessory":  "IfcElementComponent",
	"IfcFastener":           "IfcElementComponent",
	"IfcMechanicalFastener": "IfcElementComponent",
	"IfcReinforcingElement": "IfcElementComponent",
	"IfcReinforcingBar":     "IfcReinforcingElement",
	"IfcReinforcingMesh":    "IfcReinforcingElement",
	"IfcTendon":             "IfcReinforcingElement",

	"IfcFeatureElementAddition":    "IfcFeatureElement",
	"IfcFeatureElementSubtraction": "IfcFeatureElement",
	"IfcOpeningElement":            "IfcFeatureElementSubtraction",
	"IfcOpeningStandardCase":       "IfcOpeningElement",
	"IfcProjectionElement":         "IfcFeatureElementAddition",

	"IfcFurniture":              "IfcFurnishingElement",
	"IfcSystemFurnitureElement": "IfcFurnishingElement",

	"IfcTypeProduct":        "IfcTypeObject",
	"IfcElementType":        "IfcTypeProduct",
	"IfcSpatialElementType": "IfcTypeProduct",

	"IfcBuildingElementType":     "IfcElementType",
	"IfcDistributionElementType": "IfcElementType",
	"IfcFurnishingElementType":   "IfcElementType",
	"IfcTransportElementType":    "IfcElementType",

	"IfcBeamType":                 "IfcBuildingElementType",
	"IfcBuildingElementProxyType": "IfcBuildingElementType",
	"IfcChimneyType":              "IfcBuildingElementType",
	"IfcColumnType":               "IfcBuildingElementType",
	"IfcCoveringType":             "IfcBuildingElementType",
	"IfcCurtainWallType":          "IfcBuildingElementType",
	"IfcDoorType":                 "IfcBuildingElementType",
	"IfcFootingType":              "IfcBuildingElementType",
	"IfcMemberType":               "IfcBuildingElementType",
	"IfcPileType":                 "IfcBuildingElementType",
	"IfcPlateType":                "IfcBuildingElementType",
	"IfcRailingType":              "IfcBuildingElementType",
	"IfcRampType":                 "IfcBuildingElementType",
	"IfcRoofType":                 "IfcBuildingElementType",
	"IfcShadingDeviceType":        "IfcBuildingElementType",
	"IfcSlabType":                 "IfcBuildingElementType",
	"IfcStairType":                "IfcBuildingElementType",
	"IfcWallType":                 "IfcBuildingElementType",
	"IfcWindowType":               "IfcBuildingElementType",

	"IfcPropertySetDefinition": "IfcPropertyDefinition",
	"IfcPropertySet":           "IfcPropertySetDefinition",
	"IfcQuantitySet":           "IfcPropertySetDefinition",
	"IfcElementQuantity":       "IfcQuantitySet",

	"IfcRelAssigns":    "IfcRelationship",
	"IfcRelAssociates": "IfcRelationship",
	"IfcRelConnects":   "IfcRelationship",
	"IfcRelDecomposes": "IfcRelationship",
	"IfcRelDefines":    "IfcRelationship",

	"IfcRelAggregates":                  "IfcRelDecomposes",
	"IfcRelNests":                       "IfcRelDecomposes",
	"IfcRelVoidsElement":                "IfcRelDecomposes",
	"IfcRelAssociatesClassification":    "IfcRelAssociates",
	"IfcRelAssociatesDocument":          "IfcRelAssociates",
	"IfcRelAssociatesLibrary":           "IfcRelAssociates",
	"IfcRelAssociatesMaterial":          "IfcRelAssociates",
	"IfcRelContainedInSpatialStructure": "IfcRelConnects",
	"IfcRelFillsElement":                "IfcRelConnects",
	"IfcRelSpaceBoundary":               "IfcRelConnects",
	"IfcRelDefinesByProperties":         "IfcRelDefines",
	"IfcRelDefinesByTemplate":           "IfcRelDefines",
	"IfcRelDefinesByType":               "IfcRelDefines",
}

// Attribute layouts shared by whole branches of the hierarchy. The full
// slice expressions pin capacity so the appends below always copy.
var (
	rootAttrs     = []string{"GlobalId", "OwnerHistory", "Name", "Description"}
	objectAttrs   = append(rootAttrs[:4:4], "ObjectType")
	productAttrs  = append(objectAttrs[:5:5], "ObjectPlacement", "Representation")
	elementAttrs  = append(productAttrs[:7:7], "Tag")
	spatialAttrs  = append(productAttrs[:7:7], "LongName", "CompositionType")
	typeAttrs     = append(rootAttrs[:4:4], "ApplicableOccurrence", "HasPropertySets")
	typeProdAttrs = append(typeAttrs[:6:6], "RepresentationMaps", "Tag")
	elemTypeAttrs = append(typeProdAttrs[:8:8], "ElementType")
)

// attrTables lists the positional attribute names per type. Lookup walks
// up typeParents, so subtypes inherit the nearest listed layout.
var attrTables = map[string][]string{
	"IfcRoot":                    rootAttrs,
	"IfcObject":                  objectAttrs,
	"IfcTypeObject":              typeAttrs,
	"IfcTypeProduct":             typeProdAttrs,
	"IfcElementType":             elemTypeAttrs,
	"IfcBuildingElementType":     append(elemTypeAttrs[:9:9], "PredefinedType"),
	"IfcProduct":                 productAttrs,
	"IfcElement":                 elementAttrs,
	"IfcBuildingElement":         append(elementAttrs[:8:8], "PredefinedType"),
	"IfcSpatialStructureElement": spatialAttrs,

	"IfcProject": append(objectAttrs[:5:5], "LongName", "Phase", "RepresentationContexts", "UnitsInContext"),
	"IfcSite": append(spatialAttrs[:9:9],
		"RefLatitude", "RefLongitude", "RefElevation", "LandTitleNumber", "SiteAddress"),
	"IfcBuilding":       append(spatialAttrs[:9:9], "ElevationOfRefHeight", "ElevationOfTerrain", "BuildingAddress"),
	"IfcBuildingStorey": append(spatialAttrs[:9:9], "Elevation"),
	"IfcSpace":          append(spatialAttrs[:9:9], "PredefinedType", "ElevationWithFlooring"),

	"IfcDoor": append(elementAttrs[:8:8],
		"OverallHeight", "OverallWidth", "PredefinedType", "OperationType", "UserDefinedOperationType"),
	"IfcWindow": append(elementAttrs[:8:8],
		"OverallHeight", "OverallWidth", "PredefinedType", "PartitioningType", "UserDefinedPartitioningType"),

	"IfcOwnerHistory": {"OwningUser", "OwningApplication", "State", "ChangeAction",
		"LastModifiedDate", "LastModifyingUser", "LastModifyingApplication", "CreationDate"},

	"IfcPropertySet":             append(rootAttrs[:4:4], "HasProperties"),
	"IfcElementQuantity":         append(rootAttrs[:4:4], "MethodOfMeasurement", "Quantities"),
	"IfcPropertySingleValue":     {"Name", "Description", "NominalValue", "Unit"},
	"IfcPropertyEnumeratedValue": {"Name", "Description", "EnumerationValues", "EnumerationReference"},
	"IfcPropertyListValue":       {"Name", "Description", "ListValues", "Unit"},

	"IfcQuantityArea":   {"Name", "Description", "Unit", "AreaValue", "Formula"},
	"IfcQuantityCount":  {"Name", "Description", "Unit", "CountValue", "Formula"},
	"IfcQuantityLength": {"Name", "Description", "Unit", "LengthValue", "Formula"},
	"IfcQuantityTime":   {"Name", "Description", "Unit", "TimeValue", "Formula"},
	"IfcQuantityVolume": {"Name", "Description", "Unit", "VolumeValue", "Formula"},
	"IfcQuantityWeight": {"Name", "Description", "Unit", "WeightValue", "Formula"},

	"IfcMaterial":                {"Name", "Description", "Category"},
	"IfcMaterialList":            {"Materials"},
	"IfcMaterialLayer":           {"Material", "LayerThickness", "IsVentilated", "Name", "Description", "Category", "Priority"},
	"IfcMaterialLayerSet":        {"MaterialLayers", "LayerSetName", "Description"},
	"IfcMaterialLayerSetUsage":   {"ForLayerSet", "LayerSetDirection", "DirectionSense", "OffsetFromReferenceLine", "ReferenceExtent"},
	"IfcMaterialProfile":         {"Name", "Description", "Material", "Profile", "Priority", "Category"},
	"IfcMaterialProfileSet":      {"Name", "Description", "MaterialProfiles", "CompositeProfile"},
	"IfcMaterialProfileSetUsage": {"ForProfileSet", "CardinalPoint", "ReferenceExtent"},
	"IfcMaterialConstituent":     {"Name", "Description", "Material", "Fraction", "Category"},
	"IfcMaterialConstituentSet":  {"Name", "Description", "MaterialConstituents"},

	"IfcRelAggregates":                  append(rootAttrs[:4:4], "RelatingObject", "RelatedObjects"),
	"IfcRelNests":                       append(rootAttrs[:4:4], "RelatingObject", "RelatedObjects"),
	"IfcRelAssociatesMaterial":          append(rootAttrs[:4:4], "RelatedObjects", "RelatingMaterial"),
	"IfcRelContainedInSpatialStructure": append(rootAttrs[:4:4], "RelatedElements", "RelatingStructure"),
	"IfcRelDefinesByProperties":         append(rootAttrs[:4:4], "RelatedObjects", "RelatingPropertyDefinition"),
	"IfcRelDefinesByType":               append(rootAttrs[:4:4], "RelatedObjects", "RelatingType"),
	"IfcRelFillsElement":                append(rootAttrs[:4:4], "RelatingOpeningElement", "RelatedBuildingElement"),
	"IfcRelVoidsElement":                append(rootAttrs[:4:4], "RelatingBuildingElement", "RelatedOpeningElement"),
}

// Derived lookup structures, built once at package init.
var (
	parentOf      = map[string]string{}         // UPPER → UPPER
	childrenOf    = map[string][]string{}       // UPPER → UPPER
	canonicalName = map[string]string{}         // UPPER → CamelCase
	attrIndexes   = map[string]map[string]int{} // UPPER → lower(attr) → position
)

func init() {
	for child, parent := range typeParents {
		cu, pu := strings.ToUpper(child), strings.ToUpper(parent)
		parentOf[cu] = pu
		childrenOf[pu] = append(childrenOf[pu], cu)
		canonicalName[cu] = child
		canonicalName[pu] = parent
	}
	for typ, attrs := range attrTables {
		tu := strings.ToUpper(typ)
		if _, ok := canonicalName[tu]; !ok {
			canonicalName[tu] = typ
		}
		idx := make(map[string]int, len(attrs))
		for i, a := range attrs {
			idx[strings.ToLower(a)] = i
		}
		attrIndexes[tu] = idx
	}
}

// CanonicalName returns the schema capitalization for a bundled type name
// (case-insensitive), or the input unchanged when unknown.
func CanonicalName(name string) string {
	if c, ok := canonicalName[strings.ToUpper(name)]; ok {
		return c
	}
	return name
}

// KnownType reports whether the name appears in the bundled hierarchy or
// attribute tables.
func KnownType(name string) bool {
	_, ok := canonicalName[strings.ToUpper(name)]
	return ok
}

// IsSubtypeOf reports whether t equals super or descends from it in the
// bundled hierarchy. Both names are case-insensitive.
func IsSubtypeOf(t, super string) bool {
	cur := strings.ToUpper(t)
	target := strings.ToUpper(super)
	for {
		if cur == target {
			return true
		}
		next, ok := parentOf[cur]
		if !ok {
			return false
		}
		cur = next
	}
}

// SubtypeClosure returns the upper-cased names of super and every bundled
// subtype, or nil when the name is not in the hierarchy.
func SubtypeClosure(super string) map[string]struct{} {
	root := strings.ToUpper(super)
	if _, ok := canonicalName[root]; !ok {
		return nil
	}
	closure := map[string]struct{}{root: {}}
	stack := []string{root}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range childrenOf[cur] {
			if _, seen := closure[child]; !seen {
				closure[child] = struct{}{}
				stack = append(stack, child)
			}
		}
	}
	return closure
}

// attrIndexFor resolves an attribute name to its position for a type,
// walking up the hierarchy to the nearest layout. As a last resort,
// PredefinedType resolves to the trailing position of 9-attribute
// elements, the layout shared by the IFC4 building element leaves.
func attrIndexFor(typ, attr string, arity int) (int, bool) {
	lower := strings.ToLower(attr)
	for cur := strings.ToUpper(typ); cur != ""; cur = parentOf[cur] {
		if idx, ok := attrIndexes[cur]; ok {
			if i, ok := idx[lower]; ok {
				return i, true
			}
		}
	}
	if lower == "predefinedtype" && arity == 9 && IsSubtypeOf(typ, "IfcElement") {
		return 8, true
	}
	return 0, false
}

// AttrNames returns the attribute layout used for a type, for completion.
// Nil when the type has no known layout.
func AttrNames(typ string) []string {
	for cur := strings.ToUpper(typ); cur != ""; cur = parentOf[cur] {
		if canon, ok := canonicalName[cur]; ok {
			if attrs, ok := attrTables[canon]; ok {
				return attrs
			}
		}
	}
	return nil
}
