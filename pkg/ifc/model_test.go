package ifc

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifcpeek/ifcpeek/internal/testutil"
)

func parseSample(t *testing.T) *Model {
	t.Helper()
	m, err := Parse(context.Background(), []byte(testutil.SampleIFC), Options{})
	require.NoError(t, err)
	return m
}

func TestByTypeClosure(t *testing.T) {
	m := parseSample(t)

	tests := []struct {
		name    string
		query   string
		wantIDs []int64
	}{
		{name: "exact leaf", query: "IfcWall", wantIDs: []int64{100, 110}},
		{name: "abstract supertype", query: "IfcBuildingElement", wantIDs: []int64{100, 110, 120, 130}},
		{name: "element closure", query: "IfcElement", wantIDs: []int64{100, 110, 120, 130}},
		{name: "product includes spatial", query: "IfcProduct", wantIDs: []int64{30, 31, 32, 33, 100, 110, 120, 130}},
		{name: "spatial structure", query: "IfcSpatialStructureElement", wantIDs: []int64{30, 31, 32, 33}},
		{name: "upper case input", query: "IFCDOOR", wantIDs: []int64{120}},
		{name: "unlisted type falls back to exact", query: "IfcLocalPlacement", wantIDs: []int64{101}},
		{name: "unknown type", query: "IfcBanana", wantIDs: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []int64
			for _, inst := range m.ByType(tt.query) {
				got = append(got, inst.ID)
			}
			assert.Equal(t, tt.wantIDs, got, "results keep file order")
		})
	}

	// IfcLocalPlacement is outside the bundled hierarchy, so matching is
	// exact by stored type name.
	assert.Len(t, m.ByType("IFCLOCALPLACEMENT"), 1)
	assert.Len(t, m.ByTypeExact("ifcwall"), 2)
}

func TestAttrResolution(t *testing.T) {
	m := parseSample(t)

	str := func(id int64, attr string) string {
		t.Helper()
		inst, ok := m.Get(id)
		require.True(t, ok)
		p, ok := inst.Attr(attr)
		require.True(t, ok, "#%d.%s", id, attr)
		return p.Display()
	}

	assert.Equal(t, "North Wall", str(100, "Name"))
	assert.Equal(t, "Exterior wall", str(100, "Description"))
	assert.Equal(t, "W-001", str(100, "Tag"))
	assert.Equal(t, "SOLIDWALL", str(100, "PredefinedType"))
	assert.Equal(t, "#101", str(100, "ObjectPlacement"))

	assert.Equal(t, "North Wall", str(100, "name"), "resolution is case-insensitive")
	assert.Equal(t, "0.", str(32, "Elevation"))
	assert.Equal(t, "3.", str(33, "Elevation"))
	assert.Equal(t, "2.1", str(120, "OverallHeight"))
	assert.Equal(t, "SINGLE_SWING_LEFT", str(120, "OperationType"))
	assert.Equal(t, "42.5", str(211, "AreaValue"))
	assert.Equal(t, "2HR", str(201, "NominalValue"))
	assert.Equal(t, "1577836800", str(2, "CreationDate"))
	assert.Equal(t, "Concrete", str(230, "Name"))

	wall, _ := m.Get(100)
	_, ok := wall.Attr("Banana")
	assert.False(t, ok, "unknown attribute names do not resolve")

	placement, _ := m.Get(101)
	_, ok = placement.Attr("Name")
	assert.False(t, ok, "no layout known for IfcLocalPlacement")

	// Optional attributes resolve to an unset parameter, not a miss.
	site, _ := m.Get(30)
	lat, ok := site.Attr("RefLatitude")
	require.True(t, ok)
	assert.False(t, lat.IsSet())
}

func TestGUIDRootedOnly(t *testing.T) {
	m := parseSample(t)

	wall, _ := m.Get(100)
	assert.Equal(t, "2O2Fr$t4X7Zf8NOew3FL9r", wall.GUID())

	history, _ := m.Get(2)
	assert.Empty(t, history.GUID(), "IfcOwnerHistory is not rooted")

	point, _ := m.Get(22)
	assert.Empty(t, point.GUID())
}

func TestTypesAndCounts(t *testing.T) {
	m := parseSample(t)

	types := m.Types()
	assert.True(t, sort.StringsAreSorted(types))
	assert.Contains(t, types, "IfcWall")
	assert.Contains(t, types, "IfcBuildingStorey")
	assert.Contains(t, types, "IfcRelAggregates")

	counts := m.TypeCounts()
	assert.Equal(t, 2, counts["IfcWall"])
	assert.Equal(t, 2, counts["IfcBuildingStorey"])
	assert.Equal(t, 2, counts["IfcPropertySingleValue"])
	assert.Equal(t, 1, counts["IfcProject"])
}

func TestDerivedPropertySets(t *testing.T) {
	m := parseSample(t)

	sets := m.PropertySets(100)
	require.Len(t, sets, 2)
	name0, _ := sets[0].Attr("Name")
	name1, _ := sets[1].Attr("Name")
	assert.Equal(t, "Pset_WallCommon", name0.Str)
	assert.Equal(t, "Qto_WallBaseQuantities", name1.Str)

	assert.Empty(t, m.PropertySets(110), "south wall has no sets")
}

func TestDerivedTypeObjects(t *testing.T) {
	m := parseSample(t)

	for _, id := range []int64{100, 110} {
		typ := m.TypeObject(id)
		require.NotNil(t, typ, "#%d", id)
		assert.Equal(t, int64(220), typ.ID)
	}
	assert.Nil(t, m.TypeObject(120))
}

func TestDerivedMaterials(t *testing.T) {
	m := parseSample(t)

	mats := m.Materials(100)
	require.Len(t, mats, 1)
	name, _ := mats[0].Attr("Name")
	assert.Equal(t, "Concrete", name.Str)

	assert.Len(t, m.Materials(130), 1)
	assert.Empty(t, m.Materials(120))
}

func TestDerivedContainment(t *testing.T) {
	m := parseSample(t)

	require.NotNil(t, m.Container(100))
	assert.Equal(t, int64(32), m.Container(100).ID)
	assert.Equal(t, int64(33), m.Container(130).ID)
	assert.Nil(t, m.Container(30), "spatial elements are aggregated, not contained")

	storey := m.Storey(100)
	require.NotNil(t, storey)
	name, _ := storey.Attr("Name")
	assert.Equal(t, "Level 1", name.Str)

	assert.Equal(t, int64(33), m.Storey(130).ID)
	assert.Nil(t, m.Storey(30))
	assert.Nil(t, m.Storey(1))
}

func TestStoreyThroughAggregation(t *testing.T) {
	// A desk contained in a space reaches its storey through the
	// aggregation hierarchy.
	src := wrapData(`#1=IFCBUILDINGSTOREY('3O2Fr$t4X7Zf8NOew3FL10',$,'L1',$,$,$,$,$,.ELEMENT.,0.);
#2=IFCSPACE('3O2Fr$t4X7Zf8NOew3FL11',$,'Office',$,$,$,$,$,.ELEMENT.,$,$);
#3=IFCRELAGGREGATES('3O2Fr$t4X7Zf8NOew3FL12',$,$,$,#1,(#2));
#4=IFCFURNITURE('3O2Fr$t4X7Zf8NOew3FL13',$,'Desk',$,$,$,$,$);
#5=IFCRELCONTAINEDINSPATIALSTRUCTURE('3O2Fr$t4X7Zf8NOew3FL14',$,$,$,(#4),#2);`)
	m, err := Parse(context.Background(), src, Options{})
	require.NoError(t, err)

	assert.Equal(t, int64(2), m.Container(4).ID)
	storey := m.Storey(4)
	require.NotNil(t, storey)
	assert.Equal(t, int64(1), storey.ID)
}

func TestMaterialFlattening(t *testing.T) {
	src := wrapData(`#1=IFCWALL('2O2Fr$t4X7Zf8NOew3FL91',$,'Cavity Wall',$,$,$,$,$,$);
#2=IFCSLAB('2O2Fr$t4X7Zf8NOew3FL92',$,'Deck',$,$,$,$,$,.FLOOR.);
#10=IFCMATERIAL('Brick',$,$);
#11=IFCMATERIAL('Insulation',$,$);
#12=IFCMATERIALLAYER(#10,0.1,$,'Outer',$,$,$);
#13=IFCMATERIALLAYER(#11,0.05,$,'Core',$,$,$);
#14=IFCMATERIALLAYERSET((#12,#13),'CavityWallSet',$);
#15=IFCMATERIALLAYERSETUSAGE(#14,.AXIS2.,.POSITIVE.,0.,$);
#20=IFCRELASSOCIATESMATERIAL('3O2Fr$t4X7Zf8NOew3FL93',$,$,$,(#1),#15);
#21=IFCMATERIALLIST((#10,#10,#11));
#22=IFCRELASSOCIATESMATERIAL('3O2Fr$t4X7Zf8NOew3FL94',$,$,$,(#2),#21);`)
	m, err := Parse(context.Background(), src, Options{})
	require.NoError(t, err)

	names := func(id int64) []string {
		var out []string
		for _, mat := range m.Materials(id) {
			p, _ := mat.Attr("Name")
			out = append(out, p.Str)
		}
		return out
	}

	assert.Equal(t, []string{"Brick", "Insulation"}, names(1), "layer set usage flattens to leaf materials")
	assert.Equal(t, []string{"Brick", "Insulation"}, names(2), "duplicate list members collapse")
}

func TestInstancesAreFileOrdered(t *testing.T) {
	m := parseSample(t)
	insts := m.Instances()
	require.Equal(t, m.Len(), len(insts))
	for i := 1; i < len(insts); i++ {
		assert.Less(t, insts[i-1].ID, insts[i].ID, "sample ids are ascending in file order")
	}
}
