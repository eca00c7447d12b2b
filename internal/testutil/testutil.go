// Package testutil provides shared fixtures and assertion helpers for
// ifcpeek tests: a small but complete IFC4 sample model and ANSI-escape
// checks for output that must stay plain when not on a terminal.
package testutil

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

// SampleIFC is a minimal IFC4 project: two walls, a door and a slab on two
// storeys, with a property set, a quantity set, a wall type and a material
// bound to the north wall. Entity ids are stable; tests assert against
// them.
const SampleIFC = `ISO-10303-21;
HEADER;
FILE_DESCRIPTION(('ViewDefinition [CoordinationView]'),'2;1');
FILE_NAME('sample.ifc','2024-05-14T10:00:00',('Jane Doe'),('Acme Architects'),'ifcpeek sample 1.0','','');
FILE_SCHEMA(('IFC4'));
ENDSEC;
DATA;
#1=IFCPROJECT('0YvctVUKr0kugbFTf53O9L',#2,'Sample Project',$,$,'Sample','Design',(#20),#7);
#2=IFCOWNERHISTORY(#3,#6,$,.ADDED.,$,$,$,1577836800);
#3=IFCPERSONANDORGANIZATION(#4,#5,$);
#4=IFCPERSON($,'Doe','Jane',$,$,$,$,$);
#5=IFCORGANIZATION($,'Acme Architects',$,$,$);
#6=IFCAPPLICATION(#5,'1.0','IfcPeek Sample','ifcpeek');
#7=IFCUNITASSIGNMENT((#8));
#8=IFCSIUNIT(*,.LENGTHUNIT.,$,.METRE.);
#20=IFCGEOMETRICREPRESENTATIONCONTEXT($,'Model',3,1.0E-5,#21,$);
#21=IFCAXIS2PLACEMENT3D(#22,$,$);
#22=IFCCARTESIANPOINT((0.,0.,0.));
#30=IFCSITE('0YvctVUKr0kugbFTf53O9M',#2,'Site',$,$,$,$,$,.ELEMENT.,$,$,$,$,$);
#31=IFCBUILDING('0YvctVUKr0kugbFTf53O9N',#2,'Main Building',$,$,$,$,$,.ELEMENT.,$,$,$);
#32=IFCBUILDINGSTOREY('0YvctVUKr0kugbFTf53O9O',#2,'Level 1',$,$,$,$,$,.ELEMENT.,0.);
#33=IFCBUILDINGSTOREY('0YvctVUKr0kugbFTf53O9P',#2,'Level 2',$,$,$,$,$,.ELEMENT.,3.);
#40=IFCRELAGGREGATES('1YvctVUKr0kugbFTf53O9A',#2,$,$,#1,(#30));
#41=IFCRELAGGREGATES('1YvctVUKr0kugbFTf53O9B',#2,$,$,#30,(#31));
#42=IFCRELAGGREGATES('1YvctVUKr0kugbFTf53O9C',#2,$,$,#31,(#32,#33));
#100=IFCWALL('2O2Fr$t4X7Zf8NOew3FL9r',#2,'North Wall','Exterior wall',$,#101,$,'W-001',.SOLIDWALL.);
#101=IFCLOCALPLACEMENT($,#21);
#110=IFCWALL('2O2Fr$t4X7Zf8NOew3FLA3',#2,'South Wall',$,$,#101,$,'W-002',.SOLIDWALL.);
#120=IFCDOOR('2O2Fr$t4X7Zf8NOew3FLB7',#2,'Entry Door',$,$,#101,$,'D-001',2.1,0.9,.DOOR.,.SINGLE_SWING_LEFT.,$);
#130=IFCSLAB('2O2Fr$t4X7Zf8NOew3FLC2',#2,'Floor Slab',$,$,#101,$,'S-001',.FLOOR.);
#200=IFCPROPERTYSET('3O2Fr$t4X7Zf8NOew3FL00',#2,'Pset_WallCommon',$,(#201,#202));
#201=IFCPROPERTYSINGLEVALUE('FireRating',$,IFCLABEL('2HR'),$);
#202=IFCPROPERTYSINGLEVALUE('IsExternal',$,IFCBOOLEAN(.T.),$);
#203=IFCRELDEFINESBYPROPERTIES('3O2Fr$t4X7Zf8NOew3FL01',#2,$,$,(#100),#200);
#210=IFCELEMENTQUANTITY('3O2Fr$t4X7Zf8NOew3FL02',#2,'Qto_WallBaseQuantities',$,$,(#211));
#211=IFCQUANTITYAREA('NetSideArea',$,$,42.5,$);
#212=IFCRELDEFINESBYPROPERTIES('3O2Fr$t4X7Zf8NOew3FL03',#2,$,$,(#100),#210);
#220=IFCWALLTYPE('3O2Fr$t4X7Zf8NOew3FL04',#2,'Basic Wall 200',$,$,$,$,$,$,.SOLIDWALL.);
#221=IFCRELDEFINESBYTYPE('3O2Fr$t4X7Zf8NOew3FL05',#2,$,$,(#100,#110),#220);
#230=IFCMATERIAL('Concrete',$,$);
#231=IFCRELASSOCIATESMATERIAL('3O2Fr$t4X7Zf8NOew3FL06',#2,$,$,(#100,#130),#230);
#240=IFCRELCONTAINEDINSPATIALSTRUCTURE('3O2Fr$t4X7Zf8NOew3FL07',#2,$,$,(#100,#110,#120),#32);
#241=IFCRELCONTAINEDINSPATIALSTRUCTURE('3O2Fr$t4X7Zf8NOew3FL08',#2,$,$,(#130),#33);
ENDSEC;
END-ISO-10303-21;
`

// WriteSampleModel writes SampleIFC into a temp dir and returns its path.
func WriteSampleModel(t *testing.T) string {
	t.Helper()
	return WriteModel(t, "sample.ifc", SampleIFC)
}

// WriteModel writes content under the given name in a fresh temp dir and
// returns the full path.
func WriteModel(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// AssertNoANSI fails the test if the string contains ANSI color sequences.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("expected no ANSI escape sequences, got: %q", s)
	}
}

// StripANSI removes ANSI color sequences, leaving printable content.
func StripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}
