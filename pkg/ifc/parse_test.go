package ifc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifcpeek/ifcpeek/internal/testutil"
)

// wrapData puts data records into a minimal STEP envelope.
func wrapData(records string) []byte {
	return []byte("ISO-10303-21;\nHEADER;\nFILE_SCHEMA(('IFC4'));\nENDSEC;\nDATA;\n" +
		records + "\nENDSEC;\nEND-ISO-10303-21;\n")
}

func TestParseSampleModel(t *testing.T) {
	m, err := Parse(context.Background(), []byte(testutil.SampleIFC), Options{})
	require.NoError(t, err)

	assert.Equal(t, 36, m.Len())
	assert.Equal(t, "IFC4", m.Schema())

	wall, ok := m.Get(100)
	require.True(t, ok)
	assert.Equal(t, "IFCWALL", wall.Type)
	assert.Len(t, wall.Params, 9)
	assert.Equal(t, "2O2Fr$t4X7Zf8NOew3FL9r", wall.GUID())

	_, ok = m.Get(999)
	assert.False(t, ok)
}

func TestParseHeader(t *testing.T) {
	m, err := Parse(context.Background(), []byte(testutil.SampleIFC), Options{})
	require.NoError(t, err)

	h := m.Header
	assert.Equal(t, []string{"ViewDefinition [CoordinationView]"}, h.Description)
	assert.Equal(t, "2;1", h.ImplementationLevel, "semicolon inside a string must not split the record")
	assert.Equal(t, "sample.ifc", h.Name)
	assert.Equal(t, "2024-05-14T10:00:00", h.Timestamp)
	assert.Equal(t, []string{"Jane Doe"}, h.Authors)
	assert.Equal(t, []string{"Acme Architects"}, h.Organizations)
	assert.Equal(t, "ifcpeek sample 1.0", h.PreprocessorVersion)
	assert.Equal(t, "IFC4", h.Schema)
}

func TestParseParamKinds(t *testing.T) {
	src := wrapData(`#1=IFCTEST($,*,#2,'ab''c',12,-3.5,2.0E3,.RED.,"0AF",(1,(2)),IFCLABEL('x'));`)
	m, err := Parse(context.Background(), src, Options{})
	require.NoError(t, err)

	inst, ok := m.Get(1)
	require.True(t, ok)
	require.Len(t, inst.Params, 11)

	p := inst.Params
	assert.Equal(t, ParamUnset, p[0].Kind)
	assert.Equal(t, ParamDerived, p[1].Kind)

	assert.Equal(t, ParamRef, p[2].Kind)
	assert.Equal(t, int64(2), p[2].Ref)

	assert.Equal(t, ParamString, p[3].Kind)
	assert.Equal(t, "ab'c", p[3].Str, "doubled quote collapses")

	assert.Equal(t, ParamInteger, p[4].Kind)
	assert.Equal(t, 12.0, p[4].Num)

	assert.Equal(t, ParamReal, p[5].Kind)
	assert.Equal(t, -3.5, p[5].Num)

	assert.Equal(t, ParamReal, p[6].Kind, "exponent implies a real")
	assert.Equal(t, 2000.0, p[6].Num)

	assert.Equal(t, ParamEnum, p[7].Kind)
	assert.Equal(t, "RED", p[7].Str)

	assert.Equal(t, ParamBinary, p[8].Kind)
	assert.Equal(t, "0AF", p[8].Str)

	require.Equal(t, ParamList, p[9].Kind)
	require.Len(t, p[9].List, 2)
	assert.Equal(t, ParamInteger, p[9].List[0].Kind)
	assert.Equal(t, ParamList, p[9].List[1].Kind, "lists nest")

	require.Equal(t, ParamTyped, p[10].Kind)
	assert.Equal(t, "IFCLABEL", p[10].Str)
	require.Len(t, p[10].List, 1)
	assert.Equal(t, "x", p[10].List[0].Str)
}

func TestParseRecordLayout(t *testing.T) {
	// Records may span lines and carry whitespace anywhere outside
	// literals. Comments are allowed between records.
	src := []byte(`ISO-10303-21;
HEADER; ENDSEC;
DATA;
/* a wall, wrapped */
#1 = IFCWALL (
    'deadbeefdeadbeefdead12', $, 'Wrapped Wall',
    $, $, $, $, 'W-9', .SOLIDWALL.
);
ENDSEC;
END-ISO-10303-21;`)
	m, err := Parse(context.Background(), src, Options{})
	require.NoError(t, err)

	inst, ok := m.Get(1)
	require.True(t, ok)
	name, ok := inst.Attr("Name")
	require.True(t, ok)
	assert.Equal(t, "Wrapped Wall", name.Str)
}

func TestParseLowercaseKeywords(t *testing.T) {
	src := wrapData(`#1=IfcWall('deadbeefdeadbeefdead12',$, 'w',$,$,$,$,$,$);`)
	m, err := Parse(context.Background(), src, Options{})
	require.NoError(t, err)

	inst, _ := m.Get(1)
	assert.Equal(t, "IFCWALL", inst.Type, "type names normalize to upper case")
	assert.Len(t, m.ByTypeExact("ifcwall"), 1)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantMsg string
	}{
		{
			name:    "not a step file",
			src:     "PK\x03\x04 some zip;",
			wantMsg: "ISO-10303-21",
		},
		{
			name:    "empty input",
			src:     "",
			wantMsg: "empty input",
		},
		{
			name:    "missing end marker",
			src:     "ISO-10303-21;\nHEADER;\nENDSEC;\nDATA;\nENDSEC;\n",
			wantMsg: "END-ISO-10303-21",
		},
		{
			name:    "unterminated record",
			src:     "ISO-10303-21;\nHEADER;\nENDSEC;\nDATA;\n#1=IFCWALL(",
			wantMsg: "missing ';'",
		},
		{
			name:    "unterminated string",
			src:     "ISO-10303-21;\nHEADER;\nENDSEC;\nDATA;\n#1=IFCWALL('oops);",
			wantMsg: "unterminated string",
		},
		{
			name:    "comment inside record",
			src:     "ISO-10303-21;\nHEADER;\nENDSEC;\nDATA;\n#1=IFCWALL(/*x*/$);",
			wantMsg: "comment inside a record",
		},
		{
			name:    "duplicate id",
			src:     string(wrapData("#1=IFCWALL($);\n#1=IFCDOOR($);")),
			wantMsg: "duplicate entity id",
		},
		{
			name:    "missing id",
			src:     string(wrapData("IFCWALL($);")),
			wantMsg: "expected '#'",
		},
		{
			name:    "bad enum",
			src:     string(wrapData("#1=IFCWALL(.red.);")),
			wantMsg: "invalid enumeration",
		},
		{
			name:    "trailing garbage",
			src:     string(wrapData("#1=IFCWALL($) junk;")),
			wantMsg: "trailing characters",
		},
		{
			name:    "bad escape in string",
			src:     string(wrapData(`#1=IFCWALL('\Q');`)),
			wantMsg: "bad string literal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(context.Background(), []byte(tt.src), Options{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)

			var perr *ParseError
			require.True(t, errors.As(err, &perr), "parse failures carry a ParseError")
			assert.Greater(t, perr.Line, 0)
		})
	}
}

func TestParseErrorLineNumbers(t *testing.T) {
	src := []byte("ISO-10303-21;\nHEADER;\nENDSEC;\nDATA;\n#1=IFCWALL($);\n#2=IFCDOOR(@);\nENDSEC;\nEND-ISO-10303-21;")
	_, err := Parse(context.Background(), src, Options{})
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 6, perr.Line)
	assert.Equal(t, int64(2), perr.ID)
}

func TestParseLargeModelParallel(t *testing.T) {
	var b strings.Builder
	const n = 2000
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "#%d=IFCCARTESIANPOINT((1.,2.,3.));\n", i)
	}
	m, err := Parse(context.Background(), wrapData(b.String()), Options{Workers: 4})
	require.NoError(t, err)
	require.Equal(t, n, m.Len())

	inst, ok := m.Get(n)
	require.True(t, ok)
	assert.Equal(t, "IFCCARTESIANPOINT", inst.Type)

	// File order survives the fan-out.
	assert.Equal(t, int64(1), m.Instances()[0].ID)
	assert.Equal(t, int64(n), m.Instances()[n-1].ID)
}

func TestParseCanceledContext(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 2000; i++ {
		fmt.Fprintf(&b, "#%d=IFCCARTESIANPOINT((0.));\n", i)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Parse(ctx, wrapData(b.String()), Options{Workers: 4})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseFile(t *testing.T) {
	path := testutil.WriteSampleModel(t)
	m, err := ParseFile(context.Background(), path, Options{})
	require.NoError(t, err)
	assert.Equal(t, path, m.Path)
	assert.Equal(t, 36, m.Len())
}

func TestParseFileMissing(t *testing.T) {
	_, err := ParseFile(context.Background(), "/nonexistent/model.ifc", Options{})
	require.Error(t, err)
}

func TestInstanceStringRoundTrip(t *testing.T) {
	m, err := Parse(context.Background(), []byte(testutil.SampleIFC), Options{})
	require.NoError(t, err)

	lines := map[int64]string{
		100: `#100=IFCWALL('2O2Fr$t4X7Zf8NOew3FL9r',#2,'North Wall','Exterior wall',$,#101,$,'W-001',.SOLIDWALL.);`,
		8:   `#8=IFCSIUNIT(*,.LENGTHUNIT.,$,.METRE.);`,
		22:  `#22=IFCCARTESIANPOINT((0.,0.,0.));`,
		20:  `#20=IFCGEOMETRICREPRESENTATIONCONTEXT($,'Model',3,1.0E-5,#21,$);`,
		201: `#201=IFCPROPERTYSINGLEVALUE('FireRating',$,IFCLABEL('2HR'),$);`,
	}
	for id, want := range lines {
		inst, ok := m.Get(id)
		require.True(t, ok, "#%d", id)
		assert.Equal(t, want, inst.String())
	}
}

func TestInstanceStringQuoting(t *testing.T) {
	src := wrapData(`#1=IFCWALL('it''s a wall');`)
	m, err := Parse(context.Background(), src, Options{})
	require.NoError(t, err)

	inst, _ := m.Get(1)
	assert.Equal(t, "it's a wall", inst.Params[0].Str)
	assert.Equal(t, `#1=IFCWALL('it''s a wall');`, inst.String())
}
