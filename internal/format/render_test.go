package format

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifcpeek/ifcpeek/internal/testutil"
)

func TestParseMode(t *testing.T) {
	for input, want := range map[string]Mode{
		"tsv":   ModeTSV,
		"TABLE": ModeTable,
		"csv":   ModeCSV,
		"Json":  ModeJSON,
	} {
		got, err := ParseMode(input)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseMode("xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
	assert.Contains(t, err.Error(), "tsv, table, csv, json")
}

func TestRenderSPF(t *testing.T) {
	var buf bytes.Buffer
	RenderSPF(&buf, NewHighlighter(false), []string{
		"#100=IFCWALL('a',$);",
		"#110=IFCWALL('b',$);",
	})

	assert.Equal(t, "#100=IFCWALL('a',$);\n#110=IFCWALL('b',$);\n", buf.String())
	testutil.AssertNoANSI(t, buf.String())

	buf.Reset()
	RenderSPF(&buf, NewHighlighter(true), []string{"#100=IFCWALL('a',$);"})
	assert.Contains(t, buf.String(), paintSpan(ansiID, "#100"))
}

func TestRenderTSV(t *testing.T) {
	var buf bytes.Buffer
	err := RenderRows(&buf, ModeTSV, []string{"Name", "FireRating"}, [][]string{
		{"North Wall", "2HR"},
		{"South Wall", ""},
	})
	require.NoError(t, err)

	// No header line, values joined by tabs, missing values as empty
	// cells.
	assert.Equal(t, "North Wall\t2HR\nSouth Wall\t\n", buf.String())

	buf.Reset()
	require.NoError(t, RenderRows(&buf, ModeTSV, []string{"Name"}, nil))
	assert.Equal(t, "", buf.String())
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	err := RenderRows(&buf, ModeTable, []string{"Name", "FireRating"}, [][]string{
		{"North Wall", "2HR"},
		{"South Wall", ""},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "North Wall")
	assert.Contains(t, out, "South Wall")
	assert.Contains(t, out, "(2 rows)")
}

func TestRenderTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderRows(&buf, ModeTable, []string{"Name"}, nil))
	assert.Equal(t, "(0 rows)\n", buf.String())
}

func TestRenderCSV(t *testing.T) {
	var buf bytes.Buffer
	err := RenderRows(&buf, ModeCSV, []string{"Name", `concat(Name, ", ", Tag)`}, [][]string{
		{"North Wall", "North Wall, W-001"},
		{`say "hi"`, "two\nlines"},
	})
	require.NoError(t, err)

	want := strings.Join([]string{
		`Name,"concat(Name, "", "", Tag)"`,
		`North Wall,"North Wall, W-001"`,
		`"say ""hi""","two` + "\n" + `lines"`,
	}, "\n") + "\n"
	assert.Equal(t, want, buf.String())
}

func TestEscapeCSV(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"simple", "simple"},
		{"with,comma", `"with,comma"`},
		{`with"quote`, `"with""quote"`},
		{"with\nnewline", `"with
newline"`},
		{`complex,"values"`, `"complex,""values"""`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, escapeCSV(tt.input))
	}
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	err := RenderRows(&buf, ModeJSON, []string{"Name", "id"}, [][]string{
		{"North Wall", "100"},
	})
	require.NoError(t, err)

	want := `[
  {
    "Name": "North Wall",
    "id": "100"
  }
]
`
	assert.Equal(t, want, buf.String())
}

func TestRenderJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderRows(&buf, ModeJSON, []string{"Name"}, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestRenderJSONPadsShortRows(t *testing.T) {
	var buf bytes.Buffer
	err := RenderRows(&buf, ModeJSON, []string{"Name", "Tag"}, [][]string{{"North Wall"}})
	require.NoError(t, err)

	want := `[
  {
    "Name": "North Wall",
    "Tag": ""
  }
]
`
	assert.Equal(t, want, buf.String())
}
