package cache

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifcpeek/ifcpeek/internal/testutil"
	"github.com/ifcpeek/ifcpeek/pkg/ifc"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleIndex() *Index {
	return &Index{
		Schema:      "IFC4",
		EntityCount: 36,
		Classes:     []ClassCount{{Name: "IfcDoor", Count: 1}, {Name: "IfcWall", Count: 2}},
		Attributes:  map[string][]string{"IfcWall": {"GlobalId", "Name"}},
		PsetNames:   []string{"Pset_WallCommon"},
		PsetProps:   map[string][]string{"Pset_WallCommon": {"FireRating", "IsExternal"}},
	}
}

func TestStoreOpenCreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	assert.Equal(t, filepath.Join(dir, FileName), s.Path())
	_, err = os.Stat(s.Path())
	assert.NoError(t, err)
}

func TestStoreOpenIsIdempotent(t *testing.T) {
	dir := t.TempDir()

	s1, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s1.Put("/m.ifc", 10, 20, sampleIndex()))
	require.NoError(t, s1.Close())

	// Reopening must keep existing rows; the schema is create-if-missing.
	s2, err := Open(dir)
	require.NoError(t, err)
	defer func() { _ = s2.Close() }()

	_, ok, err := s2.Get("/m.ifc", 10, 20)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStoreGetMiss(t *testing.T) {
	s := setupStore(t)

	idx, ok, err := s.Get("/nope.ifc", 1, 2)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, idx)
}

func TestStorePutGetRoundTrip(t *testing.T) {
	s := setupStore(t)
	want := sampleIndex()

	require.NoError(t, s.Put("/m.ifc", 1234, 5678, want))

	got, ok, err := s.Get("/m.ifc", 1234, 5678)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestStorePutReplacesStaleRows(t *testing.T) {
	s := setupStore(t)

	old := sampleIndex()
	require.NoError(t, s.Put("/m.ifc", 100, 1, old))

	fresh := sampleIndex()
	fresh.EntityCount = 99
	require.NoError(t, s.Put("/m.ifc", 120, 2, fresh))

	_, ok, err := s.Get("/m.ifc", 100, 1)
	require.NoError(t, err)
	assert.False(t, ok, "rows for the old file version must be dropped")

	got, ok, err := s.Get("/m.ifc", 120, 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 99, got.EntityCount)

	n, err := s.Entries()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStoreKeepsDistinctPaths(t *testing.T) {
	s := setupStore(t)

	require.NoError(t, s.Put("/a.ifc", 1, 1, sampleIndex()))
	require.NoError(t, s.Put("/b.ifc", 1, 1, sampleIndex()))

	n, err := s.Entries()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestStoreCloseNil(t *testing.T) {
	var s *Store
	assert.NoError(t, s.Close())
	assert.Equal(t, "", s.Path())
}

// --- Error paths (mocked connection) ---

func TestStoreGetQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT payload FROM model_index").WillReturnError(assert.AnError)

	s := NewWithDB(db)
	_, _, err = s.Get("/m.ifc", 1, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to query index")
}

func TestStoreGetCorruptPayload(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	rows := sqlmock.NewRows([]string{"payload"}).AddRow("{not json")
	mock.ExpectQuery("SELECT payload FROM model_index").WillReturnRows(rows)

	s := NewWithDB(db)
	_, _, err = s.Get("/m.ifc", 1, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode cached index")
}

func TestStorePutInsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM model_index").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO model_index").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	s := NewWithDB(db)
	err = s.Put("/m.ifc", 1, 2, sampleIndex())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to store index")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- Index derivation ---

func TestBuildIndex(t *testing.T) {
	m, err := ifc.Parse(context.Background(), []byte(testutil.SampleIFC), ifc.Options{})
	require.NoError(t, err)

	idx := BuildIndex(m)

	assert.Equal(t, "IFC4", idx.Schema)
	assert.Equal(t, m.Len(), idx.EntityCount)

	counts := make(map[string]int)
	for _, c := range idx.Classes {
		counts[c.Name] = c.Count
	}
	assert.Equal(t, 2, counts["IfcWall"])
	assert.Equal(t, 1, counts["IfcDoor"])
	assert.Equal(t, 2, counts["IfcBuildingStorey"])
	assert.Contains(t, counts, "IFCCARTESIANPOINT", "types outside the bundled hierarchy keep their file spelling")

	assert.True(t, sort.StringsAreSorted(idx.ClassNames()))

	require.Contains(t, idx.Attributes, "IfcWall")
	assert.Contains(t, idx.Attributes["IfcWall"], "Name")
	assert.NotContains(t, idx.Attributes, "IFCCARTESIANPOINT")

	assert.Equal(t, []string{"Pset_WallCommon", "Qto_WallBaseQuantities"}, idx.PsetNames)
	assert.Equal(t, []string{"FireRating", "IsExternal"}, idx.PsetProps["Pset_WallCommon"])
	assert.Equal(t, []string{"NetSideArea"}, idx.PsetProps["Qto_WallBaseQuantities"])
}

func TestBuildIndexMergesRepeatedSets(t *testing.T) {
	const model = `ISO-10303-21;
HEADER;
FILE_DESCRIPTION((''),'2;1');
FILE_NAME('','',(''),(''),'','','');
FILE_SCHEMA(('IFC4'));
ENDSEC;
DATA;
#1=IFCWALL('2O2Fr$t4X7Zf8NOew3FL9r',$,'W1',$,$,$,$,$,$);
#2=IFCWALL('2O2Fr$t4X7Zf8NOew3FL9s',$,'W2',$,$,$,$,$,$);
#10=IFCPROPERTYSINGLEVALUE('FireRating',$,IFCLABEL('2HR'),$);
#11=IFCPROPERTYSINGLEVALUE('AcousticRating',$,IFCLABEL('52dB'),$);
#20=IFCPROPERTYSET('0o2Fr$t4X7Zf8NOew3FL9r',$,'Pset_WallCommon',$,(#10));
#21=IFCPROPERTYSET('0o2Fr$t4X7Zf8NOew3FL9s',$,'Pset_WallCommon',$,(#10,#11));
#30=IFCRELDEFINESBYPROPERTIES('1o2Fr$t4X7Zf8NOew3FL9r',$,$,$,(#1),#20);
#31=IFCRELDEFINESBYPROPERTIES('1o2Fr$t4X7Zf8NOew3FL9s',$,$,$,(#2),#21);
ENDSEC;
END-ISO-10303-21;
`
	m, err := ifc.Parse(context.Background(), []byte(model), ifc.Options{})
	require.NoError(t, err)

	idx := BuildIndex(m)

	assert.Equal(t, []string{"Pset_WallCommon"}, idx.PsetNames)
	assert.Equal(t, []string{"AcousticRating", "FireRating"}, idx.PsetProps["Pset_WallCommon"])
}
