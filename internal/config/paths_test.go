package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifcpeek/ifcpeek/internal/peekerr"
)

func TestStateDirHonorsXDG(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_STATE_HOME", base)

	dir, err := StateDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "ifcpeek"), dir)

	fi, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())
}

func TestStateDirFallsBackToHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_STATE_HOME", "")
	t.Setenv("HOME", home)

	dir, err := StateDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".local", "state", "ifcpeek"), dir)
}

func TestHistoryFileInsideStateDir(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_STATE_HOME", base)

	path, err := HistoryFile()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "ifcpeek", "history"), path)

	// The file itself is created lazily, not here.
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestCacheDirHonorsXDG(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", base)

	dir, err := CacheDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "ifcpeek"), dir)
}

func TestStateDirCreationFailure(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "blocked")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
	t.Setenv("XDG_STATE_HOME", blocker)

	_, err := StateDir()
	require.Error(t, err)
	assert.Equal(t, peekerr.KindConfiguration, peekerr.KindOf(err))
}

func TestFindConfigFilePrefersWorkingDirectory(t *testing.T) {
	wd := t.TempDir()
	cfgHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", cfgHome)
	t.Chdir(wd)

	assert.Empty(t, FindConfigFile())

	userCfg := filepath.Join(cfgHome, "ifcpeek")
	require.NoError(t, os.MkdirAll(userCfg, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(userCfg, "config.yaml"), []byte("color: never\n"), 0o600))
	assert.Equal(t, filepath.Join(userCfg, "config.yaml"), FindConfigFile())

	require.NoError(t, os.WriteFile(filepath.Join(wd, "ifcpeek.yaml"), []byte("color: never\n"), 0o600))
	assert.Equal(t, "ifcpeek.yaml", FindConfigFile())
}

func TestValidateModelPath(t *testing.T) {
	dir := t.TempDir()

	ifcPath := filepath.Join(dir, "model.ifc")
	require.NoError(t, os.WriteFile(ifcPath, []byte("ISO-10303-21;\nEND-ISO-10303-21;\n"), 0o600))

	upperPath := filepath.Join(dir, "MODEL.IFC")
	require.NoError(t, os.WriteFile(upperPath, []byte("data"), 0o600))

	headerPath := filepath.Join(dir, "model.dat")
	require.NoError(t, os.WriteFile(headerPath, []byte("ISO-10303-21;\nHEADER;\n"), 0o600))

	textPath := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(textPath, []byte("just some text"), 0o600))

	tests := []struct {
		name     string
		path     string
		wantKind peekerr.Kind
	}{
		{"ifc extension", ifcPath, peekerr.KindUnknown},
		{"uppercase extension", upperPath, peekerr.KindUnknown},
		{"wrong extension with step header", headerPath, peekerr.KindUnknown},
		{"wrong extension without header", textPath, peekerr.KindInvalidModel},
		{"missing file", filepath.Join(dir, "nope.ifc"), peekerr.KindFileNotFound},
		{"directory", dir, peekerr.KindFileNotFound},
		{"empty path", "", peekerr.KindFileNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateModelPath(tt.path)
			if tt.wantKind == peekerr.KindUnknown {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, peekerr.KindOf(err))
		})
	}
}
