package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifcpeek/ifcpeek/internal/cli/config"
	"github.com/ifcpeek/ifcpeek/internal/peekerr"
)

func runConfigCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewConfigCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

func TestConfigInitWritesCommentedDefaults(t *testing.T) {
	isolate(t)

	out, err := runConfigCmd(t, "init")
	require.NoError(t, err)

	path := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "ifcpeek", "config.yaml")
	assert.Contains(t, out, "Wrote "+path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	text := string(content)
	for _, want := range []string{
		"# ifcpeek configuration",
		"# Query history location",
		`history_file: ""`,
		"color: auto",
		"format: tsv",
		"prompt: '> '",
		"no_cache: false",
		"force_interactive: false",
	} {
		assert.Contains(t, text, want)
	}
}

func TestConfigInitRoundTrips(t *testing.T) {
	isolate(t)

	_, err := runConfigCmd(t, "init")
	require.NoError(t, err)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg, err := config.Load("", flags)
	require.NoError(t, err, "generated config file should load cleanly")

	def := config.Default()
	assert.Equal(t, def.Color, cfg.Color)
	assert.Equal(t, def.Format, cfg.Format)
	assert.Equal(t, def.Prompt, cfg.Prompt)
	assert.False(t, cfg.NoCache)
	assert.Equal(t, filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "ifcpeek", "config.yaml"), cfg.File)

	// The empty path settings resolve to the per-user defaults.
	assert.NotEmpty(t, cfg.HistoryFile)
	assert.NotEmpty(t, cfg.CacheDir)
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	isolate(t)

	_, err := runConfigCmd(t, "init")
	require.NoError(t, err)

	_, err = runConfigCmd(t, "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	assert.Equal(t, peekerr.KindConfiguration, peekerr.KindOf(err))

	_, err = runConfigCmd(t, "init", "--force")
	require.NoError(t, err)
}

func TestConfigPathDefaults(t *testing.T) {
	isolate(t)

	out, err := runConfigCmd(t, "path")
	require.NoError(t, err)

	assert.Contains(t, out, "config:   ")
	assert.Contains(t, out, "(not found)")
	assert.Contains(t, out, filepath.Join(os.Getenv("XDG_STATE_HOME"), "ifcpeek", "history"))
	assert.Contains(t, out, filepath.Join(os.Getenv("XDG_CACHE_HOME"), "ifcpeek"))
}

func TestConfigPathAfterInit(t *testing.T) {
	isolate(t)

	_, err := runConfigCmd(t, "init")
	require.NoError(t, err)

	out, err := runConfigCmd(t, "path")
	require.NoError(t, err)

	assert.Contains(t, out, filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "ifcpeek", "config.yaml"))
	assert.NotContains(t, out, "(not found)")
}

func TestConfigCommandMetadata(t *testing.T) {
	cmd := NewConfigCommand()
	assert.Equal(t, "config", cmd.Use)

	names := make([]string, 0, 2)
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "init")
	assert.Contains(t, names, "path")
}
