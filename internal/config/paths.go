// Package config resolves the per-user filesystem locations the shell
// depends on (state, cache, config) and performs the cheap pre-parse
// validation of model file paths.
package config

import (
	"os"
	"path/filepath"

	"github.com/ifcpeek/ifcpeek/internal/peekerr"
)

const appDirName = "ifcpeek"

// HistoryFileName is the history file kept inside the state directory.
const HistoryFileName = "history"

// ConfigFileName is the YAML config file looked up in the config directory
// or the working directory.
const ConfigFileName = "ifcpeek.yaml"

// StateDir returns the per-user state directory, creating it if absent.
// Honors XDG_STATE_HOME, falling back to ~/.local/state.
func StateDir() (string, error) {
	dir, err := xdgDir("XDG_STATE_HOME", filepath.Join(".local", "state"))
	if err != nil {
		return "", err
	}
	return ensureDir(dir)
}

// HistoryFile returns the path of the persistent history file. The file
// itself is created lazily by the line reader; only its directory is
// guaranteed to exist.
func HistoryFile() (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, HistoryFileName), nil
}

// CacheDir returns the per-user cache directory, creating it if absent.
// Honors XDG_CACHE_HOME, falling back to ~/.cache.
func CacheDir() (string, error) {
	dir, err := xdgDir("XDG_CACHE_HOME", ".cache")
	if err != nil {
		return "", err
	}
	return ensureDir(dir)
}

// ConfigDir returns the per-user configuration directory without creating
// it. Honors XDG_CONFIG_HOME, falling back to ~/.config.
func ConfigDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// EnsureConfigDir returns the configuration directory, creating it if
// absent. Used by "config init"; normal startup never creates it.
func EnsureConfigDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return ensureDir(dir)
}

// FindConfigFile returns the first existing config file among the working
// directory and the user config directory, or "" if none exists.
func FindConfigFile() string {
	if fi, err := os.Stat(ConfigFileName); err == nil && fi.Mode().IsRegular() {
		return ConfigFileName
	}
	dir, err := ConfigDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(dir, "config.yaml")
	if fi, err := os.Stat(path); err == nil && fi.Mode().IsRegular() {
		return path
	}
	return ""
}

func xdgDir(envVar, homeFallback string) (string, error) {
	if base := os.Getenv(envVar); base != "" {
		return filepath.Join(base, appDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", peekerr.Wrap(peekerr.KindConfiguration, err, "resolving home directory")
	}
	return filepath.Join(home, homeFallback, appDirName), nil
}

func ensureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", peekerr.Wrap(peekerr.KindConfiguration, err, "creating directory %s", dir)
	}
	return dir, nil
}
