// Package format renders shell output: SPF result lines with syntax
// highlighting, extraction rows as tsv, table, csv or json, the framed
// error reports, and the lipgloss styles for shell chrome.
package format

import (
	"fmt"
	"os"
	"strings"
)

// ColorMode is the configured color preference.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode validates a color mode from config or flags.
func ParseColorMode(s string) (ColorMode, error) {
	switch mode := ColorMode(strings.ToLower(s)); mode {
	case ColorAuto, ColorAlways, ColorNever:
		return mode, nil
	}
	return "", fmt.Errorf("invalid color mode %q (valid: auto, always, never)", s)
}

// EnableColor decides whether output gets escape sequences. FORCE_COLOR
// and NO_COLOR (presence, not value) override everything, then the
// configured mode, then terminal detection. TERM=dumb never gets colors.
func EnableColor(mode ColorMode, stdoutTTY bool) bool {
	if _, ok := os.LookupEnv("FORCE_COLOR"); ok {
		return true
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if !stdoutTTY {
		return false
	}
	if term := os.Getenv("TERM"); term == "" || term == "dumb" {
		return false
	}
	return true
}
