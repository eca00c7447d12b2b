package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/ifcpeek/ifcpeek/internal/peekerr"
)

// stepMagic is the leading token of an ISO 10303-21 exchange file.
var stepMagic = []byte("ISO-10303-21")

// sniffLen bounds how far ValidateModelPath reads when checking for the
// STEP header. Real files carry it within the first few bytes; the margin
// tolerates comments and a BOM.
const sniffLen = 1024

// ValidateModelPath performs the cheap filesystem checks that precede the
// expensive parse: the path must name an existing, regular, readable file,
// and must either carry the .ifc extension or start with a STEP header.
// File content beyond the header sniff is the loader's job.
func ValidateModelPath(path string) error {
	if path == "" {
		return peekerr.New(peekerr.KindFileNotFound, "no model file given")
	}

	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return peekerr.New(peekerr.KindFileNotFound, "model file not found: %s", path)
		}
		return peekerr.Wrap(peekerr.KindFileNotFound, err, "cannot access model file %s", path)
	}
	if !fi.Mode().IsRegular() {
		return peekerr.New(peekerr.KindFileNotFound, "not a regular file: %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return peekerr.Wrap(peekerr.KindFileNotFound, err, "cannot read model file %s", path)
	}
	defer func() { _ = f.Close() }()

	if strings.EqualFold(filepath.Ext(path), ".ifc") {
		return nil
	}

	// Unexpected extension: accept anyway if the content announces itself
	// as a STEP file.
	buf := make([]byte, sniffLen)
	n, _ := f.Read(buf)
	if bytes.Contains(buf[:n], stepMagic) {
		return nil
	}
	return peekerr.New(peekerr.KindInvalidModel,
		"%s does not look like an IFC file (expected .ifc extension or ISO-10303-21 header)", path)
}
