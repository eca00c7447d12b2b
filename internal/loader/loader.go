// Package loader opens a model file and prepares everything the shell
// needs from it: the parsed model behind the query engine, and the
// derived index that feeds tab completion and the /classes and /info
// builtins, cached across runs in the index database.
package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ifcpeek/ifcpeek/internal/cache"
	"github.com/ifcpeek/ifcpeek/internal/config"
	"github.com/ifcpeek/ifcpeek/internal/peekerr"
	"github.com/ifcpeek/ifcpeek/pkg/ifc"
	"github.com/ifcpeek/ifcpeek/pkg/selector"
)

// Options tunes loading. The zero value parses with default fan-out and
// no index cache.
type Options struct {
	// CacheDir is the directory holding the index database. Empty
	// disables the cache; the index is then rebuilt on every load.
	CacheDir string

	// Workers bounds the record-parse fan-out. Zero means GOMAXPROCS.
	Workers int

	Logger *slog.Logger
}

// Model is a loaded model plus its index. It is the query engine the
// shell runs against; all methods are read-only and safe for concurrent
// use.
type Model struct {
	model *ifc.Model
	index *cache.Index
	path  string
	log   *slog.Logger
}

// Info summarizes a loaded model for the /info builtin and doctor.
type Info struct {
	Path     string
	Schema   string
	Entities int
	Classes  int
	Header   ifc.Header
}

// Load validates, parses and indexes the model at path. Validation and
// parse failures carry taxonomy kinds; index-cache trouble is logged and
// never fails the load.
func Load(ctx context.Context, path string, opts Options) (*Model, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	if err := config.ValidateModelPath(path); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	log.Debug("parsing model", "path", abs)
	m, err := ifc.ParseFile(ctx, abs, ifc.Options{Workers: opts.Workers})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, peekerr.Wrap(peekerr.KindInvalidModel, err, "failed to parse %s", path)
	}
	log.Info("model loaded", "path", abs, "schema", m.Schema(), "entities", m.Len())

	lm := &Model{model: m, path: abs, log: log}
	lm.index = lm.loadIndex(opts.CacheDir)
	return lm, nil
}

// loadIndex returns the model index, from the cache when a row matches
// the file's size and mtime and rebuilt otherwise.
func (lm *Model) loadIndex(cacheDir string) *cache.Index {
	if cacheDir == "" {
		return cache.BuildIndex(lm.model)
	}
	info, err := os.Stat(lm.path)
	if err != nil {
		return cache.BuildIndex(lm.model)
	}

	store, err := cache.Open(cacheDir)
	if err != nil {
		lm.log.Warn("index cache unavailable", "dir", cacheDir, "error", err)
		return cache.BuildIndex(lm.model)
	}
	defer func() { _ = store.Close() }()

	size, mtime := info.Size(), info.ModTime().UnixNano()
	idx, ok, err := store.Get(lm.path, size, mtime)
	if err != nil {
		lm.log.Warn("index cache read failed", "error", err)
	} else if ok {
		lm.log.Debug("index cache hit", "path", lm.path)
		return idx
	}

	idx = cache.BuildIndex(lm.model)
	if err := store.Put(lm.path, size, mtime, idx); err != nil {
		lm.log.Warn("index cache write failed", "error", err)
	}
	return idx
}

// Filter runs a filter query and returns one SPF line per matched
// instance, in file order.
func (lm *Model) Filter(query string) ([]string, error) {
	instances, err := selector.Select(lm.model, query)
	if err != nil {
		return nil, peekerr.Classify(peekerr.KindQuery, err)
	}
	lines := make([]string, len(instances))
	for i, inst := range instances {
		lines[i] = inst.String()
	}
	return lines, nil
}

// Extract runs a combined query: the filter selects instances, then each
// value query is evaluated per instance. A parse failure in any part
// fails the whole query; a value that does not resolve on some instance
// becomes an empty cell in that row.
func (lm *Model) Extract(filterQuery string, valueQueries []string) ([][]string, error) {
	f, err := selector.ParseFilter(filterQuery)
	if err != nil {
		return nil, peekerr.Classify(peekerr.KindQuery, err)
	}
	values := make([]*selector.Value, len(valueQueries))
	for i, src := range valueQueries {
		v, err := selector.ParseValue(src)
		if err != nil {
			return nil, peekerr.Classify(peekerr.KindQuery, fmt.Errorf("value query %q: %w", src, err))
		}
		values[i] = v
	}

	instances := f.Eval(lm.model)
	rows := make([][]string, len(instances))
	for i, inst := range instances {
		row := make([]string, len(values))
		for j, v := range values {
			cell, err := v.Eval(lm.model, inst)
			if err != nil {
				lm.log.Debug("value extraction miss", "query", v.Source(), "entity", inst.ID, "error", err)
				continue
			}
			row[j] = cell
		}
		rows[i] = row
	}
	return rows, nil
}

// Info reports the loaded model's vitals.
func (lm *Model) Info() Info {
	return Info{
		Path:     lm.path,
		Schema:   lm.model.Schema(),
		Entities: lm.model.Len(),
		Classes:  len(lm.index.Classes),
		Header:   lm.model.Header,
	}
}

// Index returns the derived model index.
func (lm *Model) Index() *cache.Index {
	return lm.index
}
