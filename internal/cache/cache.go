// Package cache persists per-model completion and statistics indexes in a
// small sqlite database inside the user cache directory, so reopening an
// unchanged file skips the index derivation.
package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// FileName is the database file kept inside the cache directory.
const FileName = "index.db"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS model_index (
	id         TEXT PRIMARY KEY,
	path       TEXT NOT NULL,
	size       INTEGER NOT NULL,
	mtime_ns   INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL,
	payload    TEXT NOT NULL,
	UNIQUE (path, size, mtime_ns)
);`

// Store reads and writes cached model indexes. Rows are keyed by the
// file identity (path, size, mtime); a changed file misses the cache and
// its stale rows are dropped on the next Put.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens the index database inside dir, creating it on first use.
func Open(dir string) (*Store, error) {
	path := filepath.Join(dir, FileName)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open index database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping index database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.InitSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB wraps an existing connection. Tests inject mock connections
// here; InitSchema is the caller's business.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// InitSchema creates the index table if it does not exist.
func (s *Store) InitSchema() error {
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to initialize index schema: %w", err)
	}
	return nil
}

// Path returns the database file location, or "" for injected connections.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Get returns the stored index for a file identity. A miss is not an
// error: ok is false and the caller derives the index from the model.
func (s *Store) Get(path string, size, mtimeNS int64) (*Index, bool, error) {
	var payload string
	err := s.db.QueryRow(
		`SELECT payload FROM model_index WHERE path = ? AND size = ? AND mtime_ns = ?`,
		path, size, mtimeNS,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query index: %w", err)
	}

	idx := &Index{}
	if err := json.Unmarshal([]byte(payload), idx); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached index: %w", err)
	}
	return idx, true, nil
}

// Put stores the index for a file identity, dropping rows for older
// versions of the same path.
func (s *Store) Put(path string, size, mtimeNS int64, idx *Index) error {
	payload, err := json.Marshal(idx)
	if err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM model_index WHERE path = ?`, path); err != nil {
		return fmt.Errorf("failed to drop stale index rows: %w", err)
	}
	_, err = tx.Exec(
		`INSERT INTO model_index (id, path, size, mtime_ns, created_at, payload) VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), path, size, mtimeNS, time.Now().UTC(), string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to store index: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit index: %w", err)
	}
	return nil
}

// Entries returns the number of cached indexes, for the doctor report.
func (s *Store) Entries() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM model_index`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count index rows: %w", err)
	}
	return n, nil
}

// Close closes the database. Safe on a nil store, so callers holding an
// optional cache can defer unconditionally.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
