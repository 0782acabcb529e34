// Package artifact opens and atomically writes the on-disk SQLite files
// that hold the vocab, dataset-vectors, and source-data stores.
package artifact

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver
)

// ErrNotFound is returned when an artifact file does not exist.
var ErrNotFound = errors.New("artifact file not found")

// Error wraps artifact I/O errors with operation context.
type Error struct {
	Op  string // Operation name
	Err error  // Underlying error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("artifact: %v", e.Err)
	}
	return fmt.Sprintf("artifact: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// WrapError wraps an error with operation context.
func WrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// Write builds a new artifact database and atomically replaces path with
// it. The build callback runs against a temp file; only a fully built
// database is renamed into place.
func Write(path string, build func(db *sql.DB) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return WrapError("write", err)
	}
	tmp := fmt.Sprintf("%s.tmp-%s", path, uuid.NewString())
	db, err := sql.Open("sqlite", tmp)
	if err != nil {
		return WrapError("write", err)
	}
	if err := build(db); err != nil {
		_ = db.Close()
		_ = os.Remove(tmp)
		return WrapError("write", err)
	}
	if err := db.Close(); err != nil {
		_ = os.Remove(tmp)
		return WrapError("write", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return WrapError("write", err)
	}
	return nil
}

// Open opens an existing artifact database. A missing file yields an error
// wrapping ErrNotFound.
func Open(path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, WrapError("open", fmt.Errorf("%w: %s", ErrNotFound, path))
		}
		return nil, WrapError("open", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, WrapError("open", err)
	}
	return db, nil
}

// ReadMeta reads one value from the conventional meta(key, value) table.
func ReadMeta(db *sql.DB, key string) (string, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", WrapError("read_meta", fmt.Errorf("key %s: %w", key, err))
	}
	return value, nil
}

// WriteMeta creates the meta table and inserts the given keys.
func WriteMeta(db *sql.DB, values map[string]string) error {
	if _, err := db.Exec(`CREATE TABLE meta (key TEXT PRIMARY KEY, value TEXT)`); err != nil {
		return err
	}
	for key, value := range values {
		if _, err := db.Exec(`INSERT INTO meta (key, value) VALUES (?, ?)`, key, value); err != nil {
			return err
		}
	}
	return nil
}
