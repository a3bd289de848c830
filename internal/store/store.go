package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store wraps the SQLite database for one Index. The Indexer is the only
// writer; the Query Engine and Watcher open it read-only or share the same
// handle for read paths.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if necessary) the database at dbDir/lgrep.db and
// ensures the schema exists. dimensions seeds a brand-new chunks_vec
// virtual table; it is ignored if the database already has one.
func Open(dbDir string, dimensions int) (*Store, error) {
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create db dir: %w", err)
	}
	path := filepath.Join(dbDir, "lgrep.db")

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // one writer at a time

	fresh := !fileExists(path)
	if fresh {
		if err := createSchema(db, dimensions); err != nil {
			db.Close()
			return nil, err
		}
	}

	return &Store{db: db, path: path}, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Size() > 0
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
