package store

import (
	"database/sql"
	"fmt"
)

// createSchema creates every table, virtual table, and index for a fresh
// per-index database: one transaction for ordinary tables and indexes,
// committed before the sqlite-vec virtual table, which vec0 requires to
// be created outside a transaction.
func createSchema(db *sql.DB, dimensions int) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin schema transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("store: enable foreign keys: %w", err)
	}

	tables := []struct {
		name string
		ddl  string
	}{
		{"index_metadata", createIndexMetadataTable},
		{"files", createFilesTable},
		{"symbols", createSymbolsTable},
		{"dependencies", createDependenciesTable},
		{"dependency_names", createDependencyNamesTable},
		{"calls", createCallsTable},
		{"chunks", createChunksTable},
	}
	for _, t := range tables {
		if _, err := tx.Exec(t.ddl); err != nil {
			return fmt.Errorf("store: create %s table: %w", t.name, err)
		}
	}

	for i, idx := range schemaIndexes() {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("store: create index %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit schema transaction: %w", err)
	}

	if err := createVectorIndex(db, dimensions); err != nil {
		return fmt.Errorf("store: create vector index: %w", err)
	}

	return nil
}

const createIndexMetadataTable = `
CREATE TABLE IF NOT EXISTS index_metadata (
    name             TEXT PRIMARY KEY,
    root_path        TEXT NOT NULL,
    model            TEXT NOT NULL,
    model_dimensions INTEGER NOT NULL,
    status           TEXT NOT NULL,
    chunk_count      INTEGER NOT NULL DEFAULT 0,
    created_at       TEXT NOT NULL,
    updated_at       TEXT NOT NULL,
    last_run_id      TEXT NOT NULL DEFAULT ''
)
`

const createFilesTable = `
CREATE TABLE IF NOT EXISTS files (
    abs_path     TEXT PRIMARY KEY,
    rel_path     TEXT NOT NULL,
    extension    TEXT NOT NULL,
    content_hash TEXT NOT NULL,
    size         INTEGER NOT NULL,
    mtime        TEXT NOT NULL,
    analyzed_at  TEXT NOT NULL,
    parse_error  TEXT NOT NULL DEFAULT ''
)
`

const createSymbolsTable = `
CREATE TABLE IF NOT EXISTS symbols (
    id                TEXT PRIMARY KEY,
    name              TEXT NOT NULL,
    kind              TEXT NOT NULL,
    file_path         TEXT NOT NULL,
    rel_path          TEXT NOT NULL,
    line_start        INTEGER NOT NULL,
    line_end          INTEGER NOT NULL,
    col_start         INTEGER NOT NULL DEFAULT 0,
    col_end           INTEGER NOT NULL DEFAULT 0,
    is_exported       INTEGER NOT NULL DEFAULT 0,
    is_default_export INTEGER NOT NULL DEFAULT 0,
    signature         TEXT NOT NULL DEFAULT '',
    doc               TEXT NOT NULL DEFAULT '',
    parent_id         TEXT NOT NULL DEFAULT '',
    modifiers         TEXT NOT NULL DEFAULT '',
    FOREIGN KEY (file_path) REFERENCES files(abs_path) ON DELETE CASCADE
)
`

const createDependenciesTable = `
CREATE TABLE IF NOT EXISTS dependencies (
    id            TEXT PRIMARY KEY,
    source_file   TEXT NOT NULL,
    target_module TEXT NOT NULL,
    resolved_path TEXT NOT NULL DEFAULT '',
    kind          TEXT NOT NULL,
    line          INTEGER NOT NULL,
    is_external   INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (source_file) REFERENCES files(abs_path) ON DELETE CASCADE
)
`

const createDependencyNamesTable = `
CREATE TABLE IF NOT EXISTS dependency_names (
    dependency_id TEXT NOT NULL,
    position      INTEGER NOT NULL,
    name          TEXT NOT NULL,
    alias         TEXT NOT NULL DEFAULT '',
    is_type_only  INTEGER NOT NULL DEFAULT 0,
    is_default    INTEGER NOT NULL DEFAULT 0,
    is_namespace  INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (dependency_id, position),
    FOREIGN KEY (dependency_id) REFERENCES dependencies(id) ON DELETE CASCADE
)
`

const createCallsTable = `
CREATE TABLE IF NOT EXISTS calls (
    id              TEXT PRIMARY KEY,
    caller_id       TEXT NOT NULL,
    caller_file     TEXT NOT NULL,
    callee_name     TEXT NOT NULL,
    callee_id       TEXT NOT NULL DEFAULT '',
    callee_file     TEXT NOT NULL DEFAULT '',
    line            INTEGER NOT NULL,
    column          INTEGER NOT NULL DEFAULT 0,
    is_method_call  INTEGER NOT NULL DEFAULT 0,
    receiver        TEXT NOT NULL DEFAULT '',
    argument_count  INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (caller_file) REFERENCES files(abs_path) ON DELETE CASCADE
)
`

const createChunksTable = `
CREATE TABLE IF NOT EXISTS chunks (
    id           TEXT PRIMARY KEY,
    file_path    TEXT NOT NULL,
    rel_path     TEXT NOT NULL,
    content      TEXT NOT NULL,
    line_start   INTEGER NOT NULL,
    line_end     INTEGER NOT NULL,
    content_hash TEXT NOT NULL,
    FOREIGN KEY (file_path) REFERENCES files(abs_path) ON DELETE CASCADE
)
`

func schemaIndexes() []string {
	return []string{
		"CREATE INDEX IF NOT EXISTS idx_files_rel_path ON files(rel_path)",
		"CREATE INDEX IF NOT EXISTS idx_symbols_file_path ON symbols(file_path)",
		"CREATE INDEX IF NOT EXISTS idx_symbols_name ON symbols(name)",
		"CREATE INDEX IF NOT EXISTS idx_symbols_kind ON symbols(kind)",
		"CREATE INDEX IF NOT EXISTS idx_symbols_is_exported ON symbols(is_exported)",
		"CREATE INDEX IF NOT EXISTS idx_symbols_parent_id ON symbols(parent_id)",
		"CREATE INDEX IF NOT EXISTS idx_dependencies_source_file ON dependencies(source_file)",
		"CREATE INDEX IF NOT EXISTS idx_dependencies_resolved_path ON dependencies(resolved_path)",
		"CREATE INDEX IF NOT EXISTS idx_dependencies_is_external ON dependencies(is_external)",
		"CREATE INDEX IF NOT EXISTS idx_dependency_names_name ON dependency_names(name)",
		"CREATE INDEX IF NOT EXISTS idx_calls_caller_id ON calls(caller_id)",
		"CREATE INDEX IF NOT EXISTS idx_calls_callee_id ON calls(callee_id)",
		"CREATE INDEX IF NOT EXISTS idx_calls_callee_name ON calls(callee_name)",
		"CREATE INDEX IF NOT EXISTS idx_chunks_file_path ON chunks(file_path)",
	}
}
