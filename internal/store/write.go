package store

import (
	"database/sql"
	"fmt"
)

// FileWrite bundles everything the indexer extracted for one file so it can
// be applied atomically.
type FileWrite struct {
	File         FileRecord
	Symbols      []Symbol
	Dependencies []Dependency
	Calls        []CallEdge
	Chunks       []Chunk // Chunk.Vector must be set
}

// ReplaceFile applies w as a single transaction: the old rows for
// w.File.AbsPath are deleted (ON DELETE CASCADE handles symbols,
// dependencies, dependency_names, calls, chunks once files is touched,
// but we delete explicitly first so a file that shrinks to zero symbols
// still clears its old ones, since CASCADE only fires on DELETE not
// UPDATE), then the FileRecord is upserted and the new child rows
// inserted under it.
func (s *Store) ReplaceFile(w FileWrite) error {
	oldChunkIDs, err := s.chunkIDsForFile(w.File.AbsPath)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin replace-file tx: %w", err)
	}
	defer tx.Rollback()

	if err := deleteVectors(tx, oldChunkIDs); err != nil {
		return err
	}
	if err := deleteFileChildren(tx, w.File.AbsPath); err != nil {
		return err
	}
	// The files row must exist before its children: foreign keys are
	// enforced immediately, not at commit.
	if err := upsertFile(tx, w.File); err != nil {
		return err
	}
	if err := insertSymbols(tx, w.Symbols); err != nil {
		return err
	}
	if err := insertDependencies(tx, w.Dependencies); err != nil {
		return err
	}
	if err := insertCalls(tx, w.Calls); err != nil {
		return err
	}
	if err := insertChunks(tx, w.Chunks); err != nil {
		return err
	}

	return tx.Commit()
}

func deleteFileChildren(tx *sql.Tx, absPath string) error {
	stmts := []string{
		`DELETE FROM symbols WHERE file_path = ?`,
		`DELETE FROM dependencies WHERE source_file = ?`,
		`DELETE FROM calls WHERE caller_file = ?`,
		`DELETE FROM chunks WHERE file_path = ?`,
	}
	for _, q := range stmts {
		if _, err := tx.Exec(q, absPath); err != nil {
			return fmt.Errorf("store: clear old rows for %s: %w", absPath, err)
		}
	}
	return nil
}

func upsertFile(tx *sql.Tx, f FileRecord) error {
	_, err := tx.Exec(`
		INSERT INTO files (abs_path, rel_path, extension, content_hash, size, mtime, analyzed_at, parse_error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(abs_path) DO UPDATE SET
			rel_path = excluded.rel_path,
			extension = excluded.extension,
			content_hash = excluded.content_hash,
			size = excluded.size,
			mtime = excluded.mtime,
			analyzed_at = excluded.analyzed_at,
			parse_error = excluded.parse_error
	`, f.AbsPath, f.RelPath, f.Extension, f.ContentHash, f.Size, f.MTime, f.AnalyzedAt, f.ParseError)
	if err != nil {
		return fmt.Errorf("store: upsert file %s: %w", f.AbsPath, err)
	}
	return nil
}

func insertSymbols(tx *sql.Tx, symbols []Symbol) error {
	if len(symbols) == 0 {
		return nil
	}
	stmt, err := tx.Prepare(`
		INSERT INTO symbols (id, name, kind, file_path, rel_path, line_start, line_end, col_start, col_end,
			is_exported, is_default_export, signature, doc, parent_id, modifiers)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("store: prepare symbol insert: %w", err)
	}
	defer stmt.Close()

	for _, sym := range symbols {
		modifiers := ""
		for i, m := range sym.Modifiers {
			if i > 0 {
				modifiers += ","
			}
			modifiers += m
		}
		if _, err := stmt.Exec(sym.ID, sym.Name, string(sym.Kind), sym.FilePath, sym.RelPath, sym.LineStart, sym.LineEnd,
			sym.ColStart, sym.ColEnd, boolInt(sym.IsExported), boolInt(sym.IsDefaultExport), sym.Signature, sym.Doc, sym.ParentID, modifiers); err != nil {
			return fmt.Errorf("store: insert symbol %s: %w", sym.ID, err)
		}
	}
	return nil
}

func insertDependencies(tx *sql.Tx, deps []Dependency) error {
	if len(deps) == 0 {
		return nil
	}
	depStmt, err := tx.Prepare(`
		INSERT INTO dependencies (id, source_file, target_module, resolved_path, kind, line, is_external)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("store: prepare dependency insert: %w", err)
	}
	defer depStmt.Close()

	nameStmt, err := tx.Prepare(`
		INSERT INTO dependency_names (dependency_id, position, name, alias, is_type_only, is_default, is_namespace)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("store: prepare dependency name insert: %w", err)
	}
	defer nameStmt.Close()

	for _, d := range deps {
		if _, err := depStmt.Exec(d.ID, d.SourceFile, d.TargetModule, d.ResolvedPath, string(d.Kind), d.Line, boolInt(d.IsExternal)); err != nil {
			return fmt.Errorf("store: insert dependency %s: %w", d.ID, err)
		}
		for i, n := range d.Names {
			if _, err := nameStmt.Exec(d.ID, i, n.Name, n.Alias, boolInt(n.IsTypeOnly), boolInt(n.IsDefault), boolInt(n.IsNamespace)); err != nil {
				return fmt.Errorf("store: insert dependency name for %s: %w", d.ID, err)
			}
		}
	}
	return nil
}

func insertCalls(tx *sql.Tx, calls []CallEdge) error {
	if len(calls) == 0 {
		return nil
	}
	stmt, err := tx.Prepare(`
		INSERT INTO calls (id, caller_id, caller_file, callee_name, callee_id, callee_file, line, column, is_method_call, receiver, argument_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("store: prepare call insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range calls {
		if _, err := stmt.Exec(c.ID, c.CallerID, c.CallerFile, c.CalleeName, c.CalleeID, c.CalleeFile, c.Line, c.Column,
			boolInt(c.IsMethodCall), c.Receiver, c.ArgumentCount); err != nil {
			return fmt.Errorf("store: insert call %s: %w", c.ID, err)
		}
	}
	return nil
}

func insertChunks(tx *sql.Tx, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	stmt, err := tx.Prepare(`
		INSERT INTO chunks (id, file_path, rel_path, content, line_start, line_end, content_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("store: prepare chunk insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		if _, err := stmt.Exec(c.ID, c.FilePath, c.RelPath, c.Content, c.LineStart, c.LineEnd, c.ContentHash); err != nil {
			return fmt.Errorf("store: insert chunk %s: %w", c.ID, err)
		}
		if err := upsertVector(tx, c.ID, c.Vector); err != nil {
			return err
		}
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
