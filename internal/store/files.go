package store

import (
	"database/sql"
	"fmt"
)

// FileByAbsPath returns the FileRecord for absPath, or nil if not indexed.
func (s *Store) FileByAbsPath(absPath string) (*FileRecord, error) {
	row := s.db.QueryRow(`
		SELECT abs_path, rel_path, extension, content_hash, size, mtime, analyzed_at, parse_error
		FROM files WHERE abs_path = ?
	`, absPath)
	return scanFileRecord(row)
}

func scanFileRecord(row *sql.Row) (*FileRecord, error) {
	var f FileRecord
	err := row.Scan(&f.AbsPath, &f.RelPath, &f.Extension, &f.ContentHash, &f.Size, &f.MTime, &f.AnalyzedAt, &f.ParseError)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: scan file record: %w", err)
	}
	return &f, nil
}

// AllFiles returns every FileRecord currently stored, used by the indexer
// to diff the discovered tree against what is already known.
func (s *Store) AllFiles() ([]FileRecord, error) {
	rows, err := s.db.Query(`
		SELECT abs_path, rel_path, extension, content_hash, size, mtime, analyzed_at, parse_error
		FROM files
	`)
	if err != nil {
		return nil, fmt.Errorf("store: list files: %w", err)
	}
	defer rows.Close()

	var out []FileRecord
	for rows.Next() {
		var f FileRecord
		if err := rows.Scan(&f.AbsPath, &f.RelPath, &f.Extension, &f.ContentHash, &f.Size, &f.MTime, &f.AnalyzedAt, &f.ParseError); err != nil {
			return nil, fmt.Errorf("store: scan file row: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// DeleteFile removes a FileRecord and, by ON DELETE CASCADE, every symbol,
// dependency, call, and chunk that belonged to it, plus its chunk vectors.
func (s *Store) DeleteFile(absPath string) error {
	chunkIDs, err := s.chunkIDsForFile(absPath)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin delete file tx: %w", err)
	}
	defer tx.Rollback()

	if err := deleteVectors(tx, chunkIDs); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM files WHERE abs_path = ?`, absPath); err != nil {
		return fmt.Errorf("store: delete file %s: %w", absPath, err)
	}
	return tx.Commit()
}

func (s *Store) chunkIDsForFile(absPath string) ([]string, error) {
	rows, err := s.db.Query(`SELECT id FROM chunks WHERE file_path = ?`, absPath)
	if err != nil {
		return nil, fmt.Errorf("store: list chunk ids for %s: %w", absPath, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
