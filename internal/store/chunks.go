package store

import "fmt"

// ChunkByID returns a single chunk (without its vector; vectors live only
// in chunks_vec and are read via QueryVectors).
func (s *Store) ChunkByID(id string) (*Chunk, error) {
	chunks, err := s.queryChunks(`WHERE id = ?`, id)
	if err != nil || len(chunks) == 0 {
		return nil, err
	}
	return &chunks[0], nil
}

// ChunksByFile returns every chunk belonging to absPath.
func (s *Store) ChunksByFile(absPath string) ([]Chunk, error) {
	return s.queryChunks(`WHERE file_path = ? ORDER BY line_start`, absPath)
}

// AllChunks returns every chunk in the index (without vectors).
func (s *Store) AllChunks() ([]Chunk, error) {
	return s.queryChunks(``)
}

// ChunksByIDs returns chunks (without vectors) in no particular order.
func (s *Store) ChunksByIDs(ids []string) ([]Chunk, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]any, len(ids))
	query := `WHERE id IN (`
	for i, id := range ids {
		if i > 0 {
			query += ","
		}
		query += "?"
		placeholders[i] = id
	}
	query += ")"
	return s.queryChunks(query, placeholders...)
}

func (s *Store) queryChunks(where string, args ...any) ([]Chunk, error) {
	rows, err := s.db.Query(`
		SELECT id, file_path, rel_path, content, line_start, line_end, content_hash
		FROM chunks `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query chunks: %w", err)
	}
	defer rows.Close()

	var out []Chunk
	for rows.Next() {
		var c Chunk
		if err := rows.Scan(&c.ID, &c.FilePath, &c.RelPath, &c.Content, &c.LineStart, &c.LineEnd, &c.ContentHash); err != nil {
			return nil, fmt.Errorf("store: scan chunk: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
