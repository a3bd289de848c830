package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// PutMetadata upserts the single-row IndexMetadata entry. Timestamps the
// caller leaves empty are stamped here; created_at survives later upserts.
func (s *Store) PutMetadata(m IndexMetadata) error {
	if m.CreatedAt == "" {
		m.CreatedAt = now()
	}
	if m.UpdatedAt == "" {
		m.UpdatedAt = now()
	}
	_, err := s.db.Exec(`
		INSERT INTO index_metadata (name, root_path, model, model_dimensions, status, chunk_count, created_at, updated_at, last_run_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			root_path = excluded.root_path,
			model = excluded.model,
			model_dimensions = excluded.model_dimensions,
			status = excluded.status,
			chunk_count = excluded.chunk_count,
			updated_at = excluded.updated_at
	`, m.Name, m.RootPath, m.Model, m.ModelDimensions, string(m.Status), m.ChunkCount, m.CreatedAt, m.UpdatedAt, m.LastRunID)
	if err != nil {
		return fmt.Errorf("store: put metadata: %w", err)
	}
	return nil
}

// Metadata returns the IndexMetadata row, if one has been bootstrapped yet.
func (s *Store) Metadata() (*IndexMetadata, error) {
	var m IndexMetadata
	var status string
	err := s.db.QueryRow(`
		SELECT name, root_path, model, model_dimensions, status, chunk_count, created_at, updated_at, last_run_id
		FROM index_metadata LIMIT 1
	`).Scan(&m.Name, &m.RootPath, &m.Model, &m.ModelDimensions, &status, &m.ChunkCount, &m.CreatedAt, &m.UpdatedAt, &m.LastRunID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read metadata: %w", err)
	}
	m.Status = IndexStatus(status)
	return &m, nil
}

// SetStatus updates just the status and updated_at columns.
func (s *Store) SetStatus(status IndexStatus) error {
	_, err := s.db.Exec(`UPDATE index_metadata SET status = ?, updated_at = ?`, string(status), now())
	if err != nil {
		return fmt.Errorf("store: set status: %w", err)
	}
	return nil
}

// CompleteRun stamps a fresh run id on the index and sets its status,
// marking the indexer run that just finished. The generated id is
// returned so the caller can surface it in its run counters.
func (s *Store) CompleteRun(status IndexStatus) (string, error) {
	runID := uuid.NewString()
	_, err := s.db.Exec(`UPDATE index_metadata SET status = ?, last_run_id = ?, updated_at = ?`, string(status), runID, now())
	if err != nil {
		return "", fmt.Errorf("store: complete run: %w", err)
	}
	return runID, nil
}

// RefreshChunkCount recomputes and stores IndexMetadata.chunk_count from the
// actual row count of chunks.
func (s *Store) RefreshChunkCount() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM chunks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("store: count chunks: %w", err)
	}
	if _, err := s.db.Exec(`UPDATE index_metadata SET chunk_count = ?, updated_at = ?`, count, now()); err != nil {
		return 0, fmt.Errorf("store: update chunk count: %w", err)
	}
	return count, nil
}
