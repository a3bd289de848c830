package store

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
)

// InitVectorExtension registers the sqlite-vec extension with every future
// database/sql connection in this process. Must be called once before any
// Store is opened.
func InitVectorExtension() {
	sqlite_vec.Auto()
}

// createVectorIndex creates the chunks_vec virtual table backing KNN cosine
// search over Chunk vectors. It mirrors the chunks table's primary key but
// stores only the vector: join back to chunks for content.
func createVectorIndex(db *sql.DB, dimensions int) error {
	ddl := fmt.Sprintf(`
		CREATE VIRTUAL TABLE IF NOT EXISTS chunks_vec USING vec0(
			chunk_id TEXT PRIMARY KEY,
			embedding float[%d]
		)
	`, dimensions)
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("store: create chunks_vec: %w", err)
	}
	return nil
}

// upsertVector replaces (delete-then-insert, since vec0 has no INSERT OR
// REPLACE) the vector for chunkID within tx.
func upsertVector(tx *sql.Tx, chunkID string, vector []float32) error {
	if _, err := tx.Exec(`DELETE FROM chunks_vec WHERE chunk_id = ?`, chunkID); err != nil {
		return fmt.Errorf("store: delete stale vector for %s: %w", chunkID, err)
	}
	blob, err := sqlite_vec.SerializeFloat32(vector)
	if err != nil {
		return fmt.Errorf("store: serialize vector for %s: %w", chunkID, err)
	}
	if _, err := tx.Exec(`INSERT INTO chunks_vec (chunk_id, embedding) VALUES (?, ?)`, chunkID, blob); err != nil {
		return fmt.Errorf("store: insert vector for %s: %w", chunkID, err)
	}
	return nil
}

func deleteVectors(tx *sql.Tx, chunkIDs []string) error {
	if len(chunkIDs) == 0 {
		return nil
	}
	stmt, err := tx.Prepare(`DELETE FROM chunks_vec WHERE chunk_id = ?`)
	if err != nil {
		return fmt.Errorf("store: prepare vector delete: %w", err)
	}
	defer stmt.Close()
	for _, id := range chunkIDs {
		if _, err := stmt.Exec(id); err != nil {
			return fmt.Errorf("store: delete vector %s: %w", id, err)
		}
	}
	return nil
}

// VectorMatch is one result from a KNN cosine search over chunks_vec.
type VectorMatch struct {
	ChunkID  string
	Distance float64 // cosine distance, lower is more similar
}

// QueryVectors returns the limit nearest chunks to query by cosine
// distance, ascending (closest first).
func (s *Store) QueryVectors(query []float32, limit int) ([]VectorMatch, error) {
	blob, err := sqlite_vec.SerializeFloat32(query)
	if err != nil {
		return nil, fmt.Errorf("store: serialize query vector: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT chunk_id, vec_distance_cosine(embedding, ?) AS distance
		FROM chunks_vec
		ORDER BY distance
		LIMIT ?
	`, blob, limit)
	if err != nil {
		return nil, fmt.Errorf("store: query chunks_vec: %w", err)
	}
	defer rows.Close()

	var out []VectorMatch
	for rows.Next() {
		var m VectorMatch
		if err := rows.Scan(&m.ChunkID, &m.Distance); err != nil {
			return nil, fmt.Errorf("store: scan vector match: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// VectorsByIDs returns the raw embeddings for the given chunk ids, keyed by
// id. Used by the query engine for MMR diversification and similar-code
// clustering, which need vector-to-vector similarity that
// chunks_vec's own KNN operator can't give directly.
func (s *Store) VectorsByIDs(ids []string) (map[string][]float32, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, len(ids))
	placeholders := ""
	for i, id := range ids {
		if i > 0 {
			placeholders += ","
		}
		placeholders += "?"
		args[i] = id
	}
	return s.queryVectorBlobs(`WHERE chunk_id IN (` + placeholders + `)`, args...)
}

// AllVectors returns every chunk's embedding, keyed by chunk id.
func (s *Store) AllVectors() (map[string][]float32, error) {
	return s.queryVectorBlobs(``)
}

func (s *Store) queryVectorBlobs(where string, args ...any) (map[string][]float32, error) {
	rows, err := s.db.Query(`SELECT chunk_id, embedding FROM chunks_vec `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query chunk vectors: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]float32)
	for rows.Next() {
		var id string
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, fmt.Errorf("store: scan chunk vector: %w", err)
		}
		out[id] = deserializeFloat32(blob)
	}
	return out, rows.Err()
}

// deserializeFloat32 unpacks a vec0 embedding column (little-endian
// packed float32s, the on-disk format sqlite_vec.SerializeFloat32
// produces) back into a vector.
func deserializeFloat32(blob []byte) []float32 {
	n := len(blob) / 4
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(blob[i*4 : i*4+4])
		out[i] = math.Float32frombits(bits)
	}
	return out
}
