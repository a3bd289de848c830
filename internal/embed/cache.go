package embed

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dennisonbertram/lgrep/internal/hash"
)

// Cache is a content-addressed store of embedding vectors, keyed by
// sha256(model || "\0" || content). It has no automatic
// eviction; callers that want to reclaim space call Clear.
type Cache struct {
	mu sync.Mutex
	db *sql.DB
}

const createCacheTable = `
CREATE TABLE IF NOT EXISTS embedding_cache (
    cache_key  TEXT PRIMARY KEY,
    model      TEXT NOT NULL,
    dimensions INTEGER NOT NULL,
    vector     BLOB NOT NULL,
    created_at TEXT NOT NULL
)
`

// OpenCache opens (creating if necessary) the embedding cache database at
// path. The caller is responsible for placing path under the store's
// cache directory.
func OpenCache(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("embed: create cache dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("embed: open cache db: %w", err)
	}
	if _, err := db.Exec(createCacheTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("embed: create cache schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached vector for (model, content), if present.
func (c *Cache) Get(model, content string) ([]float32, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := hash.EmbeddingCacheKey(model, content)

	var dims int
	var blob []byte
	err := c.db.QueryRow(
		`SELECT dimensions, vector FROM embedding_cache WHERE cache_key = ?`, key,
	).Scan(&dims, &blob)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("embed: cache lookup: %w", err)
	}

	return decodeVector(blob, dims), true, nil
}

// Put stores vector under the key derived from (model, content), replacing
// any prior entry for the same key.
func (c *Cache) Put(model, content string, vector []float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := hash.EmbeddingCacheKey(model, content)
	blob := encodeVector(vector)

	_, err := c.db.Exec(
		`INSERT INTO embedding_cache (cache_key, model, dimensions, vector, created_at)
		 VALUES (?, ?, ?, ?, datetime('now'))
		 ON CONFLICT(cache_key) DO UPDATE SET
		   model = excluded.model,
		   dimensions = excluded.dimensions,
		   vector = excluded.vector,
		   created_at = excluded.created_at`,
		key, model, len(vector), blob,
	)
	if err != nil {
		return fmt.Errorf("embed: cache put: %w", err)
	}
	return nil
}

// Clear removes every entry from the cache.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.db.Exec(`DELETE FROM embedding_cache`); err != nil {
		return fmt.Errorf("embed: cache clear: %w", err)
	}
	return nil
}

// CachedProvider wraps a Provider with a Cache so repeated embeddings of
// identical content under the same model skip the network/process call
// entirely.
type CachedProvider struct {
	Provider
	cache *Cache
	model string
}

// NewCachedProvider wraps provider with cache, tagging entries under model.
func NewCachedProvider(provider Provider, cache *Cache, model string) *CachedProvider {
	return &CachedProvider{Provider: provider, cache: cache, model: model}
}

// Embed embeds texts, serving any cache hits directly and only calling the
// wrapped provider for the remaining misses.
func (c *CachedProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	missIdx := make([]int, 0, len(texts))
	missTexts := make([]string, 0, len(texts))

	for i, t := range texts {
		if v, ok, err := c.cache.Get(c.model, t); err != nil {
			return nil, err
		} else if ok {
			out[i] = v
		} else {
			missIdx = append(missIdx, i)
			missTexts = append(missTexts, t)
		}
	}

	if len(missTexts) == 0 {
		return out, nil
	}

	vecs, err := c.Provider.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	for j, idx := range missIdx {
		out[idx] = vecs[j]
		if err := c.cache.Put(c.model, missTexts[j], vecs[j]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// EmbedQuery embeds a single query, bypassing the cache: query-mode vectors
// use a different instruction prefix than passage-mode vectors and are
// rarely repeated verbatim, so caching them is not worth the key space.
func (c *CachedProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return c.Provider.EmbedQuery(ctx, text)
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.BigEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(buf []byte, dims int) []float32 {
	v := make([]float32, dims)
	for i := range v {
		v[i] = math.Float32frombits(binary.BigEndian.Uint32(buf[i*4:]))
	}
	return v
}
