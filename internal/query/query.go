// Package query implements the hybrid query engine: vector similarity
// search fused with graph traversal over the Store's symbol, dependency,
// and call tables. Every operation reads the Store; none write.
package query

import (
	"context"
	"math"
	"sort"

	"github.com/dennisonbertram/lgrep/internal/embed"
	"github.com/dennisonbertram/lgrep/internal/lgerr"
	"github.com/dennisonbertram/lgrep/internal/store"
)

// Engine answers queries against one open index.
type Engine struct {
	store    *store.Store
	provider embed.Provider
	cache    *contextCache
}

// New builds an Engine over an already-open Store. provider is used only
// for embedding search queries (EmbedQuery); it may be nil if the caller
// never calls Search.
func New(s *store.Store, provider embed.Provider) *Engine {
	return &Engine{store: s, provider: provider, cache: newContextCache()}
}

// Close releases the engine's resources (its file-context cache). It does
// not close the underlying Store or Provider, which the caller owns.
func (e *Engine) Close() {
	e.cache.Clear()
}

// SearchResult is one ranked chunk returned by Search.
type SearchResult struct {
	ChunkID   string
	FilePath  string
	RelPath   string
	Content   string
	LineStart int
	LineEnd   int
	Score     float64 // cosine similarity, higher is more similar
}

// searchCandidate is a chunk still in contention during ranking/MMR.
type searchCandidate struct {
	id  string
	sim float64 // similarity to the query
}

// Search embeds query and returns the limit most similar chunks, optionally
// diversified by MMR. diversity is in [0,1]; 0 disables
// diversification (plain top-K by similarity).
func (e *Engine) Search(ctx context.Context, queryText string, limit int, diversity float64) ([]SearchResult, error) {
	if e.provider == nil {
		return nil, lgerr.New(lgerr.InvalidInput, "query", "search requires an embedding provider")
	}
	if limit <= 0 {
		limit = 10
	}

	qv, err := e.provider.EmbedQuery(ctx, queryText)
	if err != nil {
		return nil, lgerr.Wrap(lgerr.ProviderError, "query", "embed query", err)
	}

	pool := limit * 5
	if pool < 50 {
		pool = 50
	}
	matches, err := e.store.QueryVectors(qv, pool)
	if err != nil {
		return nil, lgerr.Wrap(lgerr.StoreError, "query", "vector search", err)
	}
	if len(matches) == 0 {
		return nil, nil
	}

	ids := make([]string, len(matches))
	distanceByID := make(map[string]float64, len(matches))
	for i, m := range matches {
		ids[i] = m.ChunkID
		distanceByID[m.ChunkID] = m.Distance
	}

	chunks, err := e.store.ChunksByIDs(ids)
	if err != nil {
		return nil, lgerr.Wrap(lgerr.StoreError, "query", "load chunks", err)
	}
	chunkByID := make(map[string]store.Chunk, len(chunks))
	for _, c := range chunks {
		chunkByID[c.ID] = c
	}

	candidates := make([]searchCandidate, 0, len(ids))
	for _, id := range ids {
		if _, ok := chunkByID[id]; !ok {
			continue // chunk deleted between the KNN read and this lookup
		}
		candidates = append(candidates, searchCandidate{id: id, sim: 1 - distanceByID[id]})
	}

	var selected []searchCandidate
	if diversity <= 0 {
		sort.SliceStable(candidates, func(i, j int) bool {
			return rankLess(candidates[i].sim, chunkByID[candidates[i].id], candidates[j].sim, chunkByID[candidates[j].id])
		})
		if len(candidates) > limit {
			candidates = candidates[:limit]
		}
		selected = candidates
	} else {
		vectors, verr := e.store.VectorsByIDs(ids)
		if verr != nil {
			return nil, lgerr.Wrap(lgerr.StoreError, "query", "load vectors for MMR", verr)
		}
		selected = mmrSelect(candidates, vectors, limit, 1-diversity)
	}

	out := make([]SearchResult, 0, len(selected))
	for _, c := range selected {
		chunk := chunkByID[c.id]
		out = append(out, SearchResult{
			ChunkID:   chunk.ID,
			FilePath:  chunk.FilePath,
			RelPath:   chunk.RelPath,
			Content:   chunk.Content,
			LineStart: chunk.LineStart,
			LineEnd:   chunk.LineEnd,
			Score:     c.sim,
		})
	}
	return out, nil
}

// mmrSelect implements Maximal Marginal Relevance re-ranking:
// score = λ·sim(q,c) − (1−λ)·max sim(c, selected). Greedy: repeatedly
// pick the remaining candidate with the highest MMR score until limit are
// chosen or candidates run out.
func mmrSelect(candidates []searchCandidate, vectors map[string][]float32, limit int, lambda float64) []searchCandidate {
	remaining := append([]searchCandidate(nil), candidates...)
	var selected []searchCandidate

	for len(selected) < limit && len(remaining) > 0 {
		bestIdx := -1
		bestScore := 0.0
		for i, cand := range remaining {
			maxSimToSelected := 0.0
			for _, s := range selected {
				if sim := cosine(vectors[cand.id], vectors[s.id]); sim > maxSimToSelected {
					maxSimToSelected = sim
				}
			}
			score := lambda*cand.sim - (1-lambda)*maxSimToSelected
			if bestIdx == -1 || score > bestScore {
				bestIdx = i
				bestScore = score
			}
		}
		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	return selected
}

// rankLess orders two candidates by descending similarity, breaking ties
// by shorter rel_path, then lexicographic.
func rankLess(simA float64, a store.Chunk, simB float64, b store.Chunk) bool {
	if simA != simB {
		return simA > simB
	}
	if len(a.RelPath) != len(b.RelPath) {
		return len(a.RelPath) < len(b.RelPath)
	}
	return a.RelPath < b.RelPath
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
