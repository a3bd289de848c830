package query

import (
	"sort"

	"github.com/dominikbraun/graph"

	"github.com/dennisonbertram/lgrep/internal/store"
)

// buildFileGraph builds the in-memory file-dependency graph used by impact
// and cycles.
// includeExternal controls whether edges to files outside the index
// (is_external=true, no resolved FileRecord) are included.
func buildFileGraph(s *store.Store, includeExternal bool) (map[string][]string, error) {
	files, err := s.AllFiles()
	if err != nil {
		return nil, err
	}
	deps, err := s.AllDependencies()
	if err != nil {
		return nil, err
	}

	// Vertex/edge errors (already-exists, dangling reference) are ignored
	// rather than failing the query: an edge referencing a node the store
	// no longer has is stale data, not a reason to refuse an answer.
	g := graph.New(func(path string) string { return path }, graph.Directed())
	for _, f := range files {
		_ = g.AddVertex(f.AbsPath)
	}

	for _, d := range deps {
		target := d.ResolvedPath
		if d.IsExternal || target == "" {
			if !includeExternal || d.TargetModule == "" {
				continue
			}
			target = d.TargetModule
			_ = g.AddVertex(target)
		}
		_ = g.AddEdge(d.SourceFile, target)
	}

	adj, err := g.AdjacencyMap()
	if err != nil {
		return nil, err
	}
	out := make(map[string][]string, len(adj))
	for node, edges := range adj {
		targets := make([]string, 0, len(edges))
		for target := range edges {
			targets = append(targets, target)
		}
		sort.Strings(targets)
		out[node] = targets
	}
	return out, nil
}

// reverseGraph flips every edge, used to turn the import graph (file ->
// files it imports) into the reverse-dependency graph impact() traverses
// (file -> files that import it).
func reverseGraph(adj map[string][]string) map[string][]string {
	rev := make(map[string][]string, len(adj))
	for node := range adj {
		if _, ok := rev[node]; !ok {
			rev[node] = nil
		}
	}
	for node, targets := range adj {
		for _, t := range targets {
			rev[t] = append(rev[t], node)
		}
	}
	return rev
}
