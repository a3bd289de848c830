package query

import (
	"sort"

	"github.com/dennisonbertram/lgrep/internal/store"
)

// CallerResult is one CallEdge invoking the queried symbol, plus the
// source line it was found on, so the caller never has to re-read the
// file for context.
type CallerResult struct {
	store.CallEdge
	Context string // the caller's source line at Line, best-effort
}

// Callers returns every CallEdge that invokes symbolName: edges resolved to a Symbol of that name via callee_id, plus
// every unresolved edge (empty callee_id) whose bare callee name matches,
// whether or not a Symbol of that name exists.
func (e *Engine) Callers(symbolName string) ([]CallerResult, error) {
	syms, err := e.store.SymbolsByName(symbolName)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var edges []store.CallEdge

	for _, sym := range syms {
		calls, err := e.store.CallsByCalleeID(sym.ID)
		if err != nil {
			return nil, err
		}
		for _, c := range calls {
			if !seen[c.ID] {
				seen[c.ID] = true
				edges = append(edges, c)
			}
		}
	}

	// Fuzzy fallback: a call to a bare name that never resolved to a
	// Symbol id (no unique match at extraction time) still counts as a
	// caller of symbolName.
	byName, err := e.store.CallsByCalleeName(symbolName)
	if err != nil {
		return nil, err
	}
	for _, c := range byName {
		if c.CalleeID != "" {
			continue // already resolved and covered above
		}
		if !seen[c.ID] {
			seen[c.ID] = true
			edges = append(edges, c)
		}
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].CallerFile != edges[j].CallerFile {
			return edges[i].CallerFile < edges[j].CallerFile
		}
		return edges[i].Line < edges[j].Line
	})

	out := make([]CallerResult, len(edges))
	for i, c := range edges {
		out[i] = CallerResult{CallEdge: c, Context: e.cache.Snippet(c.CallerFile, c.Line, c.Line)}
	}
	return out, nil
}
