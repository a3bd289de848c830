package query

import "github.com/dennisonbertram/lgrep/internal/store"

// Dead returns every Symbol of kind (or, when kind is empty, of kind
// function or method) that has zero incoming call edges.
func (e *Engine) Dead(kind string) ([]store.Symbol, error) {
	kinds := []store.SymbolKind{store.SymbolFunction, store.SymbolMethod}
	if kind != "" {
		kinds = []store.SymbolKind{store.SymbolKind(kind)}
	}

	calls, err := e.store.AllCalls()
	if err != nil {
		return nil, err
	}
	calledIDs := make(map[string]bool, len(calls))
	for _, c := range calls {
		if c.CalleeID != "" {
			calledIDs[c.CalleeID] = true
		}
	}

	var dead []store.Symbol
	for _, k := range kinds {
		syms, err := e.store.SymbolsByKind(string(k))
		if err != nil {
			return nil, err
		}
		for _, s := range syms {
			if !calledIDs[s.ID] {
				dead = append(dead, s)
			}
		}
	}
	return dead, nil
}
