package query

import "github.com/dennisonbertram/lgrep/internal/store"

// UnusedExports returns every exported Symbol that is neither imported by
// name from another file nor called anywhere. A bare re-export
// (export_from/re_export) of the name does not itself count as
// consumption, only a genuine import or call does.
func (e *Engine) UnusedExports() ([]store.Symbol, error) {
	exported, err := e.store.ExportedSymbols()
	if err != nil {
		return nil, err
	}

	var unused []store.Symbol
	for _, sym := range exported {
		consumed, err := e.isConsumed(sym)
		if err != nil {
			return nil, err
		}
		if !consumed {
			unused = append(unused, sym)
		}
	}
	return unused, nil
}

func (e *Engine) isConsumed(sym store.Symbol) (bool, error) {
	refs, err := e.store.DependenciesReferencingName(sym.Name)
	if err != nil {
		return false, err
	}
	for _, d := range refs {
		if d.SourceFile == sym.FilePath {
			continue // not "another file"
		}
		if d.Kind == store.DepExportFrom || d.Kind == store.DepReExport {
			continue // a re-export alone is not consumption
		}
		return true, nil
	}

	if calls, err := e.store.CallsByCalleeID(sym.ID); err != nil {
		return false, err
	} else if len(calls) > 0 {
		return true, nil
	}

	byName, err := e.store.CallsByCalleeName(sym.Name)
	if err != nil {
		return false, err
	}
	for _, c := range byName {
		if c.CallerFile != sym.FilePath {
			return true, nil
		}
	}
	return false, nil
}
