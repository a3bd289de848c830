package query

import "github.com/dennisonbertram/lgrep/internal/store"

// SymbolFilter narrows Symbols(); zero values mean "don't filter on this".
type SymbolFilter struct {
	Kind     string
	File     string // absolute path, matched against Symbol.FilePath
	Exported *bool
}

// Symbols lists symbols matching filter, used by the `symbols` JSON-RPC
// method.
func (e *Engine) Symbols(filter SymbolFilter) ([]store.Symbol, error) {
	var syms []store.Symbol
	var err error
	switch {
	case filter.File != "":
		syms, err = e.store.SymbolsByFile(filter.File)
	default:
		syms, err = e.store.SymbolsByKind(filter.Kind)
	}
	if err != nil {
		return nil, err
	}

	var out []store.Symbol
	for _, s := range syms {
		if filter.File != "" && filter.Kind != "" && string(s.Kind) != filter.Kind {
			continue
		}
		if filter.Exported != nil && s.IsExported != *filter.Exported {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// Deps returns every Dependency declared in file (absolute path), used by
// the `deps` JSON-RPC method.
func (e *Engine) Deps(absPath string) ([]store.Dependency, error) {
	return e.store.DependenciesBySourceFile(absPath)
}

// Stats summarizes one index, used by the `stats` JSON-RPC method.
type Stats struct {
	Metadata        *store.IndexMetadata
	FileCount       int
	SymbolCount     int
	DependencyCount int
	CallCount       int
	ChunkCount      int
}

// Stats computes row counts across every table plus the IndexMetadata row.
func (e *Engine) Stats() (Stats, error) {
	meta, err := e.store.Metadata()
	if err != nil {
		return Stats{}, err
	}
	files, err := e.store.AllFiles()
	if err != nil {
		return Stats{}, err
	}
	syms, err := e.store.AllSymbols()
	if err != nil {
		return Stats{}, err
	}
	deps, err := e.store.AllDependencies()
	if err != nil {
		return Stats{}, err
	}
	calls, err := e.store.AllCalls()
	if err != nil {
		return Stats{}, err
	}
	chunks, err := e.store.AllChunks()
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Metadata:        meta,
		FileCount:       len(files),
		SymbolCount:     len(syms),
		DependencyCount: len(deps),
		CallCount:       len(calls),
		ChunkCount:      len(chunks),
	}, nil
}
