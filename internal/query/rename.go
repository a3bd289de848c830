package query

import "sort"

// RenameEdit is one location rename() would touch, never applied by the
// core itself.
type RenameEdit struct {
	File    string // rel_path
	Line    int
	Column  int
	Before  string
	After   string
	Context string // the source line the edit touches, best-effort
}

// RenamePreview finds every Symbol, CallEdge, and Dependency referencing
// oldName and emits the edit each would need, without touching the
// filesystem. preview is accepted for API symmetry with the rename RPC
// method's params; the core never performs anything but a preview, so it
// is otherwise unused.
func (e *Engine) RenamePreview(oldName, newName string, preview bool) ([]RenameEdit, error) {
	var edits []RenameEdit

	syms, err := e.store.SymbolsByName(oldName)
	if err != nil {
		return nil, err
	}
	for _, s := range syms {
		edits = append(edits, RenameEdit{File: s.RelPath, Line: s.LineStart, Column: s.ColStart, Before: oldName, After: newName, Context: e.cache.Snippet(s.FilePath, s.LineStart, s.LineStart)})
	}

	calls, err := e.store.CallsByCalleeName(oldName)
	if err != nil {
		return nil, err
	}
	for _, c := range calls {
		file, err := e.relPathOf(c.CallerFile)
		if err != nil {
			continue
		}
		edits = append(edits, RenameEdit{File: file, Line: c.Line, Column: c.Column, Before: oldName, After: newName, Context: e.cache.Snippet(c.CallerFile, c.Line, c.Line)})
	}

	deps, err := e.store.DependenciesReferencingName(oldName)
	if err != nil {
		return nil, err
	}
	for _, d := range deps {
		file, err := e.relPathOf(d.SourceFile)
		if err != nil {
			continue
		}
		edits = append(edits, RenameEdit{File: file, Line: d.Line, Column: 0, Before: oldName, After: newName, Context: e.cache.Snippet(d.SourceFile, d.Line, d.Line)})
	}

	sort.Slice(edits, func(i, j int) bool {
		if edits[i].File != edits[j].File {
			return edits[i].File < edits[j].File
		}
		if edits[i].Line != edits[j].Line {
			return edits[i].Line < edits[j].Line
		}
		return edits[i].Column < edits[j].Column
	})
	return edits, nil
}

func (e *Engine) relPathOf(absPath string) (string, error) {
	f, err := e.store.FileByAbsPath(absPath)
	if err != nil {
		return "", err
	}
	if f == nil {
		return absPath, nil
	}
	return f.RelPath, nil
}
