// Package extract turns a parsed file into store-ready symbol,
// dependency, and call-edge rows in a single pass over its parser.Tree. Re-extracting an
// unchanged file yields byte-identical rows: every id is derived
// deterministically from the file's content, never from a timestamp.
// Symbol ids come from (rel_path, qualified name, kind), dependency ids
// from (rel_path, line), and call ids from the caller's symbol id plus the
// call's position in that caller's body.
package extract

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dennisonbertram/lgrep/internal/parser"
	"github.com/dennisonbertram/lgrep/internal/store"
)

// Result bundles what one file's extraction pass produced.
type Result struct {
	Symbols      []store.Symbol
	Dependencies []store.Dependency
	Calls        []store.CallEdge
}

// Extract dispatches on tree.Language and returns every symbol, dependency,
// and call edge found in the file. absPath/relPath are carried onto every
// row produced. Call resolution only ever matches symbols defined in the
// same file, the lexically nearer scope; imported-symbol resolution is
// left to the query engine, which has the whole index available.
func Extract(tree *parser.Tree, absPath, relPath string) (Result, error) {
	switch tree.Language {
	case parser.Go:
		return extractGo(tree, absPath, relPath)
	case parser.C, parser.Java, parser.Python, parser.Rust:
		return extractTreeSitter(tree, absPath, relPath)
	default:
		return Result{}, fmt.Errorf("extract: unsupported language %q", tree.Language)
	}
}

func symbolID(relPath, qualifiedName string, kind store.SymbolKind) string {
	return fmt.Sprintf("%s:%s:%s", relPath, qualifiedName, kind)
}

func isExportedName(name string) bool {
	if name == "" {
		return false
	}
	r := name[0]
	return r >= 'A' && r <= 'Z'
}

// resolveRelative returns the first candidate path (relative to sourceFile's
// directory) that exists on disk, or "". A dependency that resolves is
// internal and carries the resolved path; one that doesn't is recorded as
// external, keeping "internal implies resolvable" true even for a relative
// specifier pointing at a file that is gone.
func resolveRelative(sourceFile string, candidates ...string) string {
	dir := filepath.Dir(sourceFile)
	for _, c := range candidates {
		p := filepath.Clean(filepath.Join(dir, c))
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}
