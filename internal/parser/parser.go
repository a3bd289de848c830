// Package parser maps a file extension to a language grammar and produces a
// syntax tree. Go files go through go/ast/go/parser; every
// other supported language goes through tree-sitter. Grammars load on
// first use and are cached in the Frontend, keyed by language; a fresh
// tree-sitter parser is created for each Parse call.
package parser

import (
	"path/filepath"
	"strings"
	"sync"
)

// Language is one of the grammars the front-end knows how to parse.
type Language string

const (
	Go     Language = "go"
	C      Language = "c"
	Java   Language = "java"
	Python Language = "python"
	Rust   Language = "rust"
)

// LanguageForExt returns the Language that owns ext (including the leading
// dot, any case), and false if no parser handles that extension.
func LanguageForExt(ext string) (Language, bool) {
	switch strings.ToLower(ext) {
	case ".go":
		return Go, true
	case ".c", ".h":
		return C, true
	case ".cpp", ".cc", ".cxx", ".hpp":
		return C, true // tree-sitter-c is permissive enough for the C-compatible subset of these
	case ".java":
		return Java, true
	case ".py":
		return Python, true
	case ".rs":
		return Rust, true
	default:
		return "", false
	}
}

// Tree is the parsed form of one file, tagged by which backend produced it.
// Exactly one of Go or TS is non-nil.
type Tree struct {
	Language Language
	Path     string
	Source   []byte
	Go       *GoTree
	TS       *TSTree
}

// Close releases resources owned by the tree. Safe to call on a nil Tree.
func (t *Tree) Close() {
	if t == nil {
		return
	}
	if t.TS != nil {
		t.TS.Close()
	}
}

// Frontend is the process-wide, lazily-populated parser cache. The zero
// value is ready to use.
type Frontend struct {
	mu  sync.Mutex
	ts  map[Language]*tsParser
}

// New returns a ready Frontend. One Frontend should be shared for the
// lifetime of a process (indexer run, daemon, or query server).
func New() *Frontend {
	return &Frontend{ts: make(map[Language]*tsParser)}
}

// Parse maps ext to a Language and parses source with the corresponding
// grammar. A nil Tree with an empty parseErr means the extension is not
// supported by any parser, not a failure, just nothing to extract. A nil
// Tree with a non-empty parseErr means the grammar is known but the file
// failed to parse; that is never a Go error, only a note
// the caller attaches to the FileRecord.
func (f *Frontend) Parse(path string, source []byte) (tree *Tree, parseErr string) {
	lang, ok := LanguageForExt(filepath.Ext(path))
	if !ok {
		return nil, ""
	}

	if lang == Go {
		return f.parseGo(path, source)
	}
	return f.parseTreeSitter(lang, path, source)
}
