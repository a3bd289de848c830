package parser

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
)

// TSTree wraps a parsed tree-sitter tree alongside the grammar that produced
// it, so extractors can interpret node kinds correctly.
type TSTree struct {
	Tree     *sitter.Tree
	Language *sitter.Language
}

// Close releases the underlying tree-sitter tree.
func (t *TSTree) Close() {
	if t != nil && t.Tree != nil {
		t.Tree.Close()
	}
}

// tsParser holds one grammar loaded once and reused for every file in that
// language.
type tsParser struct {
	language *sitter.Language
}

func grammarFor(lang Language) (*sitter.Language, error) {
	switch lang {
	case C:
		return sitter.NewLanguage(c.Language()), nil
	case Java:
		return sitter.NewLanguage(java.Language()), nil
	case Python:
		return sitter.NewLanguage(python.Language()), nil
	case Rust:
		return sitter.NewLanguage(rust.Language()), nil
	default:
		return nil, fmt.Errorf("parser: no tree-sitter grammar for %q", lang)
	}
}

func (f *Frontend) parseTreeSitter(lang Language, path string, source []byte) (*Tree, string) {
	f.mu.Lock()
	if f.ts == nil {
		f.ts = make(map[Language]*tsParser)
	}
	p, ok := f.ts[lang]
	if !ok {
		grammar, err := grammarFor(lang)
		if err != nil {
			f.mu.Unlock()
			return nil, err.Error()
		}
		p = &tsParser{language: grammar}
		f.ts[lang] = p
	}
	f.mu.Unlock()

	sp := sitter.NewParser()
	defer sp.Close()
	sp.SetLanguage(p.language)

	tree := sp.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Sprintf("parser: %s: tree-sitter returned no tree", lang)
	}

	return &Tree{
		Language: lang,
		Path:     path,
		Source:   source,
		TS:       &TSTree{Tree: tree, Language: p.language},
	}, ""
}
