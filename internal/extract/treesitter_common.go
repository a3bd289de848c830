package extract

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/dennisonbertram/lgrep/internal/parser"
)

func extractTreeSitter(tree *parser.Tree, absPath, relPath string) (Result, error) {
	switch tree.Language {
	case parser.Python:
		return extractPython(tree, absPath, relPath), nil
	case parser.Rust:
		return extractRust(tree, absPath, relPath), nil
	case parser.Java:
		return extractJava(tree, absPath, relPath), nil
	case parser.C:
		return extractC(tree, absPath, relPath), nil
	default:
		return Result{}, nil
	}
}

func tsText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

func tsLine(node *sitter.Node) int    { return int(node.StartPosition().Row) + 1 }
func tsEndLine(node *sitter.Node) int { return int(node.EndPosition().Row) + 1 }
func tsCol(node *sitter.Node) int     { return int(node.StartPosition().Column) }
func tsEndCol(node *sitter.Node) int  { return int(node.EndPosition().Column) }

// tsChildren returns every direct child of node, a thin helper over the
// index-based ChildCount/Child API the go-tree-sitter bindings expose.
func tsChildren(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, node.ChildCount())
	for i := 0; i < int(node.ChildCount()); i++ {
		out = append(out, node.Child(uint(i)))
	}
	return out
}
