package parser

import (
	"go/ast"
	"go/parser"
	"go/token"
)

// GoTree holds the go/ast output for one file, plus the FileSet needed to
// resolve positions (token.Pos is only meaningful alongside the FileSet that
// produced it).
type GoTree struct {
	File    *ast.File
	FileSet *token.FileSet
}

func (f *Frontend) parseGo(path string, source []byte) (*Tree, string) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, source, parser.ParseComments)
	if err != nil {
		return nil, err.Error()
	}

	return &Tree{
		Language: Go,
		Path:     path,
		Source:   source,
		Go:       &GoTree{File: file, FileSet: fset},
	}, ""
}
