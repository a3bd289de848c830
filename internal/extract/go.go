package extract

import (
	"go/ast"
	"go/token"
	"strconv"
	"strings"

	"github.com/dennisonbertram/lgrep/internal/parser"
	"github.com/dennisonbertram/lgrep/internal/store"
)

func extractGo(tree *parser.Tree, absPath, relPath string) (Result, error) {
	file := tree.Go.File
	fset := tree.Go.FileSet

	var res Result
	typeSymbolID := make(map[string]string) // type name -> symbol id, for method ParentID

	for _, imp := range file.Imports {
		res.Dependencies = append(res.Dependencies, goImportDependency(imp, fset, absPath, relPath))
	}

	var funcs []*ast.FuncDecl
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			res.Symbols = append(res.Symbols, goGenDeclSymbols(d, fset, absPath, relPath, typeSymbolID)...)
		case *ast.FuncDecl:
			funcs = append(funcs, d)
		}
	}

	// Function/method symbols are built in a second pass so ParentID can
	// reference a receiver type symbol already recorded above.
	localSymbolIDs := make(map[string]string) // bare symbol name -> id, for intra-file call resolution
	for _, sym := range res.Symbols {
		localSymbolIDs[sym.Name] = sym.ID
	}

	for _, d := range funcs {
		sym := goFuncSymbol(d, fset, absPath, relPath, typeSymbolID)
		res.Symbols = append(res.Symbols, sym)
		localSymbolIDs[sym.Name] = sym.ID
	}

	for _, d := range funcs {
		callerSym := goFuncSymbol(d, fset, absPath, relPath, typeSymbolID)
		if d.Body == nil {
			continue
		}
		res.Calls = append(res.Calls, goExtractCalls(d.Body, fset, absPath, callerSym.ID, localSymbolIDs)...)
	}

	return res, nil
}

func goImportDependency(imp *ast.ImportSpec, fset *token.FileSet, absPath, relPath string) store.Dependency {
	path, _ := strconv.Unquote(imp.Path.Value)
	line := fset.Position(imp.Pos()).Line

	alias := ""
	if imp.Name != nil {
		alias = imp.Name.Name
	}
	displayName := alias
	if displayName == "" {
		parts := strings.Split(path, "/")
		displayName = parts[len(parts)-1]
	}

	// Go import paths never start with "." or "/" (there is no relative
	// import syntax), so the resolution rule (external iff the specifier
	// doesn't start with "." or "/") classifies every Go import as
	// external. Resolving same-module internal packages to a FileRecord
	// would need full module-path/GOPATH awareness, which is out of
	// scope; see DESIGN.md.
	return store.Dependency{
		ID:           relPath + ":" + strconv.Itoa(line) + ":import",
		SourceFile:   absPath,
		TargetModule: path,
		Kind:         store.DepImport,
		Line:         line,
		IsExternal:   true,
		Names: []store.DependencyName{{
			Name:      displayName,
			Alias:     alias,
			IsDefault: false,
		}},
	}
}

func goGenDeclSymbols(decl *ast.GenDecl, fset *token.FileSet, absPath, relPath string, typeSymbolID map[string]string) []store.Symbol {
	var out []store.Symbol
	for _, spec := range decl.Specs {
		switch s := spec.(type) {
		case *ast.TypeSpec:
			kind := store.SymbolTypeAlias
			switch s.Type.(type) {
			case *ast.StructType:
				kind = store.SymbolClass
			case *ast.InterfaceType:
				kind = store.SymbolInterface
			}
			id := symbolID(relPath, s.Name.Name, kind)
			typeSymbolID[s.Name.Name] = id
			out = append(out, store.Symbol{
				ID:         id,
				Name:       s.Name.Name,
				Kind:       kind,
				FilePath:   absPath,
				RelPath:    relPath,
				LineStart:  fset.Position(s.Pos()).Line,
				LineEnd:    fset.Position(s.End()).Line,
				ColStart:   fset.Position(s.Pos()).Column,
				ColEnd:     fset.Position(s.End()).Column,
				IsExported: isExportedName(s.Name.Name),
				Doc:        declDoc(decl, s.Doc),
			})
		case *ast.ValueSpec:
			kind := store.SymbolVariable
			if decl.Tok == token.CONST {
				kind = store.SymbolConstant
			}
			for _, name := range s.Names {
				if name.Name == "_" {
					continue
				}
				id := symbolID(relPath, name.Name, kind)
				out = append(out, store.Symbol{
					ID:         id,
					Name:       name.Name,
					Kind:       kind,
					FilePath:   absPath,
					RelPath:    relPath,
					LineStart:  fset.Position(s.Pos()).Line,
					LineEnd:    fset.Position(s.End()).Line,
					ColStart:   fset.Position(s.Pos()).Column,
					ColEnd:     fset.Position(s.End()).Column,
					IsExported: isExportedName(name.Name),
				})
			}
		}
	}
	return out
}

func declDoc(decl *ast.GenDecl, specDoc *ast.CommentGroup) string {
	if specDoc != nil {
		return strings.TrimSpace(specDoc.Text())
	}
	if decl.Doc != nil {
		return strings.TrimSpace(decl.Doc.Text())
	}
	return ""
}

func goFuncSymbol(decl *ast.FuncDecl, fset *token.FileSet, absPath, relPath string, typeSymbolID map[string]string) store.Symbol {
	kind := store.SymbolFunction
	qualifiedName := decl.Name.Name
	var parentID string

	if decl.Recv != nil && len(decl.Recv.List) > 0 {
		kind = store.SymbolMethod
		recvType := goReceiverTypeName(decl.Recv.List[0].Type)
		qualifiedName = recvType + "." + decl.Name.Name
		parentID = typeSymbolID[recvType]
	}

	return store.Symbol{
		ID:              symbolID(relPath, qualifiedName, kind),
		Name:            decl.Name.Name,
		Kind:            kind,
		FilePath:        absPath,
		RelPath:         relPath,
		LineStart:       fset.Position(decl.Pos()).Line,
		LineEnd:         fset.Position(decl.End()).Line,
		ColStart:        fset.Position(decl.Pos()).Column,
		ColEnd:          fset.Position(decl.End()).Column,
		IsExported:      isExportedName(decl.Name.Name),
		IsDefaultExport: false,
		Signature:       goFuncSignature(decl),
		Doc:             strings.TrimSpace(decl.Doc.Text()),
		ParentID:        parentID,
	}
}

func goReceiverTypeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return goReceiverTypeName(t.X)
	case *ast.IndexExpr: // generic receiver: (T[P])
		return goReceiverTypeName(t.X)
	default:
		return ""
	}
}

func goFuncSignature(decl *ast.FuncDecl) string {
	var b strings.Builder
	b.WriteString("func ")
	if decl.Recv != nil && len(decl.Recv.List) > 0 {
		b.WriteString("(")
		b.WriteString(goReceiverTypeName(decl.Recv.List[0].Type))
		b.WriteString(") ")
	}
	b.WriteString(decl.Name.Name)
	b.WriteString("(")
	b.WriteString(strconv.Itoa(decl.Type.Params.NumFields()))
	b.WriteString(" params)")
	return b.String()
}

func goExtractCalls(body *ast.BlockStmt, fset *token.FileSet, absPath, callerID string, localSymbolIDs map[string]string) []store.CallEdge {
	var calls []store.CallEdge
	n := 0
	ast.Inspect(body, func(node ast.Node) bool {
		call, ok := node.(*ast.CallExpr)
		if !ok {
			return true
		}

		name, receiver, isMethodCall := goCalleeName(call.Fun)
		if name == "" {
			return true
		}

		pos := fset.Position(call.Pos())
		// Only a bare-name call resolves against this file's symbols; a
		// selector call's target lives on a receiver or another package.
		calleeID := ""
		if !isMethodCall {
			calleeID = localSymbolIDs[name]
		}

		calls = append(calls, store.CallEdge{
			ID:            callerID + ":call" + strconv.Itoa(n),
			CallerID:      callerID,
			CallerFile:    absPath,
			CalleeName:    name,
			CalleeID:      calleeID,
			Line:          pos.Line,
			Column:        pos.Column,
			IsMethodCall:  isMethodCall,
			Receiver:      receiver,
			ArgumentCount: len(call.Args),
		})
		n++
		return true
	})
	return calls
}

// goCalleeName returns the bare callee name used for intra-file symbol
// lookup, the receiver text for selector calls, and whether the call went
// through a selector (obj.Method() / pkg.Func()) rather than a direct
// identifier. Without type information a package-qualified function call
// and a method call on a value both look like a SelectorExpr; both are
// reported with IsMethodCall=true.
func goCalleeName(fun ast.Expr) (name, receiver string, isMethodCall bool) {
	switch f := fun.(type) {
	case *ast.Ident:
		return f.Name, "", false
	case *ast.SelectorExpr:
		if ident, ok := f.X.(*ast.Ident); ok {
			return f.Sel.Name, ident.Name, true
		}
		return f.Sel.Name, "", true
	default:
		return "", "", false
	}
}
