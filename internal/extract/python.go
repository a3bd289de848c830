package extract

import (
	"strconv"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/dennisonbertram/lgrep/internal/parser"
	"github.com/dennisonbertram/lgrep/internal/store"
)

// extractPython walks a Python syntax tree with explicit (className,
// callerID) context in a single recursive pass: class_definition sets
// className for the methods in its body, function_definition sets callerID
// for the calls in its body, and a call node only produces a CallEdge when
// it sits inside some enclosing function or method.
func extractPython(tree *parser.Tree, absPath, relPath string) Result {
	source := tree.Source
	root := tree.TS.Tree.RootNode()

	var res Result
	localSymbolIDs := make(map[string]string)
	callSeq := make(map[string]int)

	var walk func(n *sitter.Node, className, callerID string)
	walk = func(n *sitter.Node, className, callerID string) {
		if n == nil {
			return
		}
		switch n.Kind() {
		case "import_statement", "import_from_statement":
			res.Dependencies = append(res.Dependencies, pythonImportDependency(n, source, absPath, relPath))
			return
		case "class_definition":
			sym := pythonClassSymbol(n, source, absPath, relPath)
			res.Symbols = append(res.Symbols, sym)
			localSymbolIDs[sym.Name] = sym.ID
			if body := n.ChildByFieldName("body"); body != nil {
				for _, c := range tsChildren(body) {
					walk(c, sym.Name, callerID)
				}
			}
			return
		case "function_definition":
			sym := pythonFuncSymbol(n, source, absPath, relPath, className)
			res.Symbols = append(res.Symbols, sym)
			localSymbolIDs[sym.Name] = sym.ID
			if body := n.ChildByFieldName("body"); body != nil {
				for _, c := range tsChildren(body) {
					walk(c, "", sym.ID)
				}
			}
			return
		case "call":
			if callerID != "" {
				if ce, ok := pythonCallEdge(n, source, absPath, callerID, localSymbolIDs, callSeq); ok {
					res.Calls = append(res.Calls, ce)
				}
			}
		}
		for _, c := range tsChildren(n) {
			walk(c, className, callerID)
		}
	}

	for _, c := range tsChildren(root) {
		walk(c, "", "")
	}
	return res
}

func pythonImportDependency(n *sitter.Node, source []byte, absPath, relPath string) store.Dependency {
	line := tsLine(n)
	var targetModule string
	var names []store.DependencyName

	if n.Kind() == "import_from_statement" {
		modNode := n.ChildByFieldName("module_name")
		targetModule = tsText(modNode, source)
		for _, c := range tsChildren(n) {
			switch c.Kind() {
			case "dotted_name", "identifier":
				if c == modNode {
					continue
				}
				names = append(names, store.DependencyName{Name: tsText(c, source)})
			case "aliased_import":
				names = append(names, store.DependencyName{
					Name:  tsText(c.ChildByFieldName("name"), source),
					Alias: tsText(c.ChildByFieldName("alias"), source),
				})
			case "wildcard_import":
				names = append(names, store.DependencyName{Name: "*", IsNamespace: true})
			}
		}
	} else {
		for _, c := range tsChildren(n) {
			switch c.Kind() {
			case "dotted_name":
				txt := tsText(c, source)
				if targetModule == "" {
					targetModule = txt
				}
				names = append(names, store.DependencyName{Name: txt})
			case "aliased_import":
				txt := tsText(c.ChildByFieldName("name"), source)
				if targetModule == "" {
					targetModule = txt
				}
				names = append(names, store.DependencyName{Name: txt, Alias: tsText(c.ChildByFieldName("alias"), source)})
			}
		}
	}

	resolved := ""
	if strings.HasPrefix(targetModule, ".") {
		resolved = resolveRelative(absPath, pythonModuleCandidates(targetModule)...)
	}

	return store.Dependency{
		ID:           relPath + ":" + strconv.Itoa(line) + ":import",
		SourceFile:   absPath,
		TargetModule: targetModule,
		ResolvedPath: resolved,
		Kind:         store.DepImport,
		Line:         line,
		IsExternal:   resolved == "",
		Names:        names,
	}
}

// pythonModuleCandidates maps a relative module specifier to the file paths
// it could denote: one leading dot is the source file's own package, each
// further dot one package up, and the dotted remainder either a module file
// or a package directory's __init__.py.
func pythonModuleCandidates(specifier string) []string {
	dots := 0
	for dots < len(specifier) && specifier[dots] == '.' {
		dots++
	}
	up := strings.Repeat("../", dots-1)
	rest := strings.ReplaceAll(specifier[dots:], ".", "/")
	if rest == "" {
		return []string{up + "__init__.py"}
	}
	return []string{up + rest + ".py", up + rest + "/__init__.py"}
}

func pythonClassSymbol(n *sitter.Node, source []byte, absPath, relPath string) store.Symbol {
	name := tsText(n.ChildByFieldName("name"), source)
	return store.Symbol{
		ID:         symbolID(relPath, name, store.SymbolClass),
		Name:       name,
		Kind:       store.SymbolClass,
		FilePath:   absPath,
		RelPath:    relPath,
		LineStart:  tsLine(n),
		LineEnd:    tsEndLine(n),
		ColStart:   tsCol(n),
		ColEnd:     tsEndCol(n),
		IsExported: !strings.HasPrefix(name, "_"),
	}
}

func pythonFuncSymbol(n *sitter.Node, source []byte, absPath, relPath, className string) store.Symbol {
	name := tsText(n.ChildByFieldName("name"), source)
	kind := store.SymbolFunction
	qualified := name
	var parentID string
	if className != "" {
		kind = store.SymbolMethod
		qualified = className + "." + name
		parentID = symbolID(relPath, className, store.SymbolClass)
	}

	sig := qualified + tsText(n.ChildByFieldName("parameters"), source)
	if ret := n.ChildByFieldName("return_type"); ret != nil {
		sig += " -> " + tsText(ret, source)
	}

	return store.Symbol{
		ID:         symbolID(relPath, qualified, kind),
		Name:       name,
		Kind:       kind,
		FilePath:   absPath,
		RelPath:    relPath,
		LineStart:  tsLine(n),
		LineEnd:    tsEndLine(n),
		ColStart:   tsCol(n),
		ColEnd:     tsEndCol(n),
		IsExported: !strings.HasPrefix(name, "_"),
		Signature:  sig,
		ParentID:   parentID,
	}
}

func pythonCallEdge(n *sitter.Node, source []byte, absPath, callerID string, localSymbolIDs map[string]string, seq map[string]int) (store.CallEdge, bool) {
	name, receiver, isMethodCall := pythonCalleeName(n.ChildByFieldName("function"), source)
	if name == "" {
		return store.CallEdge{}, false
	}

	argCount := 0
	if args := n.ChildByFieldName("arguments"); args != nil {
		for _, c := range tsChildren(args) {
			switch c.Kind() {
			case "(", ")", ",":
			default:
				argCount++
			}
		}
	}

	idx := seq[callerID]
	seq[callerID] = idx + 1

	// Only a bare-name call resolves against this file's symbols; a
	// receiver-qualified call's target cannot be picked lexically.
	calleeID := ""
	if !isMethodCall {
		calleeID = localSymbolIDs[name]
	}

	return store.CallEdge{
		ID:            callerID + ":call" + strconv.Itoa(idx),
		CallerID:      callerID,
		CallerFile:    absPath,
		CalleeName:    name,
		CalleeID:      calleeID,
		Line:          tsLine(n),
		Column:        tsCol(n),
		IsMethodCall:  isMethodCall,
		Receiver:      receiver,
		ArgumentCount: argCount,
	}, true
}

func pythonCalleeName(fun *sitter.Node, source []byte) (name, receiver string, isMethodCall bool) {
	if fun == nil {
		return "", "", false
	}
	switch fun.Kind() {
	case "identifier":
		return tsText(fun, source), "", false
	case "attribute":
		obj := fun.ChildByFieldName("object")
		attr := fun.ChildByFieldName("attribute")
		recv := ""
		if obj != nil && obj.Kind() == "identifier" {
			recv = tsText(obj, source)
		}
		return tsText(attr, source), recv, true
	default:
		return "", "", false
	}
}
