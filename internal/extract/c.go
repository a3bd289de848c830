package extract

import (
	"strconv"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/dennisonbertram/lgrep/internal/parser"
	"github.com/dennisonbertram/lgrep/internal/store"
)

// extractC mirrors the other tree-sitter extractors' walk. C has no
// class-like container for functions, so the walk only tracks callerID,
// not a type-name context.
func extractC(tree *parser.Tree, absPath, relPath string) Result {
	source := tree.Source
	root := tree.TS.Tree.RootNode()

	var res Result
	localSymbolIDs := make(map[string]string)
	callSeq := make(map[string]int)

	var walk func(n *sitter.Node, callerID string)
	walk = func(n *sitter.Node, callerID string) {
		if n == nil {
			return
		}
		switch n.Kind() {
		case "preproc_include":
			res.Dependencies = append(res.Dependencies, cIncludeDependency(n, source, absPath, relPath))
			return
		case "struct_specifier", "union_specifier", "enum_specifier":
			if sym, ok := cTypeSymbol(n, source, absPath, relPath); ok {
				res.Symbols = append(res.Symbols, sym)
				localSymbolIDs[sym.Name] = sym.ID
			}
		case "function_definition":
			if sym, ok := cFuncSymbol(n, source, absPath, relPath); ok {
				res.Symbols = append(res.Symbols, sym)
				localSymbolIDs[sym.Name] = sym.ID
				if body := n.ChildByFieldName("body"); body != nil {
					for _, c := range tsChildren(body) {
						walk(c, sym.ID)
					}
				}
			}
			return
		case "call_expression":
			if callerID != "" {
				if ce, ok := cCallEdge(n, source, absPath, callerID, localSymbolIDs, callSeq); ok {
					res.Calls = append(res.Calls, ce)
				}
			}
		}
		for _, c := range tsChildren(n) {
			walk(c, callerID)
		}
	}

	for _, c := range tsChildren(root) {
		walk(c, "")
	}
	return res
}

func cIncludeDependency(n *sitter.Node, source []byte, absPath, relPath string) store.Dependency {
	line := tsLine(n)
	pathNode := n.ChildByFieldName("path")
	raw := tsText(pathNode, source)
	isSystem := strings.HasPrefix(raw, "<")
	target := strings.Trim(raw, "<>\"")

	name := target
	if i := strings.LastIndex(target, "/"); i >= 0 {
		name = target[i+1:]
	}

	// A quoted include resolves against the including file's directory;
	// a <system> include never does.
	resolved := ""
	if !isSystem {
		resolved = resolveRelative(absPath, target)
	}

	return store.Dependency{
		ID:           relPath + ":" + strconv.Itoa(line) + ":import",
		SourceFile:   absPath,
		TargetModule: target,
		ResolvedPath: resolved,
		Kind:         store.DepImport,
		Line:         line,
		IsExternal:   resolved == "",
		Names:        []store.DependencyName{{Name: name}},
	}
}

func cTypeSymbol(n *sitter.Node, source []byte, absPath, relPath string) (store.Symbol, bool) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return store.Symbol{}, false // anonymous struct/union/enum, usually typedef'd elsewhere
	}
	name := tsText(nameNode, source)
	kind := store.SymbolClass
	if n.Kind() == "enum_specifier" {
		kind = store.SymbolEnum
	}
	return store.Symbol{
		ID:         symbolID(relPath, name, kind),
		Name:       name,
		Kind:       kind,
		FilePath:   absPath,
		RelPath:    relPath,
		LineStart:  tsLine(n),
		LineEnd:    tsEndLine(n),
		ColStart:   tsCol(n),
		ColEnd:     tsEndCol(n),
		IsExported: true, // C has no visibility keyword; linkage (static) would need the enclosing declaration
	}, true
}

func cFuncSymbol(n *sitter.Node, source []byte, absPath, relPath string) (store.Symbol, bool) {
	declarator := n.ChildByFieldName("declarator")
	name, params := cFunctionDeclaratorParts(declarator, source)
	if name == "" {
		return store.Symbol{}, false
	}

	sig := name + params
	if ret := n.ChildByFieldName("type"); ret != nil {
		sig = tsText(ret, source) + " " + sig
	}

	isStatic := false
	for _, c := range tsChildren(n) {
		if tsText(c, source) == "static" {
			isStatic = true
		}
	}

	return store.Symbol{
		ID:         symbolID(relPath, name, store.SymbolFunction),
		Name:       name,
		Kind:       store.SymbolFunction,
		FilePath:   absPath,
		RelPath:    relPath,
		LineStart:  tsLine(n),
		LineEnd:    tsEndLine(n),
		ColStart:   tsCol(n),
		ColEnd:     tsEndCol(n),
		IsExported: !isStatic,
		Signature:  sig,
	}, true
}

// cFunctionDeclaratorParts descends through pointer_declarator wrappers (for
// functions returning pointers) to the function_declarator's name and
// parameter list text.
func cFunctionDeclaratorParts(n *sitter.Node, source []byte) (name, params string) {
	for n != nil {
		switch n.Kind() {
		case "function_declarator":
			return tsText(n.ChildByFieldName("declarator"), source), tsText(n.ChildByFieldName("parameters"), source)
		case "pointer_declarator":
			n = n.ChildByFieldName("declarator")
		default:
			return "", ""
		}
	}
	return "", ""
}

func cCallEdge(n *sitter.Node, source []byte, absPath, callerID string, localSymbolIDs map[string]string, seq map[string]int) (store.CallEdge, bool) {
	fun := n.ChildByFieldName("function")
	if fun == nil || fun.Kind() != "identifier" {
		return store.CallEdge{}, false // function pointer / macro call targets aren't resolved
	}
	name := tsText(fun, source)

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

	return store.CallEdge{
		ID:            callerID + ":call" + strconv.Itoa(idx),
		CallerID:      callerID,
		CallerFile:    absPath,
		CalleeName:    name,
		CalleeID:      localSymbolIDs[name],
		Line:          tsLine(n),
		Column:        tsCol(n),
		IsMethodCall:  false,
		ArgumentCount: argCount,
	}, true
}
