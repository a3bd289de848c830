package extract

import (
	"strconv"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/dennisonbertram/lgrep/internal/parser"
	"github.com/dennisonbertram/lgrep/internal/store"
)

// extractRust mirrors extractPython's explicit-context walk. impl_item
// plays the role Python's class_definition plays: it sets typeName for
// the function_item methods in its body.
func extractRust(tree *parser.Tree, absPath, relPath string) Result {
	source := tree.Source
	root := tree.TS.Tree.RootNode()

	var res Result
	localSymbolIDs := make(map[string]string)
	callSeq := make(map[string]int)

	var walk func(n *sitter.Node, typeName, callerID string)
	walk = func(n *sitter.Node, typeName, callerID string) {
		if n == nil {
			return
		}
		switch n.Kind() {
		case "use_declaration":
			res.Dependencies = append(res.Dependencies, rustUseDependency(n, source, absPath, relPath))
			return
		case "struct_item", "enum_item", "trait_item":
			sym := rustTypeSymbol(n, source, absPath, relPath)
			res.Symbols = append(res.Symbols, sym)
			localSymbolIDs[sym.Name] = sym.ID
			return
		case "impl_item":
			implType := rustImplTypeName(n, source)
			if body := n.ChildByFieldName("body"); body != nil {
				for _, c := range tsChildren(body) {
					walk(c, implType, callerID)
				}
			}
			return
		case "function_item":
			sym := rustFuncSymbol(n, source, absPath, relPath, typeName)
			res.Symbols = append(res.Symbols, sym)
			localSymbolIDs[sym.Name] = sym.ID
			if body := n.ChildByFieldName("body"); body != nil {
				for _, c := range tsChildren(body) {
					walk(c, "", sym.ID)
				}
			}
			return
		case "const_item", "static_item":
			if sym, ok := rustConstSymbol(n, source, absPath, relPath); ok {
				res.Symbols = append(res.Symbols, sym)
				localSymbolIDs[sym.Name] = sym.ID
			}
			return
		case "call_expression":
			if callerID != "" {
				if ce, ok := rustCallEdge(n, source, absPath, callerID, localSymbolIDs, callSeq); ok {
					res.Calls = append(res.Calls, ce)
				}
			}
		}
		for _, c := range tsChildren(n) {
			walk(c, typeName, callerID)
		}
	}

	for _, c := range tsChildren(root) {
		walk(c, "", "")
	}
	return res
}

func rustUseDependency(n *sitter.Node, source []byte, absPath, relPath string) store.Dependency {
	line := tsLine(n)
	// use_declaration's structure varies widely (use_list, scoped_use_list,
	// use_as_clause, wildcard); the full path text between "use" and ";" is
	// kept as the target module rather than decomposing every name in a
	// multi-import list.
	raw := tsText(n, source)
	raw = strings.TrimSuffix(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "use")), ";")
	raw = strings.TrimSpace(raw)

	basePath := raw
	if i := strings.IndexAny(basePath, "{*"); i >= 0 {
		basePath = strings.TrimSuffix(basePath[:i], ":")
	}
	basePath = strings.TrimSpace(basePath)

	lastSegment := basePath
	if i := strings.LastIndex(basePath, "::"); i >= 0 {
		lastSegment = basePath[i+2:]
	}

	// self:: and super:: paths resolve against the source file's own
	// directory tree; crate:: would need the crate root, so it stays
	// unresolved and is recorded as external like any other bare path.
	resolved := ""
	if m, ok := strings.CutPrefix(basePath, "self::"); ok {
		resolved = resolveRelative(absPath, rustModuleCandidates("", m)...)
	} else if m, ok := strings.CutPrefix(basePath, "super::"); ok {
		resolved = resolveRelative(absPath, rustModuleCandidates("../", m)...)
	}

	return store.Dependency{
		ID:           relPath + ":" + strconv.Itoa(line) + ":import",
		SourceFile:   absPath,
		TargetModule: basePath,
		ResolvedPath: resolved,
		Kind:         store.DepImport,
		Line:         line,
		IsExternal:   resolved == "",
		Names:        []store.DependencyName{{Name: lastSegment}},
	}
}

// rustModuleCandidates maps the first segment of an intra-crate module path
// to the files that could define it.
func rustModuleCandidates(prefix, path string) []string {
	first := path
	if i := strings.Index(first, "::"); i >= 0 {
		first = first[:i]
	}
	if first == "" {
		return nil
	}
	return []string{prefix + first + ".rs", prefix + first + "/mod.rs"}
}

func rustTypeSymbol(n *sitter.Node, source []byte, absPath, relPath string) store.Symbol {
	name := tsText(n.ChildByFieldName("name"), source)
	kind := store.SymbolClass
	if n.Kind() == "trait_item" {
		kind = store.SymbolInterface
	} else if n.Kind() == "enum_item" {
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
		IsExported: true, // pub-ness needs the visibility_modifier sibling; treated as exported by default
	}
}

func rustImplTypeName(n *sitter.Node, source []byte) string {
	t := n.ChildByFieldName("type")
	txt := tsText(t, source)
	if i := strings.IndexByte(txt, '<'); i >= 0 {
		txt = txt[:i]
	}
	return strings.TrimSpace(txt)
}

func rustFuncSymbol(n *sitter.Node, source []byte, absPath, relPath, typeName string) store.Symbol {
	name := tsText(n.ChildByFieldName("name"), source)
	kind := store.SymbolFunction
	qualified := name
	var parentID string
	if typeName != "" {
		kind = store.SymbolMethod
		qualified = typeName + "." + name
		parentID = symbolID(relPath, typeName, store.SymbolClass)
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
		IsExported: true,
		Signature:  sig,
		ParentID:   parentID,
	}
}

func rustConstSymbol(n *sitter.Node, source []byte, absPath, relPath string) (store.Symbol, bool) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return store.Symbol{}, false
	}
	name := tsText(nameNode, source)
	return store.Symbol{
		ID:         symbolID(relPath, name, store.SymbolConstant),
		Name:       name,
		Kind:       store.SymbolConstant,
		FilePath:   absPath,
		RelPath:    relPath,
		LineStart:  tsLine(n),
		LineEnd:    tsEndLine(n),
		ColStart:   tsCol(n),
		ColEnd:     tsEndCol(n),
		IsExported: true,
	}, true
}

func rustCallEdge(n *sitter.Node, source []byte, absPath, callerID string, localSymbolIDs map[string]string, seq map[string]int) (store.CallEdge, bool) {
	name, receiver, isMethodCall := rustCalleeName(n.ChildByFieldName("function"), source)
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

func rustCalleeName(fun *sitter.Node, source []byte) (name, receiver string, isMethodCall bool) {
	if fun == nil {
		return "", "", false
	}
	switch fun.Kind() {
	case "identifier":
		return tsText(fun, source), "", false
	case "field_expression":
		value := fun.ChildByFieldName("value")
		field := fun.ChildByFieldName("field")
		recv := ""
		if value != nil && value.Kind() == "identifier" {
			recv = tsText(value, source)
		}
		return tsText(field, source), recv, true
	case "scoped_identifier":
		path := fun.ChildByFieldName("path")
		ident := fun.ChildByFieldName("name")
		return tsText(ident, source), tsText(path, source), true
	default:
		return "", "", false
	}
}
