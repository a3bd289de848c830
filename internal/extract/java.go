package extract

import (
	"strconv"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/dennisonbertram/lgrep/internal/parser"
	"github.com/dennisonbertram/lgrep/internal/store"
)

// extractJava follows the same explicit-context walk as Python/Rust:
// class_declaration/interface_declaration/enum_declaration set className
// for the method_declaration/field_declaration nodes in their body.
func extractJava(tree *parser.Tree, absPath, relPath string) Result {
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
		case "import_declaration":
			res.Dependencies = append(res.Dependencies, javaImportDependency(n, source, absPath, relPath))
			return
		case "class_declaration", "interface_declaration", "enum_declaration":
			sym := javaTypeSymbol(n, source, absPath, relPath)
			res.Symbols = append(res.Symbols, sym)
			localSymbolIDs[sym.Name] = sym.ID
			if body := n.ChildByFieldName("body"); body != nil {
				for _, c := range tsChildren(body) {
					walk(c, sym.Name, callerID)
				}
			}
			return
		case "method_declaration", "constructor_declaration":
			sym := javaMethodSymbol(n, source, absPath, relPath, className)
			res.Symbols = append(res.Symbols, sym)
			localSymbolIDs[sym.Name] = sym.ID
			if body := n.ChildByFieldName("body"); body != nil {
				for _, c := range tsChildren(body) {
					walk(c, "", sym.ID)
				}
			}
			return
		case "field_declaration":
			for _, sym := range javaFieldSymbols(n, source, absPath, relPath) {
				res.Symbols = append(res.Symbols, sym)
				localSymbolIDs[sym.Name] = sym.ID
			}
			return
		case "method_invocation":
			if callerID != "" {
				if ce, ok := javaCallEdge(n, source, absPath, callerID, localSymbolIDs, callSeq); ok {
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

func javaImportDependency(n *sitter.Node, source []byte, absPath, relPath string) store.Dependency {
	line := tsLine(n)
	raw := tsText(n, source)
	raw = strings.TrimSuffix(raw, ";")
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "import"))
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "static"))

	name := raw
	if i := strings.LastIndex(raw, "."); i >= 0 {
		name = raw[i+1:]
	}

	return store.Dependency{
		ID:           relPath + ":" + strconv.Itoa(line) + ":import",
		SourceFile:   absPath,
		TargetModule: raw,
		Kind:         store.DepImport,
		Line:         line,
		IsExternal:   true, // java.* / external package imports; same-project package resolution is out of scope
		Names:        []store.DependencyName{{Name: name, IsNamespace: name == "*"}},
	}
}

func javaTypeSymbol(n *sitter.Node, source []byte, absPath, relPath string) store.Symbol {
	name := tsText(n.ChildByFieldName("name"), source)
	kind := store.SymbolClass
	switch n.Kind() {
	case "interface_declaration":
		kind = store.SymbolInterface
	case "enum_declaration":
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
		IsExported: !strings.Contains(modifiersText(n, source), "private"),
	}
}

func javaMethodSymbol(n *sitter.Node, source []byte, absPath, relPath, className string) store.Symbol {
	nameNode := n.ChildByFieldName("name")
	name := tsText(nameNode, source)
	if name == "" {
		name = className // constructor_declaration has no "name" field in some grammar versions
	}
	kind := store.SymbolFunction
	qualified := name
	var parentID string
	if className != "" {
		kind = store.SymbolMethod
		qualified = className + "." + name
		parentID = symbolID(relPath, className, store.SymbolClass)
	}

	sig := qualified + tsText(n.ChildByFieldName("parameters"), source)
	if ret := n.ChildByFieldName("type"); ret != nil {
		sig = tsText(ret, source) + " " + sig
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
		IsExported: !strings.Contains(modifiersText(n, source), "private"),
		Signature:  sig,
		ParentID:   parentID,
	}
}

func javaFieldSymbols(n *sitter.Node, source []byte, absPath, relPath string) []store.Symbol {
	isConst := strings.Contains(modifiersText(n, source), "final")
	kind := store.SymbolProperty
	if isConst {
		kind = store.SymbolConstant
	}

	var out []store.Symbol
	for _, c := range tsChildren(n) {
		if c.Kind() != "variable_declarator" {
			continue
		}
		name := tsText(c.ChildByFieldName("name"), source)
		if name == "" {
			continue
		}
		out = append(out, store.Symbol{
			ID:         symbolID(relPath, name, kind),
			Name:       name,
			Kind:       kind,
			FilePath:   absPath,
			RelPath:    relPath,
			LineStart:  tsLine(n),
			LineEnd:    tsEndLine(n),
			ColStart:   tsCol(n),
			ColEnd:     tsEndCol(n),
			IsExported: !strings.Contains(modifiersText(n, source), "private"),
		})
	}
	return out
}

func modifiersText(n *sitter.Node, source []byte) string {
	for _, c := range tsChildren(n) {
		if c.Kind() == "modifiers" {
			return tsText(c, source)
		}
	}
	return ""
}

func javaCallEdge(n *sitter.Node, source []byte, absPath, callerID string, localSymbolIDs map[string]string, seq map[string]int) (store.CallEdge, bool) {
	nameNode := n.ChildByFieldName("name")
	name := tsText(nameNode, source)
	if name == "" {
		return store.CallEdge{}, false
	}
	receiver := tsText(n.ChildByFieldName("object"), source)

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
	if receiver == "" {
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
		IsMethodCall:  receiver != "",
		Receiver:      receiver,
		ArgumentCount: argCount,
	}, true
}
