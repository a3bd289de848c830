package store

import (
	"database/sql"
	"fmt"
	"strings"
)

const symbolColumns = `id, name, kind, file_path, rel_path, line_start, line_end, col_start, col_end, is_exported, is_default_export, signature, doc, parent_id, modifiers`

func scanSymbol(scanner interface {
	Scan(dest ...any) error
}) (Symbol, error) {
	var sym Symbol
	var kind string
	var isExported, isDefault int
	var modifiers string
	err := scanner.Scan(&sym.ID, &sym.Name, &kind, &sym.FilePath, &sym.RelPath, &sym.LineStart, &sym.LineEnd,
		&sym.ColStart, &sym.ColEnd, &isExported, &isDefault, &sym.Signature, &sym.Doc, &sym.ParentID, &modifiers)
	if err != nil {
		return Symbol{}, err
	}
	sym.Kind = SymbolKind(kind)
	sym.IsExported = isExported != 0
	sym.IsDefaultExport = isDefault != 0
	if modifiers != "" {
		sym.Modifiers = strings.Split(modifiers, ",")
	}
	return sym, nil
}

// SymbolByID looks up a single symbol, returning nil if absent.
func (s *Store) SymbolByID(id string) (*Symbol, error) {
	row := s.db.QueryRow(`SELECT `+symbolColumns+` FROM symbols WHERE id = ?`, id)
	sym, err := scanSymbol(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: symbol by id: %w", err)
	}
	return &sym, nil
}

// SymbolsByName returns every symbol named name, across all files.
func (s *Store) SymbolsByName(name string) ([]Symbol, error) {
	return s.querySymbols(`SELECT `+symbolColumns+` FROM symbols WHERE name = ? ORDER BY rel_path`, name)
}

// SymbolsByFile returns every symbol declared in absPath.
func (s *Store) SymbolsByFile(absPath string) ([]Symbol, error) {
	return s.querySymbols(`SELECT `+symbolColumns+` FROM symbols WHERE file_path = ? ORDER BY line_start`, absPath)
}

// SymbolsByKind returns every symbol of the given kind; pass "" for all.
func (s *Store) SymbolsByKind(kind string) ([]Symbol, error) {
	if kind == "" {
		return s.querySymbols(`SELECT ` + symbolColumns + ` FROM symbols ORDER BY rel_path, line_start`)
	}
	return s.querySymbols(`SELECT `+symbolColumns+` FROM symbols WHERE kind = ? ORDER BY rel_path, line_start`, kind)
}

// AllSymbols returns every symbol in the index.
func (s *Store) AllSymbols() ([]Symbol, error) {
	return s.SymbolsByKind("")
}

// ExportedSymbols returns every symbol with is_exported = true.
func (s *Store) ExportedSymbols() ([]Symbol, error) {
	return s.querySymbols(`SELECT ` + symbolColumns + ` FROM symbols WHERE is_exported = 1 ORDER BY rel_path, line_start`)
}

func (s *Store) querySymbols(query string, args ...any) ([]Symbol, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query symbols: %w", err)
	}
	defer rows.Close()

	var out []Symbol
	for rows.Next() {
		sym, err := scanSymbol(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan symbol: %w", err)
		}
		out = append(out, sym)
	}
	return out, rows.Err()
}
