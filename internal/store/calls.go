package store

import "fmt"

const callColumns = `id, caller_id, caller_file, callee_name, callee_id, callee_file, line, column, is_method_call, receiver, argument_count`

func scanCall(rows interface{ Scan(dest ...any) error }) (CallEdge, error) {
	var c CallEdge
	var isMethod int
	err := rows.Scan(&c.ID, &c.CallerID, &c.CallerFile, &c.CalleeName, &c.CalleeID, &c.CalleeFile, &c.Line, &c.Column, &isMethod, &c.Receiver, &c.ArgumentCount)
	c.IsMethodCall = isMethod != 0
	return c, err
}

// CallsByCalleeID returns every call edge resolved (callee_id) to symbolID.
func (s *Store) CallsByCalleeID(symbolID string) ([]CallEdge, error) {
	return s.queryCalls(`WHERE callee_id = ?`, symbolID)
}

// CallsByCalleeName returns every call edge with a matching bare callee
// name, whether or not it resolved to a symbol id.
func (s *Store) CallsByCalleeName(name string) ([]CallEdge, error) {
	return s.queryCalls(`WHERE callee_name = ?`, name)
}

// CallsByCallerID returns every call edge made from within callerID.
func (s *Store) CallsByCallerID(callerID string) ([]CallEdge, error) {
	return s.queryCalls(`WHERE caller_id = ?`, callerID)
}

// AllCalls returns every call edge in the index.
func (s *Store) AllCalls() ([]CallEdge, error) {
	return s.queryCalls(``)
}

func (s *Store) queryCalls(where string, args ...any) ([]CallEdge, error) {
	rows, err := s.db.Query(`SELECT `+callColumns+` FROM calls `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query calls: %w", err)
	}
	defer rows.Close()

	var out []CallEdge
	for rows.Next() {
		c, err := scanCall(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan call: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
