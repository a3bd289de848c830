package store

import (
	"fmt"
)

// DependenciesBySourceFile returns every dependency declared in absPath,
// with its DependencyNames populated.
func (s *Store) DependenciesBySourceFile(absPath string) ([]Dependency, error) {
	return s.queryDependencies(`WHERE source_file = ? ORDER BY line`, absPath)
}

// DependenciesOnFile returns every dependency whose resolved_path is
// absPath, i.e. the files that import it.
func (s *Store) DependenciesOnFile(absPath string) ([]Dependency, error) {
	return s.queryDependencies(`WHERE resolved_path = ? AND is_external = 0 ORDER BY source_file`, absPath)
}

// AllDependencies returns every dependency in the index.
func (s *Store) AllDependencies() ([]Dependency, error) {
	return s.queryDependencies(``)
}

// DependenciesReferencingName returns dependencies that import or re-export
// a given name, used by unused-exports and rename.
func (s *Store) DependenciesReferencingName(name string) ([]Dependency, error) {
	rows, err := s.db.Query(`
		SELECT DISTINCT d.id FROM dependencies d
		JOIN dependency_names n ON n.dependency_id = d.id
		WHERE n.name = ?
	`, name)
	if err != nil {
		return nil, fmt.Errorf("store: dependencies referencing %s: %w", name, err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]Dependency, 0, len(ids))
	for _, id := range ids {
		d, err := s.dependencyByID(id)
		if err != nil {
			return nil, err
		}
		if d != nil {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (s *Store) dependencyByID(id string) (*Dependency, error) {
	deps, err := s.queryDependencies(`WHERE id = ?`, id)
	if err != nil || len(deps) == 0 {
		return nil, err
	}
	return &deps[0], nil
}

func (s *Store) queryDependencies(where string, args ...any) ([]Dependency, error) {
	query := `SELECT id, source_file, target_module, resolved_path, kind, line, is_external FROM dependencies ` + where
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query dependencies: %w", err)
	}

	var deps []Dependency
	for rows.Next() {
		var d Dependency
		var kind string
		var isExternal int
		if err := rows.Scan(&d.ID, &d.SourceFile, &d.TargetModule, &d.ResolvedPath, &kind, &d.Line, &isExternal); err != nil {
			rows.Close()
			return nil, fmt.Errorf("store: scan dependency: %w", err)
		}
		d.Kind = DependencyKind(kind)
		d.IsExternal = isExternal != 0
		deps = append(deps, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range deps {
		names, err := s.dependencyNames(deps[i].ID)
		if err != nil {
			return nil, err
		}
		deps[i].Names = names
	}
	return deps, nil
}

func (s *Store) dependencyNames(depID string) ([]DependencyName, error) {
	rows, err := s.db.Query(`
		SELECT name, alias, is_type_only, is_default, is_namespace
		FROM dependency_names WHERE dependency_id = ? ORDER BY position
	`, depID)
	if err != nil {
		return nil, fmt.Errorf("store: dependency names for %s: %w", depID, err)
	}
	defer rows.Close()

	var out []DependencyName
	for rows.Next() {
		var n DependencyName
		var typeOnly, isDefault, isNamespace int
		if err := rows.Scan(&n.Name, &n.Alias, &typeOnly, &isDefault, &isNamespace); err != nil {
			return nil, err
		}
		n.IsTypeOnly = typeOnly != 0
		n.IsDefault = isDefault != 0
		n.IsNamespace = isNamespace != 0
		out = append(out, n)
	}
	return out, rows.Err()
}
