package query

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dennisonbertram/lgrep/internal/layout"
	"github.com/dennisonbertram/lgrep/internal/store"
)

// AutoDetect picks the ready index whose root_path is the deepest ancestor
// of cwd, falling back to a repository-local
// .lgrep.json that names an index. Failed and building indexes are never
// auto-selected. Returns ("", nil), not an error, when nothing matches.
func AutoDetect(lay *layout.Layout, cwd string) (string, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return "", err
	}

	names, err := lay.Indexes()
	if err != nil {
		return "", err
	}

	best := ""
	bestDepth := -1
	for _, name := range names {
		dbDir := lay.IndexDBDir(name)
		if !dbExists(dbDir) {
			continue
		}
		meta, err := peekMetadata(dbDir)
		if err != nil || meta == nil {
			continue
		}
		if meta.Status != store.StatusReady {
			continue
		}
		rootAbs, err := filepath.Abs(meta.RootPath)
		if err != nil {
			continue
		}
		if !isAncestor(rootAbs, cwdAbs) {
			continue
		}
		depth := strings.Count(filepath.ToSlash(rootAbs), "/")
		if depth > bestDepth {
			bestDepth = depth
			best = name
		}
	}
	if best != "" {
		return best, nil
	}

	override, err := layout.FindLocalOverride(cwd)
	if err != nil {
		return "", err
	}
	if override != nil && override.Index != "" {
		return override.Index, nil
	}
	return "", nil
}

func dbExists(dbDir string) bool {
	_, err := os.Stat(filepath.Join(dbDir, "lgrep.db"))
	return err == nil
}

// peekMetadata opens dbDir read-only-in-spirit just to read its
// IndexMetadata row. store.Open is reused rather than a separate
// lower-level reader, since a bootstrapped index's schema already exists
// and Open only creates one when dbDir has no database file yet, which
// dbExists already ruled out.
func peekMetadata(dbDir string) (*store.IndexMetadata, error) {
	s, err := store.Open(dbDir, 0)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.Metadata()
}

// isAncestor reports whether root is cwd or a parent directory of cwd.
func isAncestor(root, cwd string) bool {
	rootClean := filepath.Clean(root)
	cwdClean := filepath.Clean(cwd)
	if rootClean == cwdClean {
		return true
	}
	rel, err := filepath.Rel(rootClean, cwdClean)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
