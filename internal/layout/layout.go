// Package layout resolves the on-disk data root and the per-index paths
// beneath it.
package layout

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// EnvHome is the environment variable that, if set, overrides the
// OS-conventional app-data directory entirely.
const EnvHome = "LGREP_HOME"

// Root resolves the data root directory: EnvHome if set, otherwise an
// OS-conventional per-user app-data directory (honouring XDG_DATA_HOME on
// Linux).
func Root() (string, error) {
	if v := os.Getenv(EnvHome); v != "" {
		return v, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("layout: resolve user home: %w", err)
	}

	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, "lgrep"), nil
		}
		return filepath.Join(home, ".local", "share", "lgrep"), nil
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "lgrep"), nil
	default:
		return filepath.Join(home, ".lgrep"), nil
	}
}

// Layout is the resolved set of paths under a data root.
type Layout struct {
	Root string
}

// New resolves the data root and returns its Layout.
func New() (*Layout, error) {
	root, err := Root()
	if err != nil {
		return nil, err
	}
	return &Layout{Root: root}, nil
}

// ConfigPath is the global user configuration file.
func (l *Layout) ConfigPath() string {
	return filepath.Join(l.Root, "config.json")
}

// CacheDir is the embedding cache directory.
func (l *Layout) CacheDir() string {
	return filepath.Join(l.Root, "cache")
}

// IndexDBDir is the directory holding the vector+graph store for index.
func (l *Layout) IndexDBDir(index string) string {
	return filepath.Join(l.Root, "db", index)
}

// PIDPath is the daemon pid file for index, JSON-encoded
// {pid, root_path, started_at}.
func (l *Layout) PIDPath(index string) string {
	return filepath.Join(l.Root, "pids", index+".pid")
}

// LogPath is the daemon's append-only log file for index.
func (l *Layout) LogPath(index string) string {
	return filepath.Join(l.Root, "logs", index+".log")
}

// SocketPath is the query-server UNIX-domain socket for index.
func (l *Layout) SocketPath(index string) string {
	return filepath.Join(l.Root, "sockets", index+".sock")
}

// Indexes lists every index name with a db directory under this layout's
// root, used by auto-detection to find candidate indexes
// without the caller needing to know their names up front.
func (l *Layout) Indexes() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(l.Root, "db"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("layout: list indexes: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

// EnsureDirs creates every directory this layout depends on (db, cache,
// pids, logs, sockets), leaving the per-index db directory to the store.
func (l *Layout) EnsureDirs() error {
	dirs := []string{
		filepath.Join(l.Root, "db"),
		l.CacheDir(),
		filepath.Join(l.Root, "pids"),
		filepath.Join(l.Root, "logs"),
		filepath.Join(l.Root, "sockets"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("layout: create %s: %w", d, err)
		}
	}
	return nil
}
