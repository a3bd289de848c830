package discover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
}

func relPaths(files []File) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.RelPath
	}
	return out
}

func TestWalkSkipsBuiltinExcludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.go"), 10)
	writeFile(t, filepath.Join(root, "node_modules", "pkg", "index.js"), 10)
	writeFile(t, filepath.Join(root, ".git", "HEAD"), 10)
	writeFile(t, filepath.Join(root, "dist", "out.js"), 10)

	d, err := New(Config{Root: root})
	require.NoError(t, err)
	files, err := d.Walk()
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"main.go"}, relPaths(files))
}

func TestWalkSkipsDotfilesUnlessOptedIn(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".env"), 10)
	writeFile(t, filepath.Join(root, "main.go"), 10)

	d, err := New(Config{Root: root})
	require.NoError(t, err)
	files, err := d.Walk()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"main.go"}, relPaths(files))

	d2, err := New(Config{Root: root, IncludeDotfiles: true})
	require.NoError(t, err)
	files2, err := d2.Walk()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"main.go", ".env"}, relPaths(files2))
}

func TestWalkAppliesUserExcludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.go"), 10)
	writeFile(t, filepath.Join(root, "main_test.go"), 10)

	d, err := New(Config{Root: root, Excludes: []string{"*_test.go"}})
	require.NoError(t, err)
	files, err := d.Walk()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"main.go"}, relPaths(files))
}

func TestWalkAppliesMaxFileSize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "small.go"), 10)
	writeFile(t, filepath.Join(root, "big.go"), 1000)

	d, err := New(Config{Root: root, MaxFileSize: 100})
	require.NoError(t, err)
	files, err := d.Walk()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"small.go"}, relPaths(files))
}
