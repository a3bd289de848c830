package layout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoot_HonoursEnvOverride(t *testing.T) {
	t.Setenv(EnvHome, "/tmp/custom-lgrep-home")

	root, err := Root()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom-lgrep-home", root)
}

func TestLayout_PathsNestUnderRoot(t *testing.T) {
	l := &Layout{Root: "/data/lgrep"}

	assert.Equal(t, "/data/lgrep/config.json", l.ConfigPath())
	assert.Equal(t, "/data/lgrep/cache", l.CacheDir())
	assert.Equal(t, "/data/lgrep/db/myindex", l.IndexDBDir("myindex"))
	assert.Equal(t, "/data/lgrep/pids/myindex.pid", l.PIDPath("myindex"))
	assert.Equal(t, "/data/lgrep/logs/myindex.log", l.LogPath("myindex"))
	assert.Equal(t, "/data/lgrep/sockets/myindex.sock", l.SocketPath("myindex"))
}

func TestLayout_EnsureDirsCreatesExpectedTree(t *testing.T) {
	root := t.TempDir()
	l := &Layout{Root: root}

	require.NoError(t, l.EnsureDirs())

	for _, dir := range []string{"db", "cache", "pids", "logs", "sockets"} {
		info, err := os.Stat(filepath.Join(root, dir))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestLayout_IndexesListsDbSubdirs(t *testing.T) {
	root := t.TempDir()
	l := &Layout{Root: root}
	require.NoError(t, os.MkdirAll(filepath.Join(root, "db", "alpha"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "db", "beta"), 0o755))

	names, err := l.Indexes()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alpha", "beta"}, names)
}

func TestLayout_IndexesEmptyWhenNoDbDir(t *testing.T) {
	l := &Layout{Root: t.TempDir()}
	names, err := l.Indexes()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestFindLocalOverride_FindsFileInCurrentDir(t *testing.T) {
	dir := t.TempDir()
	writeOverride(t, dir, `{"index": "myindex"}`)

	override, err := FindLocalOverride(dir)
	require.NoError(t, err)
	require.NotNil(t, override)
	assert.Equal(t, "myindex", override.Index)
	assert.Empty(t, override.Root)
}

func TestFindLocalOverride_WalksUpward(t *testing.T) {
	parent := t.TempDir()
	writeOverride(t, parent, `{"index": "parent-index"}`)

	child := filepath.Join(parent, "a", "b", "c")
	require.NoError(t, os.MkdirAll(child, 0o755))

	override, err := FindLocalOverride(child)
	require.NoError(t, err)
	require.NotNil(t, override)
	assert.Equal(t, "parent-index", override.Index)
}

func TestFindLocalOverride_ResolvesRelativeRoot(t *testing.T) {
	dir := t.TempDir()
	writeOverride(t, dir, `{"root": "../data"}`)

	override, err := FindLocalOverride(dir)
	require.NoError(t, err)
	require.NotNil(t, override)
	assert.Equal(t, filepath.Join(dir, "../data"), override.Root)
}

func TestFindLocalOverride_ReturnsNilWhenAbsent(t *testing.T) {
	dir := t.TempDir()

	override, err := FindLocalOverride(dir)
	require.NoError(t, err)
	assert.Nil(t, override)
}

func writeOverride(t *testing.T, dir, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, LocalOverrideFile), []byte(contents), 0o644))
}
