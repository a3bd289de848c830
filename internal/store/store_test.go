package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	InitVectorExtension()
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), 4)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenCreatesSchemaOnce(t *testing.T) {
	dir := t.TempDir()
	s1, err := Open(dir, 4)
	require.NoError(t, err)
	require.NoError(t, s1.PutMetadata(IndexMetadata{Name: "demo", RootPath: "/repo", Model: "m", ModelDimensions: 4, Status: StatusBuilding, CreatedAt: now(), UpdatedAt: now()}))
	require.NoError(t, s1.Close())

	s2, err := Open(dir, 4)
	require.NoError(t, err)
	defer s2.Close()

	meta, err := s2.Metadata()
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, "demo", meta.Name)
}

func TestMetadataRoundTrip(t *testing.T) {
	s := openTestStore(t)

	meta, err := s.Metadata()
	require.NoError(t, err)
	assert.Nil(t, meta)

	m := IndexMetadata{
		Name: "myindex", RootPath: "/repo", Model: "text-embed", ModelDimensions: 4,
		Status: StatusBuilding, CreatedAt: now(), UpdatedAt: now(),
	}
	require.NoError(t, s.PutMetadata(m))

	got, err := s.Metadata()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "myindex", got.Name)
	assert.Equal(t, StatusBuilding, got.Status)

	require.NoError(t, s.SetStatus(StatusReady))
	got, err = s.Metadata()
	require.NoError(t, err)
	assert.Equal(t, StatusReady, got.Status)
}

func TestCompleteRunStampsID(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.PutMetadata(IndexMetadata{Name: "i", RootPath: "/repo", Model: "m", ModelDimensions: 4, Status: StatusBuilding, CreatedAt: now(), UpdatedAt: now()}))

	runID, err := s.CompleteRun(StatusReady)
	require.NoError(t, err)
	assert.NotEmpty(t, runID)

	got, err := s.Metadata()
	require.NoError(t, err)
	assert.Equal(t, StatusReady, got.Status)
	assert.Equal(t, runID, got.LastRunID)

	runID2, err := s.CompleteRun(StatusReady)
	require.NoError(t, err)
	assert.NotEqual(t, runID, runID2, "each completed run gets a fresh id")
}

func TestReplaceFileInsertsAndQueries(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.PutMetadata(IndexMetadata{Name: "i", RootPath: "/repo", Model: "m", ModelDimensions: 4, Status: StatusBuilding, CreatedAt: now(), UpdatedAt: now()}))

	absPath := filepath.Join("/repo", "a.go")
	w := FileWrite{
		File: FileRecord{AbsPath: absPath, RelPath: "a.go", Extension: ".go", ContentHash: "h1", Size: 100, MTime: now(), AnalyzedAt: now()},
		Symbols: []Symbol{
			{ID: "a.go:Foo:function", Name: "Foo", Kind: SymbolFunction, FilePath: absPath, RelPath: "a.go", LineStart: 1, LineEnd: 3, IsExported: true, Modifiers: []string{"exported"}},
		},
		Dependencies: []Dependency{
			{ID: "a.go:1:import", SourceFile: absPath, TargetModule: "fmt", Kind: DepImport, Line: 1, IsExternal: true,
				Names: []DependencyName{{Name: "fmt"}}},
		},
		Calls: []CallEdge{
			{ID: "a.go:1:call", CallerID: "a.go:Foo:function", CallerFile: absPath, CalleeName: "Println", Line: 2, ArgumentCount: 1},
		},
		Chunks: []Chunk{
			{ID: "a.go:0", FilePath: absPath, RelPath: "a.go", Content: "func Foo() {}", LineStart: 1, LineEnd: 3, ContentHash: "h1", Vector: []float32{0.1, 0.2, 0.3, 0.4}},
		},
	}
	require.NoError(t, s.ReplaceFile(w))

	file, err := s.FileByAbsPath(absPath)
	require.NoError(t, err)
	require.NotNil(t, file)
	assert.Equal(t, "h1", file.ContentHash)

	syms, err := s.SymbolsByFile(absPath)
	require.NoError(t, err)
	require.Len(t, syms, 1)
	assert.Equal(t, "Foo", syms[0].Name)
	assert.Equal(t, []string{"exported"}, syms[0].Modifiers)

	deps, err := s.DependenciesBySourceFile(absPath)
	require.NoError(t, err)
	require.Len(t, deps, 1)
	require.Len(t, deps[0].Names, 1)
	assert.Equal(t, "fmt", deps[0].Names[0].Name)

	calls, err := s.CallsByCallerID("a.go:Foo:function")
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, "Println", calls[0].CalleeName)

	chunks, err := s.ChunksByFile(absPath)
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	matches, err := s.QueryVectors([]float32{0.1, 0.2, 0.3, 0.4}, 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "a.go:0", matches[0].ChunkID)

	count, err := s.RefreshChunkCount()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestReplaceFileClearsStaleRows(t *testing.T) {
	s := openTestStore(t)
	absPath := "/repo/b.go"

	first := FileWrite{
		File:    FileRecord{AbsPath: absPath, RelPath: "b.go", Extension: ".go", ContentHash: "h1", MTime: now(), AnalyzedAt: now()},
		Symbols: []Symbol{{ID: "b.go:Old:function", Name: "Old", Kind: SymbolFunction, FilePath: absPath, RelPath: "b.go"}},
		Chunks:  []Chunk{{ID: "b.go:0", FilePath: absPath, RelPath: "b.go", Content: "old", ContentHash: "h1", Vector: []float32{1, 0, 0, 0}}},
	}
	require.NoError(t, s.ReplaceFile(first))

	second := FileWrite{
		File:    FileRecord{AbsPath: absPath, RelPath: "b.go", Extension: ".go", ContentHash: "h2", MTime: now(), AnalyzedAt: now()},
		Symbols: []Symbol{{ID: "b.go:New:function", Name: "New", Kind: SymbolFunction, FilePath: absPath, RelPath: "b.go"}},
		Chunks:  []Chunk{{ID: "b.go:1", FilePath: absPath, RelPath: "b.go", Content: "new", ContentHash: "h2", Vector: []float32{0, 1, 0, 0}}},
	}
	require.NoError(t, s.ReplaceFile(second))

	syms, err := s.SymbolsByFile(absPath)
	require.NoError(t, err)
	require.Len(t, syms, 1)
	assert.Equal(t, "New", syms[0].Name)

	chunks, err := s.ChunksByFile(absPath)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "b.go:1", chunks[0].ID)

	matches, err := s.QueryVectors([]float32{0, 1, 0, 0}, 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "b.go:1", matches[0].ChunkID)
}

func TestDeleteFileRemovesVectorsAndRows(t *testing.T) {
	s := openTestStore(t)
	absPath := "/repo/c.go"
	w := FileWrite{
		File:   FileRecord{AbsPath: absPath, RelPath: "c.go", Extension: ".go", ContentHash: "h1", MTime: now(), AnalyzedAt: now()},
		Chunks: []Chunk{{ID: "c.go:0", FilePath: absPath, RelPath: "c.go", Content: "x", ContentHash: "h1", Vector: []float32{1, 1, 1, 1}}},
	}
	require.NoError(t, s.ReplaceFile(w))
	require.NoError(t, s.DeleteFile(absPath))

	file, err := s.FileByAbsPath(absPath)
	require.NoError(t, err)
	assert.Nil(t, file)

	chunks, err := s.ChunksByFile(absPath)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	matches, err := s.QueryVectors([]float32{1, 1, 1, 1}, 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestDependenciesOnFileFindsReverseDeps(t *testing.T) {
	s := openTestStore(t)
	target := "/repo/util.go"
	caller := "/repo/main.go"

	require.NoError(t, s.ReplaceFile(FileWrite{
		File: FileRecord{AbsPath: target, RelPath: "util.go", Extension: ".go", ContentHash: "h1", MTime: now(), AnalyzedAt: now()},
	}))
	require.NoError(t, s.ReplaceFile(FileWrite{
		File: FileRecord{AbsPath: caller, RelPath: "main.go", Extension: ".go", ContentHash: "h2", MTime: now(), AnalyzedAt: now()},
		Dependencies: []Dependency{
			{ID: "main.go:1:import", SourceFile: caller, TargetModule: "./util", ResolvedPath: target, Kind: DepImport, Line: 1, IsExternal: false},
		},
	}))

	rdeps, err := s.DependenciesOnFile(target)
	require.NoError(t, err)
	require.Len(t, rdeps, 1)
	assert.Equal(t, caller, rdeps[0].SourceFile)
}
