package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dennisonbertram/lgrep/internal/embed"
	"github.com/dennisonbertram/lgrep/internal/store"
)

func init() {
	store.InitVectorExtension()
}

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(t.TempDir(), 4)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func writeFile(t *testing.T, s *store.Store, abs, rel string, symbols []store.Symbol, deps []store.Dependency, calls []store.CallEdge) {
	t.Helper()
	require.NoError(t, s.ReplaceFile(store.FileWrite{
		File:         store.FileRecord{AbsPath: abs, RelPath: rel, Extension: ".go", ContentHash: "h-" + rel},
		Symbols:      symbols,
		Dependencies: deps,
		Calls:        calls,
	}))
}

func TestDeadCode(t *testing.T) {
	s := openTestStore(t)
	writeFile(t, s, "/repo/a.go", "a.go",
		[]store.Symbol{
			{ID: "a.go:f:function", Name: "f", Kind: store.SymbolFunction, FilePath: "/repo/a.go"},
			{ID: "a.go:g:function", Name: "g", Kind: store.SymbolFunction, FilePath: "/repo/a.go"},
		},
		nil,
		[]store.CallEdge{
			{ID: "c1", CallerID: "a.go:g:function", CallerFile: "/repo/a.go", CalleeName: "f", CalleeID: "a.go:f:function", Line: 3},
		},
	)

	e := New(s, nil)
	dead, err := e.Dead("")
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Equal(t, "g", dead[0].Name)
}

func TestCyclesDetectsSimpleCycleAndIgnoresUnrelated(t *testing.T) {
	s := openTestStore(t)
	files := []string{"/repo/a.go", "/repo/b.go", "/repo/c.go", "/repo/d.go", "/repo/e.go"}
	for _, f := range files {
		require.NoError(t, s.ReplaceFile(store.FileWrite{File: store.FileRecord{AbsPath: f, RelPath: f, Extension: ".go", ContentHash: f}}))
	}

	deps := []store.Dependency{
		{ID: "d1", SourceFile: "/repo/a.go", ResolvedPath: "/repo/b.go", Kind: store.DepImport, TargetModule: "./b"},
		{ID: "d2", SourceFile: "/repo/b.go", ResolvedPath: "/repo/c.go", Kind: store.DepImport, TargetModule: "./c"},
		{ID: "d3", SourceFile: "/repo/c.go", ResolvedPath: "/repo/a.go", Kind: store.DepImport, TargetModule: "./a"},
		{ID: "d4", SourceFile: "/repo/d.go", ResolvedPath: "/repo/e.go", Kind: store.DepImport, TargetModule: "./e"},
	}
	for _, d := range deps {
		require.NoError(t, s.ReplaceFile(store.FileWrite{
			File:         store.FileRecord{AbsPath: d.SourceFile, RelPath: d.SourceFile, Extension: ".go", ContentHash: d.SourceFile},
			Dependencies: []store.Dependency{d},
		}))
	}

	e := New(s, nil)
	cycles, err := e.Cycles(false)
	require.NoError(t, err)
	require.Len(t, cycles, 1)
	assert.ElementsMatch(t, []string{"/repo/a.go", "/repo/b.go", "/repo/c.go"}, cycles[0][:len(cycles[0])-1])
}

func TestCallersResolvesByIDAndFallsBackToName(t *testing.T) {
	s := openTestStore(t)
	writeFile(t, s, "/repo/a.go", "a.go",
		[]store.Symbol{{ID: "a.go:target:function", Name: "target", Kind: store.SymbolFunction, FilePath: "/repo/a.go"}},
		nil,
		[]store.CallEdge{
			{ID: "c1", CallerFile: "/repo/a.go", CalleeName: "target", CalleeID: "a.go:target:function", Line: 10},
		},
	)
	writeFile(t, s, "/repo/b.go", "b.go", nil, nil,
		[]store.CallEdge{
			{ID: "c2", CallerFile: "/repo/b.go", CalleeName: "target", Line: 20}, // unresolved, fuzzy match
		},
	)

	e := New(s, nil)
	callers, err := e.Callers("target")
	require.NoError(t, err)
	require.Len(t, callers, 2)
}

func TestImpactBFSTransitiveClosure(t *testing.T) {
	s := openTestStore(t)
	writeFile(t, s, "/repo/core.go", "core.go",
		[]store.Symbol{{ID: "core.go:Do:function", Name: "Do", Kind: store.SymbolFunction, FilePath: "/repo/core.go"}},
		nil, nil,
	)
	writeFile(t, s, "/repo/mid.go", "mid.go", nil,
		[]store.Dependency{{ID: "d1", SourceFile: "/repo/mid.go", ResolvedPath: "/repo/core.go", Kind: store.DepImport, TargetModule: "./core"}},
		[]store.CallEdge{{ID: "c1", CallerFile: "/repo/mid.go", CalleeName: "Do", CalleeID: "core.go:Do:function", Line: 5}},
	)
	writeFile(t, s, "/repo/top.go", "top.go", nil,
		[]store.Dependency{{ID: "d2", SourceFile: "/repo/top.go", ResolvedPath: "/repo/mid.go", Kind: store.DepImport, TargetModule: "./mid"}},
		nil,
	)

	e := New(s, nil)
	impact, err := e.Impact("Do")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/repo/mid.go"}, impact.DirectCallers)
	assert.ElementsMatch(t, []string{"/repo/top.go"}, impact.Transitive)
	assert.Equal(t, 2, impact.Total)
}

func TestUnusedExportsIgnoresBareReExport(t *testing.T) {
	s := openTestStore(t)
	writeFile(t, s, "/repo/lib.go", "lib.go",
		[]store.Symbol{
			{ID: "lib.go:Used:function", Name: "Used", Kind: store.SymbolFunction, FilePath: "/repo/lib.go", IsExported: true},
			{ID: "lib.go:Unused:function", Name: "Unused", Kind: store.SymbolFunction, FilePath: "/repo/lib.go", IsExported: true},
			{ID: "lib.go:OnlyReexported:function", Name: "OnlyReexported", Kind: store.SymbolFunction, FilePath: "/repo/lib.go", IsExported: true},
		},
		nil, nil,
	)
	writeFile(t, s, "/repo/consumer.go", "consumer.go", nil,
		[]store.Dependency{
			{ID: "d1", SourceFile: "/repo/consumer.go", ResolvedPath: "/repo/lib.go", Kind: store.DepImport, TargetModule: "./lib",
				Names: []store.DependencyName{{Name: "Used"}}},
			{ID: "d2", SourceFile: "/repo/consumer.go", ResolvedPath: "/repo/lib.go", Kind: store.DepReExport, TargetModule: "./lib",
				Names: []store.DependencyName{{Name: "OnlyReexported"}}},
		},
		nil,
	)

	e := New(s, nil)
	unused, err := e.UnusedExports()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, u := range unused {
		names[u.Name] = true
	}
	assert.True(t, names["Unused"])
	assert.True(t, names["OnlyReexported"])
	assert.False(t, names["Used"])
}

func TestSearchReturnsTopKBySimilarity(t *testing.T) {
	s := openTestStore(t)
	provider := embed.NewMockProvider(4)

	texts := map[string]string{
		"/repo/a.go:1": "func AwardBadge(user User) error { return nil }",
		"/repo/b.go:1": "func DeleteUser(id string) error { return nil }",
	}
	for id, content := range texts {
		vec, err := provider.EmbedQuery(context.Background(), content)
		require.NoError(t, err)
		require.NoError(t, s.ReplaceFile(store.FileWrite{
			File: store.FileRecord{AbsPath: id, RelPath: id, Extension: ".go", ContentHash: id},
			Chunks: []store.Chunk{
				{ID: id, FilePath: id, RelPath: id, Content: content, LineStart: 1, LineEnd: 1, Vector: vec, ContentHash: id},
			},
		}))
	}

	e := New(s, provider)
	results, err := e.Search(context.Background(), "func AwardBadge(user User) error { return nil }", 1, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "/repo/a.go:1", results[0].ChunkID)
}

func TestSimilarClustersByThreshold(t *testing.T) {
	s := openTestStore(t)
	vecA := []float32{1, 0, 0, 0}
	vecB := []float32{0.99, 0.01, 0, 0}
	vecC := []float32{0, 0, 1, 0}

	require.NoError(t, s.ReplaceFile(store.FileWrite{
		File: store.FileRecord{AbsPath: "/repo/a.go", RelPath: "a.go", Extension: ".go", ContentHash: "a"},
		Chunks: []store.Chunk{
			{ID: "a1", FilePath: "/repo/a.go", RelPath: "a.go", Content: "a", LineStart: 1, LineEnd: 1, Vector: vecA, ContentHash: "a1"},
		},
	}))
	require.NoError(t, s.ReplaceFile(store.FileWrite{
		File: store.FileRecord{AbsPath: "/repo/b.go", RelPath: "b.go", Extension: ".go", ContentHash: "b"},
		Chunks: []store.Chunk{
			{ID: "b1", FilePath: "/repo/b.go", RelPath: "b.go", Content: "b", LineStart: 1, LineEnd: 1, Vector: vecB, ContentHash: "b1"},
		},
	}))
	require.NoError(t, s.ReplaceFile(store.FileWrite{
		File: store.FileRecord{AbsPath: "/repo/c.go", RelPath: "c.go", Extension: ".go", ContentHash: "c"},
		Chunks: []store.Chunk{
			{ID: "c1", FilePath: "/repo/c.go", RelPath: "c.go", Content: "c", LineStart: 1, LineEnd: 1, Vector: vecC, ContentHash: "c1"},
		},
	}))

	e := New(s, nil)
	clusters, err := e.Similar(0)
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	assert.Len(t, clusters[0], 2)
}

func TestRenamePreviewNeverTouchesDisk(t *testing.T) {
	s := openTestStore(t)
	writeFile(t, s, "/repo/a.go", "a.go",
		[]store.Symbol{{ID: "a.go:old:function", Name: "old", Kind: store.SymbolFunction, FilePath: "/repo/a.go", RelPath: "a.go", LineStart: 1}},
		nil,
		[]store.CallEdge{{ID: "c1", CallerFile: "/repo/a.go", CalleeName: "old", CalleeID: "a.go:old:function", Line: 5, Column: 2}},
	)

	e := New(s, nil)
	edits, err := e.RenamePreview("old", "new", true)
	require.NoError(t, err)
	require.Len(t, edits, 2)
	for _, ed := range edits {
		assert.Equal(t, "old", ed.Before)
		assert.Equal(t, "new", ed.After)
	}
}
