package query

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dennisonbertram/lgrep/internal/embed"
	"github.com/dennisonbertram/lgrep/internal/store"
)

func TestAssembleContextSeedsFromSearchAndExpandsOverGraph(t *testing.T) {
	s := openTestStore(t)
	provider := embed.NewMockProvider(4)
	dir := t.TempDir()

	aPath := filepath.Join(dir, "a.go")
	bPath := filepath.Join(dir, "b.go")
	content := "func AwardBadge(user User) error { return nil }"
	require.NoError(t, os.WriteFile(aPath, []byte(content+"\n"), 0o644))
	require.NoError(t, os.WriteFile(bPath, []byte("func caller() { AwardBadge(u) }\n"), 0o644))

	vec, err := provider.EmbedQuery(context.Background(), content)
	require.NoError(t, err)

	require.NoError(t, s.ReplaceFile(store.FileWrite{
		File: store.FileRecord{AbsPath: aPath, RelPath: "a.go", Extension: ".go", ContentHash: "a"},
		Chunks: []store.Chunk{
			{ID: "a1", FilePath: aPath, RelPath: "a.go", Content: content, LineStart: 1, LineEnd: 1, Vector: vec, ContentHash: "a"},
		},
	}))
	require.NoError(t, s.ReplaceFile(store.FileWrite{
		File: store.FileRecord{AbsPath: bPath, RelPath: "b.go", Extension: ".go", ContentHash: "b"},
		Dependencies: []store.Dependency{
			{ID: "d1", SourceFile: bPath, TargetModule: "./a", ResolvedPath: aPath, Kind: store.DepImport, Line: 1},
		},
	}))

	e := New(s, provider)
	res, err := e.AssembleContext(context.Background(), content, ContextOptions{FileLimit: 5, MaxTokens: 4000, GraphDepth: 1})
	require.NoError(t, err)

	require.NotEmpty(t, res.Files)
	assert.Equal(t, "a.go", res.Files[0].RelPath)
	assert.Equal(t, "match", res.Files[0].Reason)
	assert.Equal(t, content, res.Files[0].Snippet)

	// b.go imports a.go, so depth-1 graph expansion pulls it in with the
	// head of the file as its snippet.
	require.Len(t, res.Files, 2)
	assert.Equal(t, "b.go", res.Files[1].RelPath)
	assert.Equal(t, "graph", res.Files[1].Reason)
	assert.Contains(t, res.Files[1].Snippet, "caller")

	sum := 0
	for _, f := range res.Files {
		sum += f.Tokens
	}
	assert.Equal(t, sum, res.TotalTokens)
}

func TestAssembleContextHonorsFileLimitAndTokenBudget(t *testing.T) {
	s := openTestStore(t)
	provider := embed.NewMockProvider(4)
	dir := t.TempDir()

	aPath := filepath.Join(dir, "a.go")
	bPath := filepath.Join(dir, "b.go")
	content := "func AwardBadge(user User) error { return nil }"
	require.NoError(t, os.WriteFile(aPath, []byte(content+"\n"), 0o644))
	require.NoError(t, os.WriteFile(bPath, []byte("func caller() { AwardBadge(u) }\n"), 0o644))

	vec, err := provider.EmbedQuery(context.Background(), content)
	require.NoError(t, err)

	require.NoError(t, s.ReplaceFile(store.FileWrite{
		File: store.FileRecord{AbsPath: aPath, RelPath: "a.go", Extension: ".go", ContentHash: "a"},
		Chunks: []store.Chunk{
			{ID: "a1", FilePath: aPath, RelPath: "a.go", Content: content, LineStart: 1, LineEnd: 1, Vector: vec, ContentHash: "a"},
		},
	}))
	require.NoError(t, s.ReplaceFile(store.FileWrite{
		File: store.FileRecord{AbsPath: bPath, RelPath: "b.go", Extension: ".go", ContentHash: "b"},
		Dependencies: []store.Dependency{
			{ID: "d1", SourceFile: bPath, TargetModule: "./a", ResolvedPath: aPath, Kind: store.DepImport, Line: 1},
		},
	}))

	e := New(s, provider)

	res, err := e.AssembleContext(context.Background(), content, ContextOptions{FileLimit: 1, MaxTokens: 4000, GraphDepth: 1})
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	assert.Equal(t, "a.go", res.Files[0].RelPath)

	// A budget smaller than the first snippet yields an empty context
	// rather than an over-budget one.
	res, err = e.AssembleContext(context.Background(), content, ContextOptions{FileLimit: 5, MaxTokens: 1, GraphDepth: 1})
	require.NoError(t, err)
	assert.Empty(t, res.Files)
	assert.Zero(t, res.TotalTokens)
}
