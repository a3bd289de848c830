package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesSpecDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 1200, cfg.ChunkSize)
	assert.Equal(t, 200, cfg.ChunkOverlap)
	assert.Equal(t, 1_048_576, cfg.MaxFileSize)
	assert.Equal(t, 15, cfg.ContextFileLimit)
	assert.Equal(t, 32000, cfg.ContextMaxTokens)
	assert.Equal(t, 2, cfg.ContextGraphDepth)
	require.NoError(t, Validate(cfg))
}

func TestLoadUsesDefaultsWhenNoFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, Default().ChunkSize, cfg.ChunkSize)
}

func TestLoadMergesConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := `{
		"model": "text-embedding-3-small",
		"chunkSize": 800,
		"chunkOverlap": 100,
		"excludes": ["vendor/**", "*.gen.go"]
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0o644))

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, "text-embedding-3-small", cfg.Model)
	assert.Equal(t, 800, cfg.ChunkSize)
	assert.Equal(t, 100, cfg.ChunkOverlap)
	assert.Equal(t, []string{"vendor/**", "*.gen.go"}, cfg.Excludes)
	// untouched keys keep their defaults
	assert.Equal(t, Default().MaxFileSize, cfg.MaxFileSize)
}

func TestValidateRejectsOverlapNotSmallerThanChunkSize(t *testing.T) {
	cfg := Default()
	cfg.ChunkOverlap = cfg.ChunkSize
	err := Validate(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidOverlap)
}

func TestValidateRejectsNonPositiveSizes(t *testing.T) {
	cfg := Default()
	cfg.ChunkSize = 0
	cfg.MaxFileSize = -1
	err := Validate(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidChunkSize)
	assert.ErrorIs(t, err, ErrInvalidMaxFileSize)
}
