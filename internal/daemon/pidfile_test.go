package daemon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadRemovePID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idx.pid")

	info, err := ReadPID(path)
	require.NoError(t, err)
	assert.Nil(t, info)

	require.NoError(t, WritePID(path, PIDInfo{PID: 1234, RootPath: "/repo", StartedAt: "2026-01-01T00:00:00Z"}))

	got, err := ReadPID(path)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1234, got.PID)
	assert.Equal(t, "/repo", got.RootPath)

	require.NoError(t, RemovePID(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// removing again is not an error
	require.NoError(t, RemovePID(path))
}

func TestIsAliveCurrentProcess(t *testing.T) {
	assert.True(t, IsAlive(os.Getpid()))
}

func TestIsAliveImplausiblePID(t *testing.T) {
	assert.False(t, IsAlive(-1))
	assert.False(t, IsAlive(0))
}
