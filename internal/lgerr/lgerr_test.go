package lgerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_MessageIncludesKindAndComponent(t *testing.T) {
	err := New(NotFound, "store", "index \"foo\" does not exist")
	assert.Contains(t, err.Error(), "store")
	assert.Contains(t, err.Error(), string(NotFound))
	assert.Contains(t, err.Error(), "foo")
}

func TestWrap_UnwrapsToCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(StoreError, "store", "write failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "disk full")
}

func TestKindOf_FindsWrappedError(t *testing.T) {
	cause := New(ProviderError, "embed", "timed out")
	wrapped := fmt.Errorf("batch 2 failed: %w", cause)

	kind, ok := KindOf(wrapped)
	require.True(t, ok)
	assert.Equal(t, ProviderError, kind)
}

func TestKindOf_FalseForPlainError(t *testing.T) {
	_, ok := KindOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestIs_MatchesKind(t *testing.T) {
	err := New(Timeout, "server", "rpc exceeded 30s")
	assert.True(t, Is(err, Timeout))
	assert.False(t, Is(err, Cancelled))
}
