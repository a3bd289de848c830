package embed

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"sync"
)

// MockProvider is a deterministic test implementation: the same text always
// embeds to the same vector, derived from a content hash, so round-trip and
// cache tests don't need a real model.
type MockProvider struct {
	mu          sync.Mutex
	dimensions  int
	closeCalled bool
	closeError  error
	embedError  error
}

// NewMockProvider creates a mock embedding provider with the given
// dimensionality.
func NewMockProvider(dimensions int) *MockProvider {
	return &MockProvider{dimensions: dimensions}
}

// SetCloseError configures the mock to return an error on Close().
func (p *MockProvider) SetCloseError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeError = err
}

// SetEmbedError configures the mock to return an error on Embed/EmbedQuery.
func (p *MockProvider) SetEmbedError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.embedError = err
}

func (p *MockProvider) vectorFor(text string) []float32 {
	hash := sha256.Sum256([]byte(text))
	vec := make([]float32, p.dimensions)
	for i := 0; i < p.dimensions; i++ {
		offset := (i * 4) % len(hash)
		val := binary.BigEndian.Uint32(hash[offset : offset+4])
		vec[i] = (float32(val)/float32(1<<32))*2.0 - 1.0
	}
	return vec
}

// Embed generates deterministic embeddings by hashing each input text.
func (p *MockProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	p.mu.Lock()
	err := p.embedError
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}

	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = p.vectorFor(t)
	}
	return out, nil
}

// EmbedQuery embeds a single query string the same way as a passage; the
// mock has no instruction-prefix distinction.
func (p *MockProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	p.mu.Lock()
	err := p.embedError
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return p.vectorFor(text), nil
}

// Dimensions returns the configured dimensionality.
func (p *MockProvider) Dimensions() int {
	return p.dimensions
}

// Health always reports healthy for the mock.
func (p *MockProvider) Health(ctx context.Context) HealthStatus {
	return HealthStatus{Healthy: true, Message: "mock provider"}
}

// Close records that Close was called and returns the configured error.
func (p *MockProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeCalled = true
	return p.closeError
}

// IsClosed reports whether Close() has been called.
func (p *MockProvider) IsClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeCalled
}
