package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// retrievalQueryPrefix is prepended to every query text EmbedQuery sends,
// whatever the model; passages sent through Embed carry no prefix.
const retrievalQueryPrefix = "Represent this query for retrieving code: "

// httpProvider embeds text by calling an external embedding service over
// HTTP. It takes no responsibility for installing or supervising the
// backend process.
type httpProvider struct {
	endpoint string
	model    string
	client   *http.Client

	mu         sync.RWMutex
	dimensions int
}

func newHTTPProvider(endpoint, model string) *httpProvider {
	return &httpProvider{
		endpoint: endpoint,
		model:    model,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type embedRequest struct {
	Texts []string `json:"texts"`
	Mode  string   `json:"mode"`
	Model string   `json:"model,omitempty"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
	Dimensions int         `json:"dimensions"`
}

func (p *httpProvider) doEmbed(ctx context.Context, texts []string, mode Mode) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	body, err := json.Marshal(embedRequest{Texts: texts, Mode: string(mode), Model: p.model})
	if err != nil {
		return nil, fmt.Errorf("embed: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("embed: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embed: provider returned status %d: %s", resp.StatusCode, string(data))
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("embed: decode response: %w", err)
	}

	if out.Dimensions > 0 {
		p.mu.Lock()
		p.dimensions = out.Dimensions
		p.mu.Unlock()
	}

	return out.Embeddings, nil
}

// Embed converts a batch of passages into vectors.
func (p *httpProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return p.doEmbed(ctx, texts, ModePassage)
}

// EmbedQuery converts a single query string into a vector, applying the
// retrieval-query instruction prefix.
func (p *httpProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := p.doEmbed(ctx, []string{retrievalQueryPrefix + text}, ModeQuery)
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embed: provider returned no vector for query")
	}
	return vecs[0], nil
}

// Dimensions returns the last observed dimensionality, 0 until the first
// successful call.
func (p *httpProvider) Dimensions() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dimensions
}

// Health pings the provider's health endpoint.
func (p *httpProvider) Health(ctx context.Context) HealthStatus {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"/health", nil)
	if err != nil {
		return HealthStatus{Healthy: false, Message: err.Error()}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return HealthStatus{Healthy: false, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return HealthStatus{Healthy: false, Message: fmt.Sprintf("status %d", resp.StatusCode)}
	}
	return HealthStatus{Healthy: true}
}

// Close is a no-op for the HTTP provider; the remote process is not owned
// by this client.
func (p *httpProvider) Close() error {
	return nil
}
