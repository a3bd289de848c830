package embed

import "fmt"

// Config contains configuration for creating an embedding provider.
type Config struct {
	// Provider selects the backend: "http" or "mock".
	Provider string

	// Endpoint is the URL of an external embedding service (http provider).
	Endpoint string

	// Model is the model name reported alongside cache keys and metadata.
	Model string

	// Dimensions is the vector width the provider is expected to produce.
	// Used by the mock provider; the http provider trusts the remote's
	// response instead.
	Dimensions int
}

// NewProvider creates an embedding provider from configuration. The core
// never constructs a model runtime itself: the embedding model is always
// an external collaborator reached over this abstract interface.
func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "http", "":
		endpoint := cfg.Endpoint
		if endpoint == "" {
			endpoint = "http://127.0.0.1:8821"
		}
		return newHTTPProvider(endpoint, cfg.Model), nil

	case "mock":
		dims := cfg.Dimensions
		if dims == 0 {
			dims = 384
		}
		return NewMockProvider(dims), nil

	default:
		return nil, fmt.Errorf("embed: unsupported provider %q (supported: http, mock)", cfg.Provider)
	}
}
