// Package embed defines the abstract embedding provider capability set and
// the content-addressed cache that sits in front of it.
package embed

import "context"

// Mode specifies whether text is being embedded as a search query or as a
// passage to be indexed. Some models use different instruction prefixes for
// the two cases.
type Mode string

const (
	// ModeQuery embeds a query string (e.g. a search phrase).
	ModeQuery Mode = "query"

	// ModePassage embeds a passage of text to be indexed (e.g. a chunk).
	ModePassage Mode = "passage"
)

// HealthStatus describes the liveness of an embedding provider.
type HealthStatus struct {
	Healthy bool
	Message string
}

// Provider is the abstract capability set a concrete embedding backend must
// implement: embed(texts), embed_query(text), dimensions(), health(). The
// core never depends on a specific model or runtime, only on this
// interface, selected at construction time.
type Provider interface {
	// Embed converts a batch of passages into their vector representations.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery converts a single query string into a vector, using the
	// model's retrieval-query instruction prefix when the provider knows one.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the dimensionality of vectors this provider produces.
	Dimensions() int

	// Health reports whether the provider is currently reachable.
	Health(ctx context.Context) HealthStatus

	// Close releases resources held by the provider.
	Close() error
}
