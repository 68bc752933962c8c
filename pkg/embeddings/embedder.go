// Package embeddings defines the embedding provider capability.
package embeddings

import "context"

// Embedder provides text embedding capabilities. Implementations must be
// safe for concurrent use; no ordering is guaranteed between calls.
type Embedder interface {
	// Embed converts text into a vector embedding.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Close releases any resources held by the embedder.
	Close() error
}
