// Package embeddingutils is the embeddings utility package.
package embeddingutils

import (
	"fmt"

	"github.com/muninnhq/muninn/pkg/embeddings"
	"github.com/muninnhq/muninn/pkg/embeddings/cached"
	"github.com/muninnhq/muninn/pkg/embeddings/ollama"
	"github.com/muninnhq/muninn/pkg/embeddings/openai"
)

// NewEmbedderOpts selects and configures an embedding provider.
type NewEmbedderOpts struct {
	ProviderType string
	TargetURL    string
	Model        string
	APIKey       string

	// Cache wraps the provider in a read-through embedding cache.
	Cache bool
}

// NewEmbedder builds the configured embeddings.Embedder.
func NewEmbedder(o *NewEmbedderOpts) (embeddings.Embedder, error) {
	var (
		embedder embeddings.Embedder
		err      error
	)

	switch o.ProviderType {
	case "ollama":
		embedder, err = ollama.NewEmbedder(ollama.Config{
			BaseURL: o.TargetURL,
			Model:   o.Model,
		})
	case "openai":
		embedder, err = openai.NewEmbedder(openai.Config{
			APIKey:  o.APIKey,
			BaseURL: o.TargetURL,
			Model:   o.Model,
		})
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", o.ProviderType)
	}
	if err != nil {
		return nil, err
	}

	if o.Cache {
		return cached.NewEmbedder(embedder, cached.Config{})
	}

	return embedder, nil
}
