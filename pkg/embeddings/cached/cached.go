// Package cached decorates an embeddings.Embedder with a read-through
// in-process cache. Embeddings are deterministic for a fixed model, so
// repeated embedding of the same text (common during lazy search backfill)
// can skip the provider round trip.
package cached

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto"

	"github.com/muninnhq/muninn/pkg/embeddings"
)

const (
	defaultMaxCostBytes = 64 << 20 // 64 MiB of cached vectors
	defaultNumCounters  = 100_000
)

// Config holds configuration for the caching decorator.
type Config struct {
	// MaxCostBytes bounds the total memory spent on cached vectors.
	// Defaults to 64 MiB if zero.
	MaxCostBytes int64
}

// Embedder wraps an inner embedder with a ristretto cache keyed by text.
type Embedder struct {
	inner embeddings.Embedder
	cache *ristretto.Cache
}

// NewEmbedder wraps inner with a read-through cache.
func NewEmbedder(inner embeddings.Embedder, cfg Config) (*Embedder, error) {
	maxCost := cfg.MaxCostBytes
	if maxCost <= 0 {
		maxCost = defaultMaxCostBytes
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: defaultNumCounters,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedding cache: %w", err)
	}

	return &Embedder{
		inner: inner,
		cache: cache,
	}, nil
}

// Embed returns the cached vector for text, or asks the inner embedder and
// caches the result. Provider errors are never cached.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if hit, ok := e.cache.Get(text); ok {
		if vec, ok := hit.([]float32); ok {
			return vec, nil
		}
	}

	vec, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	e.cache.Set(text, vec, int64(len(vec)*4))
	return vec, nil
}

// Close closes the cache and the inner embedder.
func (e *Embedder) Close() error {
	e.cache.Close()
	return e.inner.Close()
}

// Ensure Embedder implements embeddings.Embedder.
var _ embeddings.Embedder = (*Embedder)(nil)
