// Package search ranks a user's full conversation history by semantic
// relevance to a query vector using cosine similarity. Turns that were
// stored without an embedding are embedded on the fly (lazy backfill), so
// search latency grows with the number of never-embedded turns.
package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/muninnhq/muninn/pkg/chat"
	"github.com/muninnhq/muninn/pkg/embeddings"
	"github.com/muninnhq/muninn/pkg/logger"
	"github.com/muninnhq/muninn/pkg/store"
)

// Result pairs a turn with its similarity to the query. Results are
// returned unsorted; callers sort when order matters.
type Result struct {
	Score float32    `json:"score"`
	Turn  *chat.Turn `json:"turn"`
}

// Counter is the sliver of a metrics counter the searcher needs. A nil
// counter disables instrumentation.
type Counter interface {
	Inc()
}

// Searcher ranks history from a message store, filling in missing
// embeddings via the configured embedder.
type Searcher struct {
	store    store.Store
	embedder embeddings.Embedder
	logger   *slog.Logger

	// LazyEmbeds, when set, counts embeddings computed at search time.
	LazyEmbeds Counter
}

// NewSearcher creates a searcher over the given store and embedder.
func NewSearcher(s store.Store, e embeddings.Embedder, log *slog.Logger) *Searcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Searcher{
		store:    s,
		embedder: e,
		logger:   log,
	}
}

// Search scores every turn in the user's history against the query vector
// and returns one Result per turn.
//
// Turns without a stored embedding are embedded synchronously first.
// Embeddings computed here are NOT written back to the store: backfill
// during search is a read-time convenience, not a durability guarantee.
// Provider and computation failures surface as errors; nothing is skipped
// silently.
func (s *Searcher) Search(ctx context.Context, user string, query []float32) ([]Result, error) {
	turns, err := s.store.AllForUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	results := make([]Result, 0, len(turns))
	for _, turn := range turns {
		embedding := turn.Embedding
		if !turn.HasEmbedding() {
			s.logger.Debug("lazy embedding backfill",
				"user", user,
				"hash", turn.Hash,
			)
			embedding, err = s.embedder.Embed(ctx, turn.Content)
			if err != nil {
				return nil, fmt.Errorf("embedding turn %s: %w", turn.Hash, err)
			}
			if s.LazyEmbeds != nil {
				s.LazyEmbeds.Inc()
			}
		}

		score, err := Cosine(embedding, query)
		if err != nil {
			return nil, fmt.Errorf("scoring turn %s: %w", turn.Hash, err)
		}

		results = append(results, Result{Score: score, Turn: turn})
	}

	return results, nil
}

// SearchText embeds the query text and delegates to Search. This is the
// convenience path the HTTP layer uses.
func (s *Searcher) SearchText(ctx context.Context, user, query string) ([]Result, error) {
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	return s.Search(ctx, user, vector)
}
