package search_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/muninnhq/muninn/pkg/chat"
	"github.com/muninnhq/muninn/pkg/embeddings"
	"github.com/muninnhq/muninn/pkg/search"
	"github.com/muninnhq/muninn/pkg/store"
	"github.com/muninnhq/muninn/pkg/store/inmemory"
	testutils "github.com/muninnhq/muninn/pkg/utils/test"
)

var _ = Describe("Searcher", func() {
	var (
		driver   *inmemory.Driver
		embedder *testutils.MockEmbedder
		searcher *search.Searcher
		ctx      context.Context
	)

	saveTurn := func(hash, content string, embedding []float32) {
		turn := chat.NewTurn(chat.RoleUser, content, hash)
		turn.Embedding = embedding
		_, _, err := driver.Save(ctx, store.Today(), "alice", turn)
		Expect(err).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		driver = inmemory.NewDriver()
		embedder = testutils.NewMockEmbedder()
		searcher = search.NewSearcher(driver, embedder, nil)
		ctx = context.Background()
	})

	It("returns one result per turn in the history", func() {
		saveTurn("a", "first", []float32{1, 0, 0})
		saveTurn("b", "second", []float32{0, 1, 0})
		saveTurn("c", "third", nil)

		results, err := searcher.Search(ctx, "alice", []float32{1, 0, 0})
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(3))
	})

	It("scores an exact embedding match at 1.0", func() {
		saveTurn("a", "the one", []float32{0.2, 0.8, 0.1})
		saveTurn("b", "another", []float32{0.9, 0.1, 0.3})

		results, err := searcher.Search(ctx, "alice", []float32{0.2, 0.8, 0.1})
		Expect(err).NotTo(HaveOccurred())

		byHash := make(map[string]float32, len(results))
		for _, r := range results {
			byHash[r.Turn.Hash] = r.Score
		}
		Expect(byHash["a"]).To(BeNumerically("~", 1.0, 1e-6))
		Expect(byHash["b"]).To(BeNumerically("<", 1.0))
	})

	It("lazily embeds only turns stored without an embedding", func() {
		saveTurn("a", "has vector", []float32{0.5, 0.5, 0.5})
		saveTurn("b", "needs vector", nil)

		_, err := searcher.Search(ctx, "alice", []float32{0.1, 0.2, 0.3})
		Expect(err).NotTo(HaveOccurred())
		Expect(embedder.Calls).To(Equal([]string{"needs vector"}))
	})

	It("does not persist lazily computed embeddings", func() {
		saveTurn("b", "needs vector", nil)

		_, err := searcher.Search(ctx, "alice", []float32{0.1, 0.2, 0.3})
		Expect(err).NotTo(HaveOccurred())

		stored, err := driver.Get(ctx, "alice", "b")
		Expect(err).NotTo(HaveOccurred())
		Expect(stored.HasEmbedding()).To(BeFalse())
	})

	It("surfaces embedding provider failures", func() {
		saveTurn("b", "poison", nil)
		embedder.FailOn = "poison"

		_, err := searcher.Search(ctx, "alice", []float32{0.1, 0.2, 0.3})
		Expect(err).To(MatchError(embeddings.ErrEmbedding))
	})

	It("surfaces dimension mismatches as computation errors", func() {
		saveTurn("a", "short vector", []float32{1, 0})

		_, err := searcher.Search(ctx, "alice", []float32{0.1, 0.2, 0.3})
		Expect(err).To(MatchError(search.ErrComputation))
	})

	It("counts lazy embeds when a counter is attached", func() {
		counter := &countingCounter{}
		searcher.LazyEmbeds = counter

		saveTurn("a", "has vector", []float32{0.5, 0.5, 0.5})
		saveTurn("b", "needs vector", nil)

		_, err := searcher.Search(ctx, "alice", []float32{0.1, 0.2, 0.3})
		Expect(err).NotTo(HaveOccurred())
		Expect(counter.n).To(Equal(1))
	})

	Describe("SearchText", func() {
		It("embeds the query before scoring", func() {
			embedder.Embeddings["the query"] = []float32{1, 0, 0}
			saveTurn("a", "match", []float32{1, 0, 0})

			results, err := searcher.SearchText(ctx, "alice", "the query")
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
			Expect(results[0].Score).To(BeNumerically("~", 1.0, 1e-6))
		})

		It("surfaces query embedding failures", func() {
			embedder.FailOn = "bad query"

			_, err := searcher.SearchText(ctx, "alice", "bad query")
			Expect(err).To(MatchError(embeddings.ErrEmbedding))
		})
	})

	It("returns no results for an empty history", func() {
		results, err := searcher.Search(ctx, "nobody", []float32{1, 0, 0})
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(BeEmpty())
	})
})

type countingCounter struct{ n int }

func (c *countingCounter) Inc() { c.n++ }
