package cached

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/muninnhq/muninn/pkg/embeddings"
	testutils "github.com/muninnhq/muninn/pkg/utils/test"
)

var _ = Describe("Embedder", func() {
	var (
		inner    *testutils.MockEmbedder
		embedder *Embedder
		ctx      context.Context
	)

	BeforeEach(func() {
		inner = testutils.NewMockEmbedder()
		ctx = context.Background()

		var err error
		embedder, err = NewEmbedder(inner, Config{})
		Expect(err).NotTo(HaveOccurred())
	})

	It("returns the inner embedder's vector", func() {
		inner.Embeddings["hello"] = []float32{0.7, 0.8}

		vec, err := embedder.Embed(ctx, "hello")
		Expect(err).NotTo(HaveOccurred())
		Expect(vec).To(Equal([]float32{0.7, 0.8}))
	})

	It("serves repeated texts from cache", func() {
		_, err := embedder.Embed(ctx, "hello")
		Expect(err).NotTo(HaveOccurred())

		// Ristretto admits entries asynchronously; settle before the
		// second lookup.
		embedder.cache.Wait()

		_, err = embedder.Embed(ctx, "hello")
		Expect(err).NotTo(HaveOccurred())

		Expect(inner.Calls).To(Equal([]string{"hello"}))
	})

	It("does not cache provider failures", func() {
		inner.FailOn = "flaky"

		_, err := embedder.Embed(ctx, "flaky")
		Expect(err).To(MatchError(embeddings.ErrEmbedding))

		inner.FailOn = ""
		vec, err := embedder.Embed(ctx, "flaky")
		Expect(err).NotTo(HaveOccurred())
		Expect(vec).To(Equal([]float32{0.1, 0.2, 0.3}))
	})

	It("closes the inner embedder", func() {
		Expect(embedder.Close()).To(Succeed())
	})
})
