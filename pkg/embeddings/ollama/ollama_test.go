package ollama_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/muninnhq/muninn/pkg/embeddings"
	"github.com/muninnhq/muninn/pkg/embeddings/ollama"
)

var _ = Describe("Embedder", func() {
	var (
		server *httptest.Server
		ctx    context.Context
	)

	AfterEach(func() {
		if server != nil {
			server.Close()
		}
	})

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("posts the model and input to /api/embed", func() {
		var gotPath string
		var gotBody map[string]any

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			Expect(json.NewDecoder(r.Body).Decode(&gotBody)).To(Succeed())
			Expect(json.NewEncoder(w).Encode(map[string]any{
				"embeddings": [][]float32{{0.1, 0.2, 0.3}},
			})).To(Succeed())
		}))

		embedder, err := ollama.NewEmbedder(ollama.Config{
			BaseURL: server.URL,
			Model:   "all-minilm",
		})
		Expect(err).NotTo(HaveOccurred())

		vec, err := embedder.Embed(ctx, "hello world")
		Expect(err).NotTo(HaveOccurred())
		Expect(vec).To(Equal([]float32{0.1, 0.2, 0.3}))

		Expect(gotPath).To(Equal("/api/embed"))
		Expect(gotBody["model"]).To(Equal("all-minilm"))
		Expect(gotBody["input"]).To(Equal("hello world"))
	})

	It("wraps non-200 responses in ErrEmbedding", func() {
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))

		embedder, err := ollama.NewEmbedder(ollama.Config{BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())

		_, err = embedder.Embed(ctx, "hello")
		Expect(err).To(MatchError(embeddings.ErrEmbedding))
	})

	It("rejects responses with no embeddings", func() {
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			Expect(json.NewEncoder(w).Encode(map[string]any{
				"embeddings": [][]float32{},
			})).To(Succeed())
		}))

		embedder, err := ollama.NewEmbedder(ollama.Config{BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())

		_, err = embedder.Embed(ctx, "hello")
		Expect(err).To(MatchError(embeddings.ErrEmbedding))
	})

	It("applies model and URL defaults", func() {
		embedder, err := ollama.NewEmbedder(ollama.Config{})
		Expect(err).NotTo(HaveOccurred())
		Expect(embedder).NotTo(BeNil())
	})
})
