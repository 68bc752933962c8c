package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/muninnhq/muninn/pkg/embeddings"
	"github.com/muninnhq/muninn/pkg/embeddings/openai"
)

var _ = Describe("Embedder", func() {
	var server *httptest.Server

	AfterEach(func() {
		if server != nil {
			server.Close()
		}
	})

	It("requires an api key", func() {
		_, err := openai.NewEmbedder(openai.Config{})
		Expect(err).To(HaveOccurred())
	})

	It("sends a bearer-authenticated request to /v1/embeddings", func() {
		var gotPath, gotAuth string

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			Expect(json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]any{{"embedding": []float32{0.4, 0.5}}},
			})).To(Succeed())
		}))

		embedder, err := openai.NewEmbedder(openai.Config{
			APIKey:  "sk-test",
			BaseURL: server.URL,
		})
		Expect(err).NotTo(HaveOccurred())

		vec, err := embedder.Embed(context.Background(), "hello")
		Expect(err).NotTo(HaveOccurred())
		Expect(vec).To(Equal([]float32{0.4, 0.5}))

		Expect(gotPath).To(Equal("/v1/embeddings"))
		Expect(gotAuth).To(Equal("Bearer sk-test"))
	})

	It("wraps non-200 responses in ErrEmbedding", func() {
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))

		embedder, err := openai.NewEmbedder(openai.Config{APIKey: "sk-test", BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())

		_, err = embedder.Embed(context.Background(), "hello")
		Expect(err).To(MatchError(embeddings.ErrEmbedding))
	})
})
