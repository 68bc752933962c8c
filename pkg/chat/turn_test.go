package chat_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/muninnhq/muninn/pkg/chat"
)

var _ = Describe("Turn", func() {
	It("stamps new turns with the current time", func() {
		turn := chat.NewTurn(chat.RoleUser, "hello", "h1")
		Expect(turn.Timestamp).To(BeNumerically(">", 0))
		Expect(turn.Role).To(Equal(chat.RoleUser))
		Expect(turn.Content).To(Equal("hello"))
		Expect(turn.Hash).To(Equal("h1"))
	})

	It("reports embedding presence", func() {
		turn := chat.NewTurn(chat.RoleUser, "hello", "h1")
		Expect(turn.HasEmbedding()).To(BeFalse())

		turn.Embedding = []float32{0.1}
		Expect(turn.HasEmbedding()).To(BeTrue())
	})

	It("omits absent embeddings from JSON", func() {
		data, err := json.Marshal(chat.NewTurn(chat.RoleUser, "hello", "h1"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).NotTo(ContainSubstring("embedding"))
	})

	Describe("Clone", func() {
		It("deep-copies the embedding", func() {
			turn := chat.NewTurn(chat.RoleUser, "hello", "h1")
			turn.Embedding = []float32{0.1, 0.2}

			clone := turn.Clone()
			clone.Embedding[0] = 9.9
			clone.Content = "mutated"

			Expect(turn.Embedding[0]).To(Equal(float32(0.1)))
			Expect(turn.Content).To(Equal("hello"))
		})

		It("handles nil receivers", func() {
			var turn *chat.Turn
			Expect(turn.Clone()).To(BeNil())
		})
	})
})

var _ = Describe("MessagesFromTurns", func() {
	It("keeps order and drops turn-only fields", func() {
		turns := []*chat.Turn{
			chat.NewTurn(chat.RoleUser, "question", "h1"),
			chat.NewTurn(chat.RoleAssistant, "answer", "h2"),
		}

		msgs := chat.MessagesFromTurns(turns)
		Expect(msgs).To(Equal([]chat.Message{
			{Role: chat.RoleUser, Content: "question"},
			{Role: chat.RoleAssistant, Content: "answer"},
		}))
	})
})
