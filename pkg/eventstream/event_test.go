package eventstream_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/muninnhq/muninn/pkg/chat"
	"github.com/muninnhq/muninn/pkg/eventstream"
	"github.com/muninnhq/muninn/pkg/store"
)

var _ = Describe("NewTurnSavedEvent", func() {
	It("builds a v1 event with turn metadata", func() {
		turn := chat.NewTurn(chat.RoleAssistant, "hello there", "h1")
		turn.Embedding = []float32{0.1, 0.2}
		day := store.Today()

		event := eventstream.NewTurnSavedEvent("alice", day, turn, store.SaveDurable)

		Expect(event.SchemaVersion).To(Equal(eventstream.SchemaVersionV1))
		Expect(event.EventType).To(Equal(eventstream.EventTypeTurnSaved))
		Expect(event.EventID).NotTo(BeEmpty())
		Expect(event.EmittedAt.IsZero()).To(BeFalse())
		Expect(event.User).To(Equal("alice"))
		Expect(event.Day).To(Equal(day.String()))

		Expect(event.Turn.Role).To(Equal(chat.RoleAssistant))
		Expect(event.Turn.Hash).To(Equal("h1"))
		Expect(event.Turn.ContentLen).To(Equal(len("hello there")))
		Expect(event.Turn.HasVector).To(BeTrue())
		Expect(event.Turn.SaveStatus).To(Equal(store.SaveDurable.String()))
	})

	It("assigns a unique id per event", func() {
		turn := chat.NewTurn(chat.RoleUser, "x", "h1")
		a := eventstream.NewTurnSavedEvent("alice", store.Today(), turn, store.SaveDurable)
		b := eventstream.NewTurnSavedEvent("alice", store.Today(), turn, store.SaveDurable)
		Expect(a.EventID).NotTo(Equal(b.EventID))
	})
})
