package compactor_test

import (
	"context"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/muninnhq/muninn/pkg/chat"
	"github.com/muninnhq/muninn/pkg/compactor"
	"github.com/muninnhq/muninn/pkg/completion"
	"github.com/muninnhq/muninn/pkg/store"
	"github.com/muninnhq/muninn/pkg/store/inmemory"
	testutils "github.com/muninnhq/muninn/pkg/utils/test"
)

var _ = Describe("Compactor", func() {
	var (
		driver    *inmemory.Driver
		completer *testutils.MockCompleter
		cmp       *compactor.Compactor
		ctx       context.Context
	)

	saveTurns := func(n int) {
		for i := 0; i < n; i++ {
			turn := chat.NewTurn(chat.RoleUser, fmt.Sprintf("message %02d", i), fmt.Sprintf("h%02d", i))
			_, _, err := driver.Save(ctx, store.Today(), "alice", turn)
			Expect(err).NotTo(HaveOccurred())
		}
	}

	BeforeEach(func() {
		driver = inmemory.NewDriver()
		completer = testutils.NewMockCompleter()
		cmp = compactor.NewCompactor(driver, completer, nil)
		ctx = context.Background()
	})

	Context("with a short history", func() {
		It("returns turns verbatim in original order", func() {
			saveTurns(15)

			turns, err := cmp.Context(ctx, "alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).To(HaveLen(15))
			for i, turn := range turns {
				Expect(turn.Hash).To(Equal(fmt.Sprintf("h%02d", i)))
			}
		})

		It("never calls the completer", func() {
			saveTurns(10)

			_, err := cmp.Context(ctx, "alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(completer.Calls).To(BeEmpty())
		})

		It("returns an empty context for an unknown user", func() {
			turns, err := cmp.Context(ctx, "nobody")
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).To(BeEmpty())
		})
	})

	It("filters out empty-content turns before counting", func() {
		saveTurns(14)
		empty := chat.NewTurn(chat.RoleUser, "", "empty1")
		_, _, err := driver.Save(ctx, store.Today(), "alice", empty)
		Expect(err).NotTo(HaveOccurred())
		// 14 non-empty + 1 empty stays under the threshold once filtered.
		turns, err := cmp.Context(ctx, "alice")
		Expect(err).NotTo(HaveOccurred())
		Expect(turns).To(HaveLen(14))
		Expect(completer.Calls).To(BeEmpty())
	})

	Context("with a long history", func() {
		BeforeEach(func() {
			saveTurns(35)
			completer.Reply = "dense summary of older turns"
		})

		It("ends with the most recent turns verbatim", func() {
			turns, err := cmp.Context(ctx, "alice")
			Expect(err).NotTo(HaveOccurred())

			tail := turns[len(turns)-15:]
			for i, turn := range tail {
				Expect(turn.Hash).To(Equal(fmt.Sprintf("h%02d", 20+i)))
			}
		})

		It("returns the full head, then the summary, then the tail", func() {
			turns, err := cmp.Context(ctx, "alice")
			Expect(err).NotTo(HaveOccurred())
			// 20 head turns + 1 summary + 15 tail turns.
			Expect(turns).To(HaveLen(36))

			for i := 0; i < 20; i++ {
				Expect(turns[i].Hash).To(Equal(fmt.Sprintf("h%02d", i)))
			}

			summary := turns[20]
			Expect(summary.Role).To(Equal(chat.RoleSystem))
			Expect(summary.Content).To(Equal("dense summary of older turns"))
			Expect(summary.HasEmbedding()).To(BeFalse())
		})

		It("introduces exactly one new system turn", func() {
			turns, err := cmp.Context(ctx, "alice")
			Expect(err).NotTo(HaveOccurred())

			var systemTurns []*chat.Turn
			for _, turn := range turns {
				if turn.Role == chat.RoleSystem {
					systemTurns = append(systemTurns, turn)
				}
			}
			Expect(systemTurns).To(HaveLen(1))
		})

		It("persists the summary so it is discoverable afterwards", func() {
			turns, err := cmp.Context(ctx, "alice")
			Expect(err).NotTo(HaveOccurred())
			summary := turns[20]

			history, err := driver.AllForUser(ctx, "alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(history).To(HaveLen(36))

			stored, err := driver.Get(ctx, "alice", summary.Hash)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Content).To(Equal("dense summary of older turns"))
		})

		It("summarizes only the trailing window of the head", func() {
			_, err := cmp.Context(ctx, "alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(completer.Calls).To(HaveLen(1))

			messages := completer.Calls[0]
			// One system instruction plus the last 14 turns of the head.
			Expect(messages).To(HaveLen(15))
			Expect(messages[0].Role).To(Equal(chat.RoleSystem))
			for i := 0; i < 14; i++ {
				Expect(messages[i+1].Content).To(Equal(fmt.Sprintf("message %02d", 6+i)))
			}
		})

		It("surfaces completer failures", func() {
			completer.Fail = true

			_, err := cmp.Context(ctx, "alice")
			Expect(err).To(MatchError(completion.ErrCompletion))
		})

		It("counts compactions when a counter is attached", func() {
			counter := &countingCounter{}
			cmp.Compactions = counter

			_, err := cmp.Context(ctx, "alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(counter.n).To(Equal(1))
		})
	})

	Context("with a barely-long history", func() {
		It("summarizes the whole head when it is shorter than the window", func() {
			saveTurns(18)

			turns, err := cmp.Context(ctx, "alice")
			Expect(err).NotTo(HaveOccurred())
			// 3 head turns + 1 summary + 15 tail turns.
			Expect(turns).To(HaveLen(19))

			Expect(completer.Calls).To(HaveLen(1))
			// System instruction plus all 3 head turns.
			Expect(completer.Calls[0]).To(HaveLen(4))
		})
	})

	It("honors configured thresholds", func() {
		cmp.KeepRecent = 5
		cmp.SummarizeWindow = 2
		saveTurns(8)

		turns, err := cmp.Context(ctx, "alice")
		Expect(err).NotTo(HaveOccurred())
		// 3 head turns + 1 summary + 5 tail turns.
		Expect(turns).To(HaveLen(9))

		Expect(completer.Calls).To(HaveLen(1))
		// System instruction plus the last 2 head turns.
		Expect(completer.Calls[0]).To(HaveLen(3))
		Expect(completer.Calls[0][1].Content).To(Equal("message 01"))
		Expect(completer.Calls[0][2].Content).To(Equal("message 02"))
	})
})

type countingCounter struct{ n int }

func (c *countingCounter) Inc() { c.n++ }
