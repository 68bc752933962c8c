package worker

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/muninnhq/muninn/pkg/chat"
	"github.com/muninnhq/muninn/pkg/eventstream"
	"github.com/muninnhq/muninn/pkg/store"
	testutils "github.com/muninnhq/muninn/pkg/utils/test"
)

// newTestPool creates a worker pool backed by a capture publisher.
// Callers should "wp.Close()" to drain enqueued jobs before asserting.
func newTestPool(queueSize uint) (*Pool, *testutils.CapturePublisher) {
	publisher := testutils.NewCapturePublisher()

	wp, err := NewPool(&Config{
		Publisher: publisher,
		QueueSize: queueSize,
	})
	Expect(err).NotTo(HaveOccurred())

	return wp, publisher
}

func newTestEvent(user, hash string) *eventstream.TurnSavedEvent {
	turn := chat.NewTurn(chat.RoleUser, "hello", hash)
	return eventstream.NewTurnSavedEvent(user, store.Today(), turn, store.SaveDurable)
}

var _ = Describe("Worker Pool", func() {
	Describe("Enqueue", func() {
		It("returns true when the queue has capacity", func() {
			wp, _ := newTestPool(0)
			ok := wp.Enqueue(Job{Event: newTestEvent("alice", "h1")})
			Expect(ok).To(BeTrue())
			wp.Close()
		})

		It("publishes enqueued events", func() {
			wp, publisher := newTestPool(0)
			wp.Enqueue(Job{Event: newTestEvent("alice", "h1")})
			wp.Enqueue(Job{Event: newTestEvent("alice", "h2")})
			wp.Close()

			events := publisher.Events()
			Expect(events).To(HaveLen(2))

			hashes := []string{events[0].Turn.Hash, events[1].Turn.Hash}
			Expect(hashes).To(ConsistOf("h1", "h2"))
		})

		It("keeps serving after a publish failure", func() {
			publisher := testutils.NewCapturePublisher()
			wp, err := NewPool(&Config{Publisher: publisher})
			Expect(err).NotTo(HaveOccurred())

			publisher.Fail = eventstream.ErrNilEvent
			wp.Enqueue(Job{Event: newTestEvent("alice", "h1")})
			wp.Close()

			Expect(publisher.Events()).To(BeEmpty())
		})
	})

	Describe("Close", func() {
		It("drains in-flight jobs before returning", func() {
			wp, publisher := newTestPool(64)
			for i := 0; i < 50; i++ {
				Expect(wp.Enqueue(Job{Event: newTestEvent("alice", "h")})).To(BeTrue())
			}
			wp.Close()

			Expect(publisher.Events()).To(HaveLen(50))
		})
	})

	Describe("NewPool", func() {
		It("applies worker and queue defaults", func() {
			wp, _ := newTestPool(0)
			Expect(wp.config.NumWorkers).To(Equal(uint(3)))
			Expect(wp.config.QueueSize).To(Equal(uint(256)))
			wp.Close()
		})
	})
})
