package worker

import (
	"context"
	"errors"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/relay/pkg/eventstream"
	"github.com/papercomputeco/relay/pkg/logger"
	testutils "github.com/papercomputeco/relay/pkg/utils/test"
)

// blockingPublisher holds every publish until release is closed.
type blockingPublisher struct {
	release chan struct{}
	once    sync.Once
}

func (b *blockingPublisher) PublishTurn(ctx context.Context, _ *eventstream.TurnRecordedEvent) error {
	select {
	case <-b.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *blockingPublisher) Close() error { return nil }

func (b *blockingPublisher) unblock() { b.once.Do(func() { close(b.release) }) }

// newTestPool creates a worker pool backed by a mock publisher.
// Callers should "wp.Close()" to drain enqueued jobs before asserting publisher state.
func newTestPool() (*Pool, *testutils.MockPublisher) {
	publisher := testutils.NewMockPublisher()

	wp, err := NewPool(&Config{
		Publisher: publisher,
		Logger:    logger.Nop(),
	})
	Expect(err).NotTo(HaveOccurred())

	return wp, publisher
}

func testEvent(userID string) *eventstream.TurnRecordedEvent {
	return eventstream.NewTurnRecordedEvent(userID, eventstream.OutcomeAnswered, nil)
}

var _ = Describe("Worker Pool", func() {
	var (
		wp        *Pool
		publisher *testutils.MockPublisher
	)

	BeforeEach(func() {
		wp, publisher = newTestPool()
	})

	AfterEach(func() {
		wp.Close()
	})

	Describe("NewPool", func() {
		It("requires a publisher", func() {
			_, err := NewPool(&Config{})
			Expect(err).To(HaveOccurred())
		})

		It("applies defaults", func() {
			Expect(wp.config.NumWorkers).To(Equal(defaultNumWorkers))
			Expect(wp.config.QueueSize).To(Equal(defaultJobQueueSize))
			Expect(wp.config.PublishTimeout).To(Equal(defaultPublishTimeout))
		})
	})

	Describe("Enqueue", func() {
		It("returns true when the queue has capacity", func() {
			Expect(wp.Enqueue(Job{Event: testEvent("42")})).To(BeTrue())
		})

		It("rejects a job without an event", func() {
			Expect(wp.Enqueue(Job{})).To(BeFalse())
		})

		It("drops jobs once closed", func() {
			wp.Close()
			Expect(wp.Enqueue(Job{Event: testEvent("42")})).To(BeFalse())
		})

		It("drops jobs when the queue is full", func() {
			blocker := &blockingPublisher{release: make(chan struct{})}
			full, err := NewPool(&Config{
				Publisher:  blocker,
				NumWorkers: 1,
				QueueSize:  1,
				Logger:     logger.Nop(),
			})
			Expect(err).NotTo(HaveOccurred())
			defer full.Close()
			defer blocker.unblock()

			// One job is held by the worker, one fills the queue.
			Expect(full.Enqueue(Job{Event: testEvent("1")})).To(BeTrue())
			Eventually(func() int { return len(full.queue) }).Should(BeZero())
			Expect(full.Enqueue(Job{Event: testEvent("2")})).To(BeTrue())
			Expect(full.Enqueue(Job{Event: testEvent("3")})).To(BeFalse())
		})
	})

	Describe("publishing", func() {
		It("publishes every enqueued event before Close returns", func() {
			for _, id := range []string{"a", "b", "c"} {
				Expect(wp.Enqueue(Job{Event: testEvent(id)})).To(BeTrue())
			}
			wp.Close()

			events := publisher.Events()
			Expect(events).To(HaveLen(3))
			ids := []string{events[0].UserID, events[1].UserID, events[2].UserID}
			Expect(ids).To(ConsistOf("a", "b", "c"))
		})

		It("keeps running after a publish failure", func() {
			publisher.Err = errors.New("broker down")
			Expect(wp.Enqueue(Job{Event: testEvent("a")})).To(BeTrue())
			wp.Close()

			Expect(publisher.Events()).To(BeEmpty())
		})

		It("tolerates a second Close", func() {
			wp.Close()
			Expect(wp.Close).NotTo(Panic())
		})
	})
})
