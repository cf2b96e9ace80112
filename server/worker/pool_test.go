package worker

import (
	"context"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/lingopod/lingopod/pkg/audit"
	"github.com/lingopod/lingopod/pkg/audit/inmemory"
)

// newTestPool creates a worker pool backed by an in-memory driver.
// Callers should "wp.Close()" to drain enqueued records before asserting storage state.
func newTestPool() (*Pool, *inmemory.Driver) {
	driver := inmemory.New(0)

	wp, err := NewPool(&Config{
		Driver: driver,
		Logger: zap.NewNop(),
	})
	Expect(err).NotTo(HaveOccurred())

	return wp, driver
}

func testRecord(n int) audit.Record {
	return audit.Record{
		ID:         fmt.Sprintf("id-%03d", n),
		Task:       "chat",
		RequestID:  fmt.Sprintf("req-%03d", n),
		DurationMS: 12,
		OK:         true,
		CreatedAt:  time.Now(),
	}
}

var _ = Describe("Worker Pool", func() {
	var (
		wp     *Pool
		driver *inmemory.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		wp, driver = newTestPool()
		ctx = context.Background()
	})

	Describe("Enqueue", func() {
		It("returns true when the queue has capacity", func() {
			Expect(wp.Enqueue(testRecord(1))).To(BeTrue())
			wp.Close()
		})

		It("drops records when the queue is full", func() {
			// Zero workers are not allowed, so block the queue instead: a
			// single-slot queue with a driver that parks until released.
			release := make(chan struct{})
			blocked := &blockingDriver{release: release}

			small, err := NewPool(&Config{
				Driver:     blocked,
				NumWorkers: 1,
				QueueSize:  1,
				Logger:     zap.NewNop(),
			})
			Expect(err).NotTo(HaveOccurred())

			// First record occupies the worker, second fills the queue.
			Expect(small.Enqueue(testRecord(1))).To(BeTrue())
			Eventually(blocked.active.Load).Should(BeTrue())
			Expect(small.Enqueue(testRecord(2))).To(BeTrue())
			Expect(small.Enqueue(testRecord(3))).To(BeFalse())

			close(release)
			small.Close()
		})
	})

	Describe("Persistence", func() {
		It("stores every enqueued record after draining", func() {
			for i := 0; i < 5; i++ {
				Expect(wp.Enqueue(testRecord(i))).To(BeTrue())
			}
			wp.Close()

			records, err := driver.List(ctx, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(5))
		})

		It("keeps processing after a driver failure", func() {
			failing := &flakyDriver{inner: driver}
			flaky, err := NewPool(&Config{
				Driver: failing,
				Logger: zap.NewNop(),
			})
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 4; i++ {
				Expect(flaky.Enqueue(testRecord(i))).To(BeTrue())
			}
			flaky.Close()

			records, err := driver.List(ctx, 0)
			Expect(err).NotTo(HaveOccurred())
			// Every other Put fails; the rest must still land.
			Expect(records).To(HaveLen(2))
		})
	})
})
