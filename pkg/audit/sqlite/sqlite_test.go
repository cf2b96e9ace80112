package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lingopod/lingopod/pkg/audit"
)

var _ = Describe("Driver", func() {
	var (
		ctx    context.Context
		driver *Driver
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		driver, err = New(":memory:")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(driver.Close()).To(Succeed())
	})

	put := func(n int, at time.Time) {
		Expect(driver.Put(ctx, audit.Record{
			ID:         fmt.Sprintf("id-%03d", n),
			Task:       "chat",
			Model:      "test-model",
			RequestID:  fmt.Sprintf("req-%03d", n),
			DurationMS: int64(n * 10),
			OK:         true,
			CreatedAt:  at,
		})).To(Succeed())
	}

	It("round-trips a record", func() {
		now := time.Now().UTC().Truncate(time.Second)
		put(1, now)

		records, err := driver.List(ctx, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(1))
		Expect(records[0].ID).To(Equal("id-001"))
		Expect(records[0].Task).To(Equal("chat"))
		Expect(records[0].Model).To(Equal("test-model"))
		Expect(records[0].RequestID).To(Equal("req-001"))
		Expect(records[0].DurationMS).To(Equal(int64(10)))
		Expect(records[0].OK).To(BeTrue())
		Expect(records[0].CreatedAt.UTC()).To(Equal(now))
	})

	It("lists newest first with a limit", func() {
		base := time.Now().UTC().Truncate(time.Second)
		for i := 0; i < 5; i++ {
			put(i, base.Add(time.Duration(i)*time.Second))
		}

		records, err := driver.List(ctx, 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(3))
		Expect(records[0].ID).To(Equal("id-004"))
		Expect(records[1].ID).To(Equal("id-003"))
		Expect(records[2].ID).To(Equal("id-002"))
	})

	It("treats duplicate ids as a no-op", func() {
		now := time.Now().UTC()
		put(1, now)
		put(1, now)

		records, err := driver.List(ctx, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(1))
	})

	It("persists to a file-backed database", func() {
		path := filepath.Join(GinkgoT().TempDir(), "audit.db")

		fileDriver, err := New(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(fileDriver.Put(ctx, audit.Record{
			ID:        "id-file",
			Task:      "tts",
			RequestID: "req-file",
			CreatedAt: time.Now().UTC(),
		})).To(Succeed())
		Expect(fileDriver.Close()).To(Succeed())

		reopened, err := New(path)
		Expect(err).NotTo(HaveOccurred())
		defer reopened.Close()

		records, err := reopened.List(ctx, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(1))
		Expect(records[0].ID).To(Equal("id-file"))
	})
})
