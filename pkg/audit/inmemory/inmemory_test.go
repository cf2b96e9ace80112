package inmemory

import (
	"context"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lingopod/lingopod/pkg/audit"
)

func record(n int) audit.Record {
	return audit.Record{
		ID:        fmt.Sprintf("id-%03d", n),
		Task:      "chat",
		RequestID: fmt.Sprintf("req-%03d", n),
		OK:        true,
		CreatedAt: time.Now(),
	}
}

var _ = Describe("Driver", func() {
	var (
		ctx    context.Context
		driver *Driver
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = New(0)
	})

	It("lists records newest first", func() {
		for i := 0; i < 3; i++ {
			Expect(driver.Put(ctx, record(i))).To(Succeed())
		}

		records, err := driver.List(ctx, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(3))
		Expect(records[0].ID).To(Equal("id-002"))
		Expect(records[2].ID).To(Equal("id-000"))
	})

	It("honors the list limit", func() {
		for i := 0; i < 5; i++ {
			Expect(driver.Put(ctx, record(i))).To(Succeed())
		}

		records, err := driver.List(ctx, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(2))
		Expect(records[0].ID).To(Equal("id-004"))
	})

	It("evicts the oldest records past capacity", func() {
		driver = New(2)
		for i := 0; i < 4; i++ {
			Expect(driver.Put(ctx, record(i))).To(Succeed())
		}

		records, err := driver.List(ctx, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(2))
		Expect(records[0].ID).To(Equal("id-003"))
		Expect(records[1].ID).To(Equal("id-002"))
	})

	It("returns an empty list when nothing was recorded", func() {
		records, err := driver.List(ctx, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(BeEmpty())
	})
})
