package audio

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Store", func() {
	var store *Store

	BeforeEach(func() {
		var err error
		store, err = NewStore(filepath.Join(GinkgoT().TempDir(), "audio"))
		Expect(err).NotTo(HaveOccurred())
	})

	It("creates the directory on construction", func() {
		info, err := os.Stat(store.Dir())
		Expect(err).NotTo(HaveOccurred())
		Expect(info.IsDir()).To(BeTrue())
	})

	It("round-trips artifact bytes", func() {
		path, err := store.Save([]byte("RIFF fake wav"), ".wav")
		Expect(err).NotTo(HaveOccurred())

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(Equal([]byte("RIFF fake wav")))
		Expect(filepath.Ext(path)).To(Equal(".wav"))
	})

	It("never reuses a name within the same second", func() {
		seen := map[string]bool{}
		for i := 0; i < 20; i++ {
			path, err := store.Save([]byte{byte(i)}, ".wav")
			Expect(err).NotTo(HaveOccurred())
			Expect(seen[path]).To(BeFalse())
			seen[path] = true
		}
	})

	It("keeps earlier artifacts intact", func() {
		first, err := store.Save([]byte("one"), ".wav")
		Expect(err).NotTo(HaveOccurred())
		_, err = store.Save([]byte("two"), ".wav")
		Expect(err).NotTo(HaveOccurred())

		data, err := os.ReadFile(first)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("one"))
	})
})
