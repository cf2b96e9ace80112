package normalize

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ExtractObject", func() {
	It("returns trimmed bare JSON unchanged", func() {
		Expect(ExtractObject("  {\"a\": 1}  ", FirstSegment)).To(Equal(`{"a": 1}`))
	})

	It("returns empty for blank input", func() {
		Expect(ExtractObject("   ", FirstSegment)).To(BeEmpty())
	})

	Context("code fences", func() {
		It("strips a fenced block with a json hint", func() {
			raw := "```json\n{\"a\": 1}\n```"
			Expect(ExtractObject(raw, FirstSegment)).To(Equal(`{"a": 1}`))
		})

		It("keeps the first non-empty segment when asked", func() {
			raw := "```\n{\"first\": true}\n```\n{\"outside\": true}"
			Expect(ExtractObject(raw, FirstSegment)).To(Equal(`{"first": true}`))
		})

		It("keeps the last non-empty segment when asked", func() {
			raw := "```\n{\"first\": true}\n```\ntrailing {\"last\": true} prose"
			Expect(ExtractObject(raw, LastSegment)).To(Equal(`{"last": true}`))
		})
	})

	It("strips a bare json hint without fences", func() {
		Expect(ExtractObject("json {\"a\": 1}", FirstSegment)).To(Equal(`{"a": 1}`))
	})

	It("slices between the first { and last } in chatty replies", func() {
		raw := `Sure, here you go: {"a": {"b": 2}} hope that helps!`
		Expect(ExtractObject(raw, FirstSegment)).To(Equal(`{"a": {"b": 2}}`))
	})

	It("leaves text without any object untouched", func() {
		Expect(ExtractObject("no braces here", FirstSegment)).To(Equal("no braces here"))
	})

	It("leaves an unpaired brace untouched", func() {
		Expect(ExtractObject("only an opening { here", FirstSegment)).To(Equal("only an opening { here"))
	})
})
