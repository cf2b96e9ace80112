package constraint

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Fallback", func() {
	v := Validator{MinWords: 5, MaxWords: 15}

	DescribeTable("always produces output that passes validation",
		func(input string) {
			out := v.Fallback(input)
			outcome := v.Validate(out)
			Expect(outcome.Valid).To(BeTrue(), "fallback output %q failed: %s", out, outcome.Reason)
		},
		Entry("empty input", ""),
		Entry("whitespace only", "   \n\t  "),
		Entry("forbidden symbols only", "#*/%-•“”—"),
		Entry("short reply", "Good job"),
		Entry("valid-length reply", "I like to read books in the morning"),
		Entry("far too long reply", "one two three four five six seven eight nine ten eleven twelve thirteen fourteen fifteen sixteen seventeen eighteen nineteen twenty"),
		Entry("digits and punctuation", "1 2 3 4 5 6 7 8 9 10 11 12 13 14 15 16!"),
		Entry("markdown soup", "## Heading\n* bullet one\n* bullet two\n> quote"),
	)

	It("keeps a compliant reply's words", func() {
		Expect(v.Fallback("I like to read books daily")).To(Equal("I like to read books daily."))
	})

	It("truncates to the maximum word count", func() {
		long := "one two three four five six seven eight nine ten eleven twelve thirteen fourteen fifteen sixteen seventeen"
		out := v.Fallback(long)
		Expect(CountWords(out)).To(Equal(15))
	})

	It("pads a short reply with filler words", func() {
		out := v.Fallback("Good job")
		Expect(CountWords(out)).To(BeNumerically(">=", 5))
		Expect(out).To(HavePrefix("Good job"))
	})

	It("seeds from the default sentence when nothing survives sanitizing", func() {
		out := v.Fallback("#*%")
		Expect(out).To(HavePrefix("I will keep practising"))
	})

	It("appends a period when the text lacks terminal punctuation", func() {
		Expect(v.Fallback("Do you like tea today")).To(HaveSuffix("today."))
	})

	It("is deterministic", func() {
		Expect(v.Fallback("Good job")).To(Equal(v.Fallback("Good job")))
	})

	It("is idempotent on its own output", func() {
		first := v.Fallback("some short reply")
		second := v.Fallback(first)
		Expect(v.Validate(second).Valid).To(BeTrue())
		Expect(CountWords(second)).To(Equal(CountWords(first)))
	})
})
