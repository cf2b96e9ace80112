package normalize

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Grammar", func() {
	It("extracts all three fields from a well-formed reply", func() {
		raw := `{"is_correct": false, "feedback": "subject-verb disagreement", "suggestion": "He goes home."}`
		result := Grammar(raw)

		Expect(result.IsCorrect).To(BeFalse())
		Expect(result.Feedback).To(Equal("subject-verb disagreement"))
		Expect(result.Suggestion).To(Equal("He goes home."))
	})

	It("handles a correct verdict without a suggestion", func() {
		result := Grammar(`{"is_correct": true, "feedback": "Looks great."}`)

		Expect(result.IsCorrect).To(BeTrue())
		Expect(result.Feedback).To(Equal("Looks great."))
		Expect(result.Suggestion).To(BeEmpty())
	})

	It("strips a fenced reply before decoding", func() {
		raw := "```json\n{\"is_correct\": true, \"feedback\": \"ok\"}\n```"
		Expect(Grammar(raw).IsCorrect).To(BeTrue())
	})

	It("returns the placeholder when the reply is empty", func() {
		result := Grammar("  ")
		Expect(result.IsCorrect).To(BeFalse())
		Expect(result.Feedback).To(Equal(PlaceholderNoFeedback))
	})

	It("degrades to opaque feedback when decoding fails", func() {
		result := Grammar("your sentence looks fine to me")
		Expect(result.IsCorrect).To(BeFalse())
		Expect(result.Feedback).To(Equal("your sentence looks fine to me"))
		Expect(result.Suggestion).To(BeEmpty())
	})

	It("substitutes a placeholder when feedback is blank", func() {
		result := Grammar(`{"is_correct": true, "feedback": ""}`)
		Expect(result.Feedback).To(Equal(PlaceholderFeedbackDone))
	})

	It("normalizes an empty suggestion to absent", func() {
		result := Grammar(`{"is_correct": true, "feedback": "fine", "suggestion": "  "}`)
		Expect(result.Suggestion).To(BeEmpty())
	})

	It("treats a stringly-typed verdict leniently", func() {
		Expect(Grammar(`{"is_correct": "true", "feedback": "x"}`).IsCorrect).To(BeTrue())
		Expect(Grammar(`{"is_correct": "nope", "feedback": "x"}`).IsCorrect).To(BeFalse())
	})
})
