package prompt

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lingopod/lingopod/pkg/llm"
)

var _ = Describe("Chat", func() {
	It("prepends the system prompt when the conversation lacks one", func() {
		messages := Chat("be friendly", []llm.Message{{Role: llm.RoleUser, Content: "hi"}})
		Expect(messages).To(HaveLen(2))
		Expect(messages[0].Role).To(Equal(llm.RoleSystem))
		Expect(messages[0].Content).To(Equal("be friendly"))
	})

	It("keeps an existing system message rather than duplicating", func() {
		messages := Chat("be friendly", []llm.Message{
			{Role: llm.RoleSystem, Content: "custom"},
			{Role: llm.RoleUser, Content: "hi"},
		})
		Expect(messages).To(HaveLen(2))
		Expect(messages[0].Content).To(Equal("custom"))
	})

	It("leaves the conversation alone when no prompt is configured", func() {
		messages := Chat("", []llm.Message{{Role: llm.RoleUser, Content: "hi"}})
		Expect(messages).To(HaveLen(1))
	})

	It("does not mutate the caller's slice", func() {
		original := []llm.Message{{Role: llm.RoleUser, Content: "hi"}}
		_ = Chat("be friendly", original)
		Expect(original).To(HaveLen(1))
		Expect(original[0].Role).To(Equal(llm.RoleUser))
	})
})

var _ = Describe("Translation", func() {
	It("interpolates the target language into the template", func() {
		messages := Translation("Translate into {target_language}.", "French", "hello")
		Expect(messages[0].Content).To(Equal("Translate into French."))
		Expect(messages[1].Content).To(Equal("hello"))
	})

	It("uses a template without the placeholder as-is", func() {
		messages := Translation("Just translate.", "French", "hello")
		Expect(messages[0].Content).To(Equal("Just translate."))
	})
})

var _ = Describe("Grammar", func() {
	It("sends the bare text when no context is given", func() {
		messages := Grammar("check grammar", "He go home.", nil)
		Expect(messages).To(HaveLen(2))
		Expect(messages[1].Content).To(Equal("He go home."))
	})

	It("folds prior turns into the user payload", func() {
		context := []llm.Message{
			{Role: llm.RoleAssistant, Content: "How are you today?"},
		}
		messages := Grammar("check grammar", "I is fine.", context)
		Expect(messages[1].Content).To(ContainSubstring("Conversation history:"))
		Expect(messages[1].Content).To(ContainSubstring("assistant: How are you today?"))
		Expect(messages[1].Content).To(ContainSubstring("Student reply: I is fine."))
	})

	It("keeps only the last few turns of a long context", func() {
		var context []llm.Message
		for _, c := range []string{"one", "two", "three", "four", "five", "six"} {
			context = append(context, llm.Message{Role: llm.RoleUser, Content: c})
		}
		messages := Grammar("check grammar", "reply", context)
		Expect(messages[1].Content).NotTo(ContainSubstring("one"))
		Expect(messages[1].Content).NotTo(ContainSubstring("two"))
		Expect(messages[1].Content).To(ContainSubstring("three"))
		Expect(messages[1].Content).To(ContainSubstring("six"))
	})
})

var _ = Describe("Dictionary", func() {
	It("wraps the word in a JSON payload", func() {
		messages := Dictionary("define words", "run", "")
		Expect(messages[1].Content).To(MatchJSON(`{"word": "run"}`))
	})

	It("includes the containing sentence when given", func() {
		messages := Dictionary("define words", "run", "I run daily.")
		Expect(messages[1].Content).To(MatchJSON(`{"word": "run", "sentence": "I run daily."}`))
	})
})
