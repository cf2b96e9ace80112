// Package prompt builds the ordered message lists for each task endpoint.
package prompt

import (
	"encoding/json"
	"strings"

	"github.com/lingopod/lingopod/pkg/llm"
)

// TargetLanguagePlaceholder is the token the translation prompt template
// interpolates the target-language name into.
const TargetLanguagePlaceholder = "{target_language}"

// grammarContextTurns bounds how many trailing turns of prior conversation
// the grammar check folds in as context.
const grammarContextTurns = 4

// Chat prepends the default system prompt to the conversation unless the
// caller already supplied a system message. The input slice is not mutated.
func Chat(systemPrompt string, messages []llm.Message) []llm.Message {
	if systemPrompt == "" {
		return append([]llm.Message(nil), messages...)
	}
	for _, m := range messages {
		if m.Role == llm.RoleSystem {
			return append([]llm.Message(nil), messages...)
		}
	}
	out := make([]llm.Message, 0, len(messages)+1)
	out = append(out, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
	return append(out, messages...)
}

// Translation builds the messages for a translation request. A template
// without the placeholder is used as-is, so a misconfigured template degrades
// to the unformatted prompt instead of failing the request.
func Translation(template, targetLanguage, text string) []llm.Message {
	system := strings.ReplaceAll(template, TargetLanguagePlaceholder, targetLanguage)
	return []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: text},
	}
}

// Grammar builds the messages for a grammar check. When prior conversation
// context is supplied, the last few turns are folded into the user payload so
// the model can judge the reply against the question it answers.
func Grammar(systemPrompt, text string, context []llm.Message) []llm.Message {
	var b strings.Builder
	if len(context) > 0 {
		recent := context
		if len(recent) > grammarContextTurns {
			recent = recent[len(recent)-grammarContextTurns:]
		}
		b.WriteString("Conversation history:\n")
		for _, m := range recent {
			b.WriteString(m.Role)
			b.WriteString(": ")
			b.WriteString(m.Content)
			b.WriteString("\n")
		}
		b.WriteString("\nStudent reply: ")
	}
	b.WriteString(text)

	return []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: b.String()},
	}
}

// Dictionary builds the messages for a dictionary lookup. The word (and the
// sentence it appeared in, when given) is passed as a small JSON payload so
// the model cannot confuse the query with instructions.
func Dictionary(systemPrompt, word, sentence string) []llm.Message {
	payload := map[string]string{"word": word}
	if sentence != "" {
		payload["sentence"] = sentence
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		encoded = []byte(word)
	}

	return []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: string(encoded)},
	}
}
