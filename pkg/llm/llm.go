// Package llm provides the chat types and the HTTP client for a local
// OpenAI-compatible completion server (e.g. LM Studio, Ollama).
package llm

// Chat roles per the OpenAI chat-completions convention.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single role-tagged conversation turn. Order within a
// conversation is chronological and semantically meaningful.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest describes one completion call. Optional knobs are pointers so
// the wire encoding can omit absent fields instead of sending nulls.
type ChatRequest struct {
	// Messages is the ordered conversation. A conversation carries at most
	// one system message, and it comes first.
	Messages []Message

	// Model overrides the client's default model when non-empty.
	Model string

	Temperature *float64
	MaxTokens   *int
}

// Usage is the provider-reported token accounting. Passthrough, not validated.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResult carries the assistant reply plus raw provider metadata.
type ChatResult struct {
	// Content is the first completion choice's message content, or "" when
	// the provider returned no choices.
	Content string

	// Model is the model name the provider reports having used.
	Model string

	// FinishReason is the provider's stop reason for the first choice.
	FinishReason string

	// Usage is nil when the provider omitted token accounting.
	Usage *Usage
}

// ErrorResponse is the JSON error body the backend returns to its callers.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Temperature is a convenience for building optional temperature values.
func Temperature(t float64) *float64 { return &t }

// MaxTokens is a convenience for building optional max-token caps.
func MaxTokens(n int) *int { return &n }
