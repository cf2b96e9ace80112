package constraint

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lingopod/lingopod/pkg/llm"
)

// Chatter is the slice of the LLM client the orchestrator needs. Tests stub
// it to script provider replies.
type Chatter interface {
	Chat(ctx context.Context, req llm.ChatRequest) (llm.ChatResult, error)
}

// Orchestrator retries non-compliant replies up to MaxRetries extra attempts,
// then falls back to a deterministic compliant reply. Only content-validation
// failures are retried; transport and provider errors abort immediately.
type Orchestrator struct {
	client     Chatter
	validator  Validator
	maxRetries int
	logger     *zap.Logger
}

// NewOrchestrator creates an Orchestrator around the given client.
func NewOrchestrator(client Chatter, validator Validator, maxRetries int, logger *zap.Logger) *Orchestrator {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Orchestrator{
		client:     client,
		validator:  validator,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// Generate runs the constrained-generation pipeline: call, validate, retry
// with corrective turns, and finally fall back. On success the returned text
// is the sanitized reply; on exhaustion it is the fallback and the metadata
// reflects the last failed attempt (no successful attempt exists to report).
//
// Generate works on its own copy of the conversation; the caller's message
// slice is never mutated.
func (o *Orchestrator) Generate(ctx context.Context, req llm.ChatRequest) (string, llm.ChatResult, error) {
	messages := make([]llm.Message, len(req.Messages), len(req.Messages)+2*o.maxRetries)
	copy(messages, req.Messages)

	var last llm.ChatResult
	for attempt := 0; attempt <= o.maxRetries; attempt++ {
		attemptReq := req
		attemptReq.Messages = messages

		res, err := o.client.Chat(ctx, attemptReq)
		if err != nil {
			return "", res, err
		}
		last = res

		normalized := Normalize(res.Content)
		outcome := o.validator.Validate(res.Content)
		if outcome.Valid {
			// Defensive re-pass: stripping can reintroduce doubled spaces,
			// so normalize once more after it.
			return Normalize(StripForbidden(normalized)), res, nil
		}

		o.logger.Warn("reply violated constraints",
			zap.Int("attempt", attempt+1),
			zap.Int("attempts_allowed", o.maxRetries+1),
			zap.String("reason", outcome.Reason),
		)

		if attempt == o.maxRetries {
			break
		}

		// Append the failed reply and a corrective turn rather than replacing
		// the prompt: seeing its own mistake next to the explicit correction
		// request raises the model's correction success rate.
		messages = append(messages,
			llm.Message{Role: llm.RoleAssistant, Content: normalized},
			llm.Message{Role: llm.RoleUser, Content: o.retryInstruction(outcome.Reason)},
		)
	}

	o.logger.Warn("returning fallback reply after exhausting retries")
	return o.validator.Fallback(last.Content), last, nil
}

// retryInstruction names the violated rule, restates the full rule set from
// the validator's own configuration, and demands an immediate correction.
func (o *Orchestrator) retryInstruction(reason string) string {
	return fmt.Sprintf(
		"Rewrite your previous answer now so it follows every rule: respond in two or three sentences, "+
			"use a total of %d to %d English words, avoid quotation marks, emoji, special symbols "+
			"(%s), apostrophes, and bullet lists, and keep commas natural. You failed because "+
			"%s. Produce a corrected answer immediately.",
		o.validator.MinWords, o.validator.MaxWords, SymbolGlyphs(), reason,
	)
}
