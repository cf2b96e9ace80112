package normalize

import "encoding/json"

// Placeholder feedback strings for degraded grammar results.
const (
	PlaceholderNoFeedback   = "No grammar feedback returned. Please try again."
	PlaceholderFeedbackDone = "Grammar check completed."
)

// GrammarResult is the fixed-shape outcome of a grammar check.
type GrammarResult struct {
	IsCorrect  bool
	Feedback   string
	Suggestion string
}

// Grammar coerces a raw grammar-check reply into a GrammarResult.
func Grammar(raw string) GrammarResult {
	stripped := ExtractObject(raw, FirstSegment)
	if stripped == "" {
		return GrammarResult{Feedback: PlaceholderNoFeedback}
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(stripped), &data); err != nil {
		// Treat the whole blob as opaque feedback; a conversational reply is
		// still more useful to the learner than an error.
		return GrammarResult{Feedback: stripped}
	}

	result := GrammarResult{
		IsCorrect:  asBool(data["is_correct"]),
		Feedback:   asString(data["feedback"]),
		Suggestion: asString(data["suggestion"]),
	}
	if result.Feedback == "" {
		result.Feedback = PlaceholderFeedbackDone
	}

	return result
}
