package constraint

import "strings"

// seedWords replaces a reply that sanitizes down to nothing.
var seedWords = strings.Fields(
	"I will keep practising clear English sentences each day to build steady confidence and stay calm during our conversation",
)

// fillerWords pad a too-short reply up to the minimum word count.
var fillerWords = strings.Fields(
	"I focus on calm pacing and thoughtful ideas while expressing myself and encouraging patient progress every day",
)

// Fallback deterministically produces a reply that satisfies the validator,
// derived from the last failed reply where possible. It is pure: no network
// calls, same output for the same input.
//
// Only letter runs from the sanitized reply are kept, so every retained
// token counts as exactly one word and the result always lands inside the
// configured word bounds.
func (v Validator) Fallback(last string) string {
	words := wordPattern.FindAllString(StripForbidden(last), -1)
	if len(words) == 0 {
		words = append(words, seedWords...)
	}
	if len(words) > v.MaxWords {
		words = words[:v.MaxWords]
	}

	for i := 0; len(words) < v.MinWords && len(words) < v.MaxWords; i++ {
		words = append(words, fillerWords[i%len(fillerWords)])
	}

	text := strings.Join(words, " ")
	if !strings.HasSuffix(text, ".") && !strings.HasSuffix(text, "!") && !strings.HasSuffix(text, "?") {
		text += "."
	}
	return text
}
