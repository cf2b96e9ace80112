// Package constraint enforces hard output rules on assistant replies:
// a bounded English word count and a forbidden-symbol set chosen so replies
// stay speakable by the TTS voice (no markdown, bullets, quotes, or line
// breaks). Replies that keep failing are corrected by a bounded retry loop
// and, past that, replaced by a deterministic fallback.
package constraint

import (
	"fmt"
	"regexp"
	"strings"
)

// Symbol groups making up the forbidden set. The retry instruction prose is
// generated from asciiSymbols so it can never drift from the enforced set.
var (
	asciiSymbols  = []rune{'#', '*', '/', '%', '-'}
	quoteSymbols  = []rune{'"', '\'', '`', '“', '”', '‘', '’'}
	bulletSymbols = []rune{'•', '●', '▪', '‧', '·'}
	dashSymbols   = []rune{'–', '—'}
	breakSymbols  = []rune{'\n', '\r', '\t'}
)

var forbidden = func() map[rune]struct{} {
	set := make(map[rune]struct{})
	for _, group := range [][]rune{asciiSymbols, quoteSymbols, bulletSymbols, dashSymbols, breakSymbols} {
		for _, r := range group {
			set[r] = struct{}{}
		}
	}
	return set
}()

// wordPattern counts only runs of ASCII letters as words, so punctuation-
// adjacent tokens do not inflate counts.
var wordPattern = regexp.MustCompile(`[A-Za-z]+`)

// Outcome is the result of validating a candidate reply. Reason feeds the
// retry instruction and logs; it is never surfaced to the end user.
type Outcome struct {
	Valid  bool
	Reason string
}

// Validator checks candidate replies against the symbol and word-count rules.
type Validator struct {
	MinWords int
	MaxWords int
}

// Validate checks text against the rules in order; the first failure wins.
func (v Validator) Validate(text string) Outcome {
	if strings.TrimSpace(text) == "" {
		return Outcome{Reason: "the response was empty"}
	}

	for _, r := range text {
		if _, bad := forbidden[r]; bad {
			return Outcome{Reason: "the response used forbidden symbols or line breaks"}
		}
	}

	total := CountWords(Normalize(text))
	if total < v.MinWords {
		return Outcome{Reason: fmt.Sprintf("the response only used %d words", total)}
	}
	if total > v.MaxWords {
		return Outcome{Reason: fmt.Sprintf("the response used %d words", total)}
	}

	return Outcome{Valid: true}
}

// Normalize trims surrounding whitespace and collapses internal runs of
// whitespace into single spaces.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// StripForbidden removes every forbidden symbol from text.
func StripForbidden(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if _, bad := forbidden[r]; !bad {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CountWords counts runs of ASCII letters in text.
func CountWords(text string) int {
	return len(wordPattern.FindAllString(text, -1))
}

// SymbolGlyphs renders the printable ASCII members of the forbidden set for
// use in instruction prose, e.g. "# * / % -".
func SymbolGlyphs() string {
	parts := make([]string, len(asciiSymbols))
	for i, r := range asciiSymbols {
		parts[i] = string(r)
	}
	return strings.Join(parts, " ")
}
