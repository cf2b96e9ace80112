// Package normalize coerces unstructured or semi-structured LLM output into
// fixed-shape results for the lookup-style endpoints. Nothing in this package
// returns an error: malformed output always degrades to a minimal-but-valid
// structured result.
package normalize

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Fence selects which non-empty code-fence segment ExtractObject keeps when
// the reply wraps its JSON in triple backticks.
type Fence int

const (
	// FirstSegment keeps the first non-empty fenced segment.
	FirstSegment Fence = iota
	// LastSegment keeps the last non-empty fenced segment. Dictionary replies
	// tend to put prose before the fenced object, so last wins there.
	LastSegment
)

// ExtractObject narrows a chatty LLM reply down to the JSON object most
// likely embedded in it. Stages, each independently harmless:
//
//  1. trim surrounding whitespace
//  2. strip a triple-backtick code fence, keeping one non-empty segment
//  3. strip a leading "json" language hint
//  4. if the remainder does not start with "{", slice between the first "{"
//     and the last "}"
//
// The result is a best-effort candidate; callers still attempt a strict
// decode and degrade on failure.
func ExtractObject(raw string, fence Fence) string {
	stripped := strings.TrimSpace(raw)

	if strings.HasPrefix(stripped, "```") {
		var segments []string
		for _, segment := range strings.Split(stripped, "```") {
			if s := strings.TrimSpace(segment); s != "" {
				segments = append(segments, s)
			}
		}
		if len(segments) > 0 {
			if fence == LastSegment {
				stripped = segments[len(segments)-1]
			} else {
				stripped = segments[0]
			}
		}
	}

	if len(stripped) >= 4 && strings.EqualFold(stripped[:4], "json") {
		stripped = strings.TrimSpace(stripped[4:])
	}

	if stripped != "" && !strings.HasPrefix(stripped, "{") {
		start := strings.Index(stripped, "{")
		end := strings.LastIndex(stripped, "}")
		if start != -1 && end != -1 && start < end {
			stripped = stripped[start : end+1]
		}
	}

	return stripped
}

// asString coerces a decoded JSON scalar to a trimmed string, or "" when the
// value is absent or not scalar-shaped.
func asString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64, bool, json.Number:
		return fmt.Sprint(t)
	default:
		return ""
	}
}

// asStringList accepts only list-shaped values, wrapping a bare string as a
// single-element list. Elements are coerced to trimmed strings and blanks
// are dropped.
func asStringList(v any, limit int) []string {
	var items []any
	switch t := v.(type) {
	case []any:
		items = t
	case string:
		items = []any{t}
	default:
		return nil
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		// Scalars are coerced rather than required to be strings, so a
		// numeric example entry survives the lookup.
		if s := asString(item); s != "" {
			out = append(out, s)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// asBool accepts a JSON boolean, or the strings "true"/"false".
func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(strings.TrimSpace(t), "true")
	default:
		return false
	}
}
