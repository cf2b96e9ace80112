package normalize

import "encoding/json"

// PlaceholderDefinition fills the definition field when the model returned
// nothing usable for it.
const PlaceholderDefinition = "No definition"

// UnavailableDefinition fills the definition field when the lookup backend
// could not be reached at all, as opposed to replying with nothing usable.
const UnavailableDefinition = "No definition available, please try again later."

// Unavailable returns the placeholder entry served when the lookup backend
// is unreachable.
func Unavailable(word string) DictionaryResult {
	return DictionaryResult{
		Headword:   word,
		Definition: UnavailableDefinition,
	}
}

// maxExamples bounds how many example sentences a lookup result carries.
const maxExamples = 3

// DictionaryResult is the fixed-shape outcome of a dictionary lookup.
// Optional fields are empty strings / nil slices when absent.
type DictionaryResult struct {
	Headword     string
	PartOfSpeech string
	Definition   string
	Examples     []string
	Phonetics    []string
	Notes        string
}

// Dictionary coerces a raw dictionary reply into a DictionaryResult.
// fallbackWord is the learner's queried word, used as the headword whenever
// the reply does not provide one.
func Dictionary(raw, fallbackWord string) DictionaryResult {
	stripped := ExtractObject(raw, LastSegment)
	if stripped == "" {
		return DictionaryResult{
			Headword:   fallbackWord,
			Definition: PlaceholderDefinition,
		}
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(stripped), &data); err != nil {
		// Not an object after every recovery stage: surface the text itself
		// as the definition rather than failing the lookup.
		return DictionaryResult{
			Headword:   fallbackWord,
			Definition: stripped,
		}
	}

	result := DictionaryResult{
		Headword:   asString(data["headword"]),
		Definition: asString(data["definition"]),
		Examples:   asStringList(data["examples"], maxExamples),
		Phonetics:  asStringList(data["phonetics"], 0),
		Notes:      asString(data["notes"]),
	}
	if result.Headword == "" {
		result.Headword = fallbackWord
	}
	if result.Definition == "" {
		result.Definition = PlaceholderDefinition
	}

	// part_of_speech arrives as either a string or a list; keep the first.
	switch pos := data["part_of_speech"].(type) {
	case string:
		result.PartOfSpeech = asString(pos)
	case []any:
		if list := asStringList(pos, 1); len(list) > 0 {
			result.PartOfSpeech = list[0]
		}
	}

	return result
}
