// Package extract coerces free-form generation output into validated
// structured values.
//
// Generation backends are asked for bare JSON but routinely wrap it in
// prose, code fences, or trailing commentary. Instead of four bespoke
// parsers for the four structured shapes (paper analysis, mock test,
// answer grade, performance summary), this package provides one routine
// parameterized by expected shape and fallback builder. Extraction
// never returns an error: when the output cannot be salvaged, the
// caller's deterministic fallback is used instead.
package extract

import (
	"encoding/json"
	"strings"
)

// Shape describes the validation applied to a parsed object.
type Shape struct {
	// Required lists top-level keys that must be present. The check is
	// shallow presence only, not deep type checking.
	Required []string
}

// JSON extracts a value of type T from raw generation output.
//
// It takes the substring between the first '{' and the last '}'
// inclusive, parses it as a JSON object, verifies the shape's required
// keys are present, and unmarshals into T. On any failure - no braces,
// invalid JSON, missing key, type mismatch - it returns fallback() and
// false. On success it returns the parsed value and true.
func JSON[T any](raw string, shape Shape, fallback func() T) (T, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return fallback(), false
	}
	candidate := []byte(raw[start : end+1])

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(candidate, &obj); err != nil {
		return fallback(), false
	}

	for _, key := range shape.Required {
		if _, ok := obj[key]; !ok {
			return fallback(), false
		}
	}

	var value T
	if err := json.Unmarshal(candidate, &value); err != nil {
		return fallback(), false
	}
	return value, true
}

// Clamp restricts v to the range [lo, hi].
// Used to keep extracted scores within a question's marks budget.
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
