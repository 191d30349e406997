package extraction

import (
	"encoding/json"
	"regexp"
	"strings"
)

// fencedJSON matches a ```json fenced block containing an object. Models
// frequently wrap their answer in markdown even when told not to.
var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// ExtractJSON pulls a JSON object out of free-form model output. Strategy,
// in order: a fenced code block containing an object, then the first '{' to
// the end of the text with trailing garbage trimmed. Returns false when
// nothing parses, which callers treat as a signal to fall back to field-level
// regex recovery rather than an error.
func ExtractJSON(text string) (string, bool) {
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		candidate := strings.TrimSpace(m[1])
		if json.Valid([]byte(candidate)) {
			return candidate, true
		}
	}

	start := strings.Index(text, "{")
	if start == -1 {
		return "", false
	}

	// Try progressively shorter slices ending at each '}' from the right.
	// Token-limited responses are often truncated mid-object; prose after the
	// object is the other common failure.
	rest := text[start:]
	for end := strings.LastIndex(rest, "}"); end != -1; end = strings.LastIndex(rest[:end], "}") {
		candidate := rest[:end+1]
		if json.Valid([]byte(candidate)) {
			return candidate, true
		}
	}

	return "", false
}
