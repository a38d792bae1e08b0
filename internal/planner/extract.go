package planner

import (
	"regexp"
	"strings"
)

// fencedJSON matches the first triple-backtick block (optionally tagged json)
// whose interior is a brace-delimited object.
var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// ExtractJSON isolates one JSON object from raw model output.
//
// A fenced code block wins outright: its interior is taken verbatim with no
// further brace scanning. Otherwise the text is scanned from the first '{'
// with a depth counter that is aware of string literals and escape sequences,
// so braces inside string values (including escaped quotes) do not terminate
// the object early.
func ExtractJSON(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", &PlanError{Kind: ErrEmptyOrNonJSON, Detail: "model returned an empty response"}
	}

	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), nil
	}

	first := strings.IndexByte(text, '{')
	if first < 0 {
		return "", &PlanError{
			Kind:    ErrEmptyOrNonJSON,
			Detail:  "no opening brace found in model output",
			Excerpt: excerpt(raw),
		}
	}

	depth := 0
	inString := false
	escaped := false
	// Structural characters are ASCII, so byte-wise scanning is safe with UTF-8.
	for i := first; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return strings.TrimSpace(text[first : i+1]), nil
			}
		}
	}

	return "", &PlanError{
		Kind:    ErrUnbalancedJSON,
		Detail:  "brace depth never returned to zero",
		Excerpt: excerpt(raw),
	}
}
