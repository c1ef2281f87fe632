package tagger

import (
	"encoding/json"
	"strings"
)

// extractFirstJSON pulls the first valid JSON object or array out of a model
// response. Responses often wrap the payload in markdown fences or prepend
// prose, so fences are stripped first and then the text is scanned from the
// first opening brace or bracket.
func extractFirstJSON(text string) (string, bool) {
	text = stripFences(text)

	start := -1
	for i, r := range text {
		if r == '{' || r == '[' {
			start = i
			break
		}
	}
	if start < 0 {
		return "", false
	}

	closer := byte('}')
	if text[start] == '[' {
		closer = ']'
	}

	// Walk candidate end positions from the back; the first slice that
	// unmarshals wins.
	for end := len(text); end > start; end-- {
		if text[end-1] != closer {
			continue
		}
		candidate := text[start:end]
		if json.Valid([]byte(candidate)) {
			return candidate, true
		}
	}
	return "", false
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// asString flattens a loosely typed JSON value into a string. Models
// occasionally return arrays or numbers where a string was asked for.
func asString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			if s := asString(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case float64:
		return strings.TrimSuffix(strings.TrimSuffix(jsonNumberString(t), ".0"), ".00")
	case nil:
		return ""
	default:
		return ""
	}
}

// asInt flattens a loosely typed JSON value into an int.
func asInt(v interface{}) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		n := 0
		seen := false
		for _, r := range t {
			if r >= '0' && r <= '9' {
				n = n*10 + int(r-'0')
				seen = true
			} else if seen {
				break
			}
		}
		return n
	default:
		return 0
	}
}

func jsonNumberString(f float64) string {
	b, _ := json.Marshal(f)
	return string(b)
}
