package extract

import (
	"regexp"
	"strings"
)

var reCodeFence = regexp.MustCompile("(?is)```(?:json)?\\s*(.*?)\\s*```")

// stripCodeFence returns the contents of the first fenced code block, or the
// trimmed input when no fence is present. Models occasionally wrap the JSON
// payload in markdown despite the JSON response type.
func stripCodeFence(s string) string {
	if m := reCodeFence.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(s)
}

// extractJSONArray narrows s to the outermost [...] span, provided bracket
// and brace counts inside the span balance. The service is not trusted to
// return bare JSON; stray prose before or after the array is common enough
// that parsing the raw text directly would fail.
func extractJSONArray(s string) string {
	first := strings.Index(s, "[")
	last := strings.LastIndex(s, "]")
	if first < 0 || last <= first {
		return s
	}
	span := s[first : last+1]
	if strings.Count(span, "[") == strings.Count(span, "]") &&
		strings.Count(span, "{") == strings.Count(span, "}") {
		return span
	}
	return s
}
