package vocab

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titler = cases.Title(language.Spanish)

// NormalizeComponent resolves free text to a canonical component, or Unknown.
// Resolution order: exact synonym match on the collapsed lower-case form,
// then a longest-key-first whole-word scan of the synonym table, then exact
// matches against the canonical set itself (title-cased, upper-cased and
// as-written). The whole-word requirement keeps "can" from matching inside
// "scanner".
func (t *Table) NormalizeComponent(raw string) Component {
	name := collapse(strings.ToLower(raw))
	if name == "" {
		return Unknown
	}
	if c, ok := t.synonyms[name]; ok {
		return c
	}
	for _, key := range t.keysByLength {
		if containsWholeWord(name, key) {
			return t.synonyms[key]
		}
	}

	trimmed := collapse(raw)
	for _, candidate := range []string{
		titler.String(strings.ToLower(trimmed)),
		strings.ToUpper(trimmed),
		trimmed,
	} {
		if c, ok := t.canonical[candidate]; ok {
			return c
		}
	}
	return Unknown
}

// NormalizeAction resolves free text to one of the five canonical actions.
// Exact (case-insensitive) tag match wins; otherwise the keyword groups are
// scanned in priority order. Unrecognized input yields Inspection so that a
// phrase the vocabulary has never seen cannot stall the pipeline.
func (t *Table) NormalizeAction(raw string) Action {
	s := collapse(strings.ToLower(raw))
	if s == "" {
		return Inspection
	}
	for _, a := range Actions {
		if s == strings.ToLower(string(a)) {
			return a
		}
	}
	for _, group := range actionKeywords {
		for _, kw := range group.Keywords {
			if strings.Contains(s, kw) {
				return group.Action
			}
		}
	}
	return Inspection
}

// collapse trims and folds runs of whitespace into single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// containsWholeWord reports whether sub occurs in s bounded by non-alphanumeric
// runes (or the string edges) on both sides.
func containsWholeWord(s, sub string) bool {
	if sub == "" {
		return false
	}
	for off := 0; ; {
		i := strings.Index(s[off:], sub)
		if i < 0 {
			return false
		}
		start := off + i
		end := start + len(sub)
		if boundaryBefore(s, start) && boundaryAfter(s, end) {
			return true
		}
		off = start + 1
	}
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
