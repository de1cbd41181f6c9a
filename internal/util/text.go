package util

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var (
	urlPattern       = regexp.MustCompile(`http\S+`)
	mentionPattern   = regexp.MustCompile(`[@#]\w+`)
	sentenceBoundary = regexp.MustCompile(`[.!?]\s+`)
)

// NormalizeSpace collapses runs of whitespace into single spaces and trims the ends
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// CleanText strips URLs, @mentions and #hashtags from post text. Compatibility
// characters (full-width letters, ligatures) are folded with NFKC first.
func CleanText(s string) string {
	s = norm.NFKC.String(s)
	s = urlPattern.ReplaceAllString(s, "")
	s = mentionPattern.ReplaceAllString(s, "")
	return NormalizeSpace(s)
}

// Sentences splits text after sentence-final punctuation followed by
// whitespace and returns at most limit non-empty sentences (all of them when
// limit <= 0). Line breaks without such punctuation do not split.
func Sentences(text string, limit int) []string {
	text = strings.TrimSpace(text)

	var out []string
	add := func(part string) bool {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
		return limit > 0 && len(out) == limit
	}

	start := 0
	for _, m := range sentenceBoundary.FindAllStringIndex(text, -1) {
		// m[0] is the punctuation mark, which stays with its sentence
		if add(text[start : m[0]+1]) {
			return out
		}
		start = m[1]
	}
	add(text[start:])
	return out
}

// Trim shortens s to at most max runes, marking the cut with "..."
func Trim(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// Truncate shortens s to at most max runes without a marker
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
