package extract

import (
	"strings"

	"github.com/ppiankov/claimcheck/internal/util"
)

// EvidenceExtractor builds the evidence passages judged against a claim
// from one search result
type EvidenceExtractor struct {
	maxSentences int
	maxChars     int
}

// NewEvidenceExtractor creates a new evidence extractor taking at most
// maxSentences page sentences and trimming each passage to maxChars
func NewEvidenceExtractor(maxSentences, maxChars int) *EvidenceExtractor {
	return &EvidenceExtractor{
		maxSentences: maxSentences,
		maxChars:     maxChars,
	}
}

// Extract returns the search snippet followed by the leading sentences of
// the page text, whitespace-normalized, non-empty and without duplicates
func (e *EvidenceExtractor) Extract(snippet, pageText string) []string {
	seen := make(map[string]bool)
	var passages []string

	add := func(text string) {
		text = util.NormalizeSpace(text)
		if text == "" {
			return
		}
		key := strings.ToLower(text)
		if seen[key] {
			return
		}
		seen[key] = true
		passages = append(passages, text)
	}

	add(snippet)
	if pageText != "" && e.maxSentences > 0 {
		for _, s := range util.Sentences(pageText, e.maxSentences) {
			add(s)
		}
	}

	return passages
}

// Clip trims a passage for reporting
func (e *EvidenceExtractor) Clip(passage string) string {
	return util.Trim(passage, e.maxChars)
}
