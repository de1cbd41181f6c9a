package model

import "math"

// EntailmentLabel is the winning label of an NLI judgment
type EntailmentLabel string

const (
	LabelEntailment    EntailmentLabel = "entailment"
	LabelNeutral       EntailmentLabel = "neutral"
	LabelContradiction EntailmentLabel = "contradiction"
)

// Entailment is the output of an NLI scorer for one premise/hypothesis pair
type Entailment struct {
	Label  EntailmentLabel    `json:"label"`
	Scores map[string]float64 `json:"scores"` // label -> probability
}

// Score returns the probability of the winning label
func (e Entailment) Score() float64 {
	return e.Scores[string(e.Label)]
}

// EvidenceRecord is one retrieved text judged against one claim
type EvidenceRecord struct {
	URL       string             `json:"url"`
	Title     string             `json:"title,omitempty"`
	Evidence  string             `json:"evidence"`            // Snippet or page sentence (max 400 chars)
	Label     string             `json:"label"`               // NLI label, matched case-insensitively
	Score     float64            `json:"score"`               // Probability of Label, not of the whole distribution
	Scores    map[string]float64 `json:"scores,omitempty"`    // Full label -> probability mapping
	Authority AuthorityTier      `json:"authority,omitempty"` // Source authority classification
}

// SearchResult is a single web search hit
type SearchResult struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Snippet     string `json:"snippet"`
	DisplayLink string `json:"displayLink,omitempty"`
}

// AuthorityTier represents the classification of source authority
type AuthorityTier int

const (
	TierUnknown   AuthorityTier = 0 // Not yet classified
	TierPrimary   AuthorityTier = 1 // Government, academic, official fact-checkers
	TierSecondary AuthorityTier = 2 // Encyclopedias, wire services, major publishers
	TierTertiary  AuthorityTier = 3 // Blogs, personal websites, everything else
)

func (t AuthorityTier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierTertiary:
		return "tertiary"
	default:
		return "unknown"
	}
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
