package model

import (
	"encoding/json"
	"time"
)

// Post is a social-media post fetched for checking
type Post struct {
	ID        string          `json:"id,omitempty"`
	CreatedAt string          `json:"created_at,omitempty"` // As returned by the post API, e.g. "Sun Jul 20 18:05:44 +0000 2025"
	Text      string          `json:"text"`
	Lang      string          `json:"lang,omitempty"`
	Likes     int             `json:"likes"`
	Retweets  int             `json:"retweets"`
	Bookmarks int             `json:"bookmarks"`
	Quotes    int             `json:"quotes"`
	Replies   int             `json:"replies"`
	Author    *Author         `json:"author,omitempty"`
	Media     json.RawMessage `json:"media,omitempty"`
}

// Author is the account that published a post
type Author struct {
	Name         string `json:"name,omitempty"`
	ScreenName   string `json:"screen_name,omitempty"`
	Image        string `json:"image,omitempty"`
	BlueVerified bool   `json:"blue_verified"`
}

// Report is the complete result of checking one post
type Report struct {
	Post
	Sentiment Sentiment  `json:"sentiment"`
	IsClaim   bool       `json:"is_claim"`
	FactCheck *FactCheck `json:"fact_check"`
}

// FactCheck is the verdict section of a report
type FactCheck struct {
	Claim             string           `json:"claim,omitempty"`
	Verdict           VerdictCategory  `json:"verdict"`
	Confidence        float64          `json:"confidence"`
	SearchedQueries   []string         `json:"searched_queries"`
	ResultsConsidered int              `json:"results_considered"`
	Support           []EvidenceRecord `json:"support"`
	Refute            []EvidenceRecord `json:"refute"`
	Neutral           []EvidenceRecord `json:"neutral"`
	Details           []EvidenceRecord `json:"details"` // Every judged record, unpartitioned
	TimestampUTC      time.Time        `json:"timestamp_utc"`
	Notes             string           `json:"notes,omitempty"`
}

// ReviewNote is attached to every automated verdict
const ReviewNote = "Automated verdict based on top web results and NLI; manual review recommended."

// NotAClaim returns the short-circuit fact check for posts without a checkable claim
func NotAClaim(now time.Time) *FactCheck {
	return &FactCheck{
		Verdict:         VerdictNotAClaim,
		SearchedQueries: []string{},
		Support:         []EvidenceRecord{},
		Refute:          []EvidenceRecord{},
		Neutral:         []EvidenceRecord{},
		Details:         []EvidenceRecord{},
		TimestampUTC:    now.UTC(),
	}
}
