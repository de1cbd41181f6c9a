package model

// Claim is a check-worthy sentence selected by the claim extractor
type Claim struct {
	Text      string  `json:"text"`                 // Whitespace-normalized sentence text
	Score     float64 `json:"score"`                // Keyphrase rank sum after penalties
	NormScore float64 `json:"norm_score,omitempty"` // Score divided by the document maximum (ranking key)
}

// Sentiment is the polarity of a post
type Sentiment struct {
	Label      SentimentLabel `json:"label"`
	Confidence float64        `json:"confidence"` // |compound| rounded to 2 places
}

// SentimentLabel classifies post polarity
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "Positive"
	SentimentNegative SentimentLabel = "Negative"
	SentimentNeutral  SentimentLabel = "Neutral"
)

// SentimentFromCompound maps a compound polarity score in [-1, 1] to a Sentiment
func SentimentFromCompound(compound float64) Sentiment {
	label := SentimentNeutral
	switch {
	case compound >= 0.05:
		label = SentimentPositive
	case compound <= -0.05:
		label = SentimentNegative
	}

	confidence := compound
	if confidence < 0 {
		confidence = -confidence
	}

	return Sentiment{
		Label:      label,
		Confidence: roundTo(confidence, 2),
	}
}
