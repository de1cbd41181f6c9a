package model

// VerdictCategory is the final categorical judgment for a claim
type VerdictCategory string

const (
	VerdictLikelyFalse   VerdictCategory = "Likely False"
	VerdictLikelyTrue    VerdictCategory = "Likely True"
	VerdictPossiblyTrue  VerdictCategory = "Possibly True"
	VerdictPossiblyFalse VerdictCategory = "Possibly False"
	VerdictUnclear       VerdictCategory = "Unclear"

	// VerdictNotAClaim is reported by the orchestrator when the post makes no
	// checkable claim. The aggregator never produces it.
	VerdictNotAClaim VerdictCategory = "NOT A CLAIM"
)

// Verdict is the aggregated judgment over a batch of evidence records
type Verdict struct {
	Category     VerdictCategory  `json:"verdict"`
	Confidence   float64          `json:"confidence"` // Rounded to 3 places, in [0, 1]
	SupportScore float64          `json:"support_score"`
	RefuteScore  float64          `json:"refute_score"`
	SupportCount int              `json:"support_count"`
	RefuteCount  int              `json:"refute_count"`
	NeutralCount int              `json:"neutral_count"`
	Support      []EvidenceRecord `json:"support"` // At most the reporting limit, in received order
	Refute       []EvidenceRecord `json:"refute"`
	Neutral      []EvidenceRecord `json:"neutral"`
}
