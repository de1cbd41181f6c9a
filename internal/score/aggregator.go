package score

import (
	"math"
	"strings"

	"github.com/ppiankov/claimcheck/internal/model"
)

// Bucket is the aggregation partition an entailment label falls into
type Bucket int

const (
	BucketNeutral Bucket = iota
	BucketSupport
	BucketRefute
)

var bucketByLabel = map[string]Bucket{
	"entailment":    BucketSupport,
	"entails":       BucketSupport,
	"entailed":      BucketSupport,
	"support":       BucketSupport,
	"supports":      BucketSupport,
	"supported":     BucketSupport,
	"contradiction": BucketRefute,
	"contradicts":   BucketRefute,
	"contradict":    BucketRefute,
	"refute":        BucketRefute,
	"refutes":       BucketRefute,
	"refuted":       BucketRefute,
}

func (b Bucket) String() string {
	switch b {
	case BucketSupport:
		return "support"
	case BucketRefute:
		return "refute"
	default:
		return "neutral"
	}
}

// BucketOf maps an entailment label to its partition, case-insensitively
func BucketOf(label string) Bucket {
	return bucketByLabel[strings.ToLower(strings.TrimSpace(label))]
}

// Policy holds the verdict thresholds.
// Strong rules need StrongMinCount records in one bucket; weak rules need one
// record and an empty opposite bucket.
type Policy struct {
	StrongMinCount    int
	StrongThreshold   float64
	StrongBase        float64
	StrongCap         float64
	WeakThreshold     float64
	WeakBase          float64
	WeakCap           float64
	UnclearConfidence float64
	ReportLimit       int // Records kept per partition in the verdict
}

// DefaultPolicy returns the default verdict thresholds
func DefaultPolicy() Policy {
	return Policy{
		StrongMinCount:    2,
		StrongThreshold:   0.55,
		StrongBase:        0.5,
		StrongCap:         0.95,
		WeakThreshold:     0.6,
		WeakBase:          0.45,
		WeakCap:           0.9,
		UnclearConfidence: 0.4,
		ReportLimit:       5,
	}
}

// PolicyFromConfig builds a policy from the verdict config section.
// Zero values fall back to the defaults.
func PolicyFromConfig(cfg model.VerdictConfig) Policy {
	p := DefaultPolicy()
	if cfg.StrongMinCount > 0 {
		p.StrongMinCount = cfg.StrongMinCount
	}
	if cfg.StrongThreshold > 0 {
		p.StrongThreshold = cfg.StrongThreshold
	}
	if cfg.StrongBase > 0 {
		p.StrongBase = cfg.StrongBase
	}
	if cfg.StrongCap > 0 {
		p.StrongCap = cfg.StrongCap
	}
	if cfg.WeakThreshold > 0 {
		p.WeakThreshold = cfg.WeakThreshold
	}
	if cfg.WeakBase > 0 {
		p.WeakBase = cfg.WeakBase
	}
	if cfg.WeakCap > 0 {
		p.WeakCap = cfg.WeakCap
	}
	if cfg.UnclearConfidence > 0 {
		p.UnclearConfidence = cfg.UnclearConfidence
	}
	if cfg.ReportLimit > 0 {
		p.ReportLimit = cfg.ReportLimit
	}
	return p
}

// Aggregator turns a batch of evidence records into a verdict
type Aggregator struct {
	policy Policy
}

// NewAggregator creates a new aggregator
func NewAggregator(policy Policy) *Aggregator {
	return &Aggregator{policy: policy}
}

// Aggregate partitions evidence by label and applies the verdict rules in
// priority order. It is pure and never fails; no evidence yields Unclear.
func (a *Aggregator) Aggregate(records []model.EvidenceRecord) model.Verdict {
	var support, refute, neutral []model.EvidenceRecord
	for _, r := range records {
		switch BucketOf(r.Label) {
		case BucketSupport:
			support = append(support, r)
		case BucketRefute:
			refute = append(refute, r)
		default:
			neutral = append(neutral, r)
		}
	}

	supportScore := meanScore(support)
	refuteScore := meanScore(refute)
	category, confidence := a.decide(len(support), supportScore, len(refute), refuteScore)

	return model.Verdict{
		Category:     category,
		Confidence:   math.Round(confidence*1000) / 1000,
		SupportScore: supportScore,
		RefuteScore:  refuteScore,
		SupportCount: len(support),
		RefuteCount:  len(refute),
		NeutralCount: len(neutral),
		Support:      limit(support, a.policy.ReportLimit),
		Refute:       limit(refute, a.policy.ReportLimit),
		Neutral:      limit(neutral, a.policy.ReportLimit),
	}
}

// decide applies the verdict rules; the first matching rule wins
func (a *Aggregator) decide(nSupport int, supportScore float64, nRefute int, refuteScore float64) (model.VerdictCategory, float64) {
	p := a.policy

	switch {
	case nRefute >= p.StrongMinCount && refuteScore >= p.StrongThreshold:
		return model.VerdictLikelyFalse, math.Min(p.StrongCap, p.StrongBase+refuteScore)
	case nSupport >= p.StrongMinCount && supportScore >= p.StrongThreshold:
		return model.VerdictLikelyTrue, math.Min(p.StrongCap, p.StrongBase+supportScore)
	case nSupport >= 1 && supportScore >= p.WeakThreshold && nRefute == 0:
		return model.VerdictPossiblyTrue, math.Min(p.WeakCap, p.WeakBase+supportScore)
	case nRefute >= 1 && refuteScore >= p.WeakThreshold && nSupport == 0:
		return model.VerdictPossiblyFalse, math.Min(p.WeakCap, p.WeakBase+refuteScore)
	default:
		return model.VerdictUnclear, p.UnclearConfidence
	}
}

func meanScore(records []model.EvidenceRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	var sum float64
	for _, r := range records {
		sum += r.Score
	}
	return sum / float64(len(records))
}

// limit copies at most n records, preserving order
func limit(records []model.EvidenceRecord, n int) []model.EvidenceRecord {
	if n >= 0 && len(records) > n {
		records = records[:n]
	}
	out := make([]model.EvidenceRecord, len(records))
	copy(out, records)
	return out
}
