package extract

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ppiankov/claimcheck/internal/logger"
	"github.com/ppiankov/claimcheck/internal/model"
	"github.com/ppiankov/claimcheck/internal/nlp"
	"github.com/ppiankov/claimcheck/internal/util"
	"go.uber.org/zap"
)

// DefaultEntityTypes is the entity allow-list used by the entity filter
var DefaultEntityTypes = []string{
	nlp.LabelPerson, nlp.LabelOrg, nlp.LabelGPE, nlp.LabelNORP, nlp.LabelLoc,
	nlp.LabelDate, nlp.LabelTime, nlp.LabelEvent, nlp.LabelLaw, nlp.LabelProduct,
	nlp.LabelMoney, nlp.LabelPercent, nlp.LabelCardinal, nlp.LabelOrdinal,
	nlp.LabelFac, nlp.LabelWorkOfArt, nlp.LabelLanguage,
}

var hypotheticalWords = []string{"would", "could", "should", "might"}

// ClaimDetector decides whether a text asserts a checkable fact
type ClaimDetector interface {
	IsClaim(ctx context.Context, text string) (bool, error)
}

// Options tunes claim extraction
type Options struct {
	MinScore    float64  // Floor for the dynamic cutoff (normalized scale)
	Quantile    float64  // Quantile of normalized scores used as cutoff
	EntityTypes []string // Entity labels counted by the entity filter
	MinEntities int
	RequireVerb bool
	Dedupe      bool

	BandWidth           float64 // Keep candidates within this distance of the top score
	HypotheticalPenalty float64
	RepeatEntityBase    float64 // Multiplier per repeated entity occurrence
	RepeatKeyphraseBase float64 // Multiplier per repeated keyphrase anchor
}

// DefaultOptions returns the default extraction options
func DefaultOptions() Options {
	return Options{
		MinScore:            0.05,
		Quantile:            0.7,
		EntityTypes:         DefaultEntityTypes,
		MinEntities:         1,
		RequireVerb:         true,
		Dedupe:              true,
		BandWidth:           0.05,
		HypotheticalPenalty: 0.5,
		RepeatEntityBase:    0.8,
		RepeatKeyphraseBase: 0.85,
	}
}

// OptionsFromConfig builds extraction options from the extraction config section
func OptionsFromConfig(cfg model.ExtractionConfig) Options {
	opts := DefaultOptions()
	opts.MinScore = cfg.MinScore
	opts.Quantile = cfg.Quantile
	opts.MinEntities = cfg.MinEntities
	opts.RequireVerb = cfg.RequireVerb
	opts.Dedupe = cfg.Dedupe
	if cfg.BandWidth > 0 {
		opts.BandWidth = cfg.BandWidth
	}
	if cfg.HypotheticalPenalty > 0 {
		opts.HypotheticalPenalty = cfg.HypotheticalPenalty
	}
	if cfg.RepeatEntityBase > 0 {
		opts.RepeatEntityBase = cfg.RepeatEntityBase
	}
	if cfg.RepeatKeyphraseBase > 0 {
		opts.RepeatKeyphraseBase = cfg.RepeatKeyphraseBase
	}
	return opts
}

// ClaimExtractor selects the most check-worthy sentences of a text
type ClaimExtractor struct {
	analyzer nlp.Analyzer
	detector ClaimDetector
}

// NewClaimExtractor creates a new claim extractor.
// A nil detector disables the final claim gate.
func NewClaimExtractor(analyzer nlp.Analyzer, detector ClaimDetector) *ClaimExtractor {
	return &ClaimExtractor{
		analyzer: analyzer,
		detector: detector,
	}
}

type candidate struct {
	claim model.Claim
	index int
}

// Extract ranks the sentences of text by keyphrase weight and returns the
// best-scoring claims, highest normalized score first
func (e *ClaimExtractor) Extract(ctx context.Context, text string, opts Options) ([]model.Claim, error) {
	log := logger.FromContext(ctx)

	doc, err := e.analyzer.Analyze(text)
	if err != nil {
		return nil, fmt.Errorf("analyze text: %w", err)
	}
	if len(doc.Sentences) == 0 {
		return []model.Claim{}, nil
	}

	// Raw scores keyed by sentence position
	raw := make(map[int]float64, len(doc.Sentences))
	for _, kp := range doc.Keyphrases {
		for _, chunk := range kp.Chunks {
			raw[chunk.Sentence] += kp.Rank
		}
	}

	allowed := make(map[string]bool, len(opts.EntityTypes))
	for _, label := range opts.EntityTypes {
		allowed[label] = true
	}

	var candidates []candidate
	for _, sent := range doc.Sentences {
		if strings.TrimSpace(sent.Text) == "" {
			continue
		}

		var entities []nlp.Entity
		for _, ent := range sent.Entities {
			if allowed[ent.Label] {
				entities = append(entities, ent)
			}
		}
		if len(entities) < opts.MinEntities {
			continue
		}
		if opts.RequireVerb && !sent.HasVerb() {
			continue
		}

		score := raw[sent.Index] *
			hypotheticalFactor(sent.Text, opts.HypotheticalPenalty) *
			repeatFactor(entityTexts(entities), opts.RepeatEntityBase) *
			repeatFactor(anchoredKeyphrases(doc.Keyphrases, sent.Index), opts.RepeatKeyphraseBase)

		candidates = append(candidates, candidate{
			claim: model.Claim{Text: util.NormalizeSpace(sent.Text), Score: score},
			index: sent.Index,
		})
	}

	if len(candidates) == 0 {
		log.Debug("no sentence passed the entity and verb filters", zap.Int("sentences", len(doc.Sentences)))
		return []model.Claim{}, nil
	}

	normalize(candidates)

	norms := make([]float64, len(candidates))
	for i, c := range candidates {
		norms[i] = c.claim.NormScore
	}
	cutoff := math.Max(opts.MinScore, quantile(norms, opts.Quantile))

	var selected []candidate
	for _, c := range candidates {
		if c.claim.NormScore >= cutoff {
			selected = append(selected, c)
		}
	}
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].claim.NormScore > selected[j].claim.NormScore
	})
	selected = topBand(selected, opts.BandWidth)

	if opts.Dedupe {
		selected = dedupe(selected)
	}

	claims := make([]model.Claim, 0, len(selected))
	for _, c := range selected {
		if e.detector != nil {
			ok, err := e.detector.IsClaim(ctx, c.claim.Text)
			if err != nil {
				return nil, fmt.Errorf("classify candidate: %w", err)
			}
			if !ok {
				log.Debug("dropping candidate classified as non-claim", zap.Int("sentence", c.index))
				continue
			}
		}
		claims = append(claims, c.claim)
	}

	log.Debug("extracted claims",
		zap.Int("sentences", len(doc.Sentences)),
		zap.Int("candidates", len(candidates)),
		zap.Float64("cutoff", cutoff),
		zap.Int("claims", len(claims)),
	)

	return claims, nil
}

// hypotheticalFactor penalizes conditional or speculative sentences
func hypotheticalFactor(text string, penalty float64) float64 {
	lower := strings.ToLower(strings.TrimSpace(text))
	if strings.HasPrefix(lower, "if ") || strings.HasPrefix(lower, "otherwise") {
		return penalty
	}
	for _, w := range hypotheticalWords {
		if strings.Contains(lower, w) {
			return penalty
		}
	}
	return 1
}

// repeatFactor multiplies base^(n-1) for every item occurring n times
func repeatFactor(items []string, base float64) float64 {
	counts := make(map[string]int, len(items))
	for _, item := range items {
		counts[item]++
	}
	factor := 1.0
	for _, n := range counts {
		if n > 1 {
			factor *= math.Pow(base, float64(n-1))
		}
	}
	return factor
}

func entityTexts(entities []nlp.Entity) []string {
	texts := make([]string, len(entities))
	for i, ent := range entities {
		texts[i] = strings.ToLower(ent.Text)
	}
	return texts
}

// anchoredKeyphrases lists one keyphrase text per chunk anchored in the sentence
func anchoredKeyphrases(phrases []nlp.Keyphrase, sentence int) []string {
	var texts []string
	for _, kp := range phrases {
		for _, chunk := range kp.Chunks {
			if chunk.Sentence == sentence {
				texts = append(texts, strings.ToLower(kp.Text))
			}
		}
	}
	return texts
}

// normalize divides every score by the maximum score; a zero maximum counts as 1
func normalize(candidates []candidate) {
	maxScore := 0.0
	for _, c := range candidates {
		maxScore = math.Max(maxScore, c.claim.Score)
	}
	if maxScore == 0 {
		maxScore = 1
	}
	for i := range candidates {
		candidates[i].claim.NormScore = candidates[i].claim.Score / maxScore
	}
}

// quantile returns the q-th quantile of values with linear interpolation
// between closest ranks
func quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	q = math.Min(math.Max(q, 0), 1)
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

// topBand keeps candidates within width of the first (best) one
func topBand(sorted []candidate, width float64) []candidate {
	if len(sorted) == 0 {
		return sorted
	}
	top := sorted[0].claim.NormScore
	band := make([]candidate, 0, len(sorted))
	for _, c := range sorted {
		if top-c.claim.NormScore <= width {
			band = append(band, c)
		}
	}
	return band
}

// dedupe drops candidates whose lower-cased, whitespace-collapsed text was already seen
func dedupe(candidates []candidate) []candidate {
	seen := make(map[string]bool)
	var unique []candidate

	for _, c := range candidates {
		key := util.NormalizeSpace(strings.ToLower(c.claim.Text))
		if !seen[key] {
			seen[key] = true
			unique = append(unique, c)
		}
	}

	return unique
}
