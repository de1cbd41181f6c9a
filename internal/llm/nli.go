package llm

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ppiankov/claimcheck/internal/cache"
	"github.com/ppiankov/claimcheck/internal/logger"
	"github.com/ppiankov/claimcheck/internal/metrics"
	"github.com/ppiankov/claimcheck/internal/model"
	"go.uber.org/zap"
)

const nliSystemPrompt = `You are a natural language inference model.
Given a PREMISE (evidence text) and a HYPOTHESIS (a claim), estimate the probability that the premise
entails the hypothesis, contradicts it, or is neutral toward it. The three probabilities must sum to 1.
Respond with JSON only: {"entailment": <number>, "neutral": <number>, "contradiction": <number>}`

const nliCacheTTL = 24 * time.Hour

// nliLabels fixes the argmax order so ties resolve deterministically
var nliLabels = []model.EntailmentLabel{
	model.LabelEntailment,
	model.LabelNeutral,
	model.LabelContradiction,
}

// EntailmentScorer judges whether evidence entails or contradicts a claim
type EntailmentScorer struct {
	provider Provider
	cache    cache.Cache
}

// NewEntailmentScorer creates a scorer. A nil cache disables caching.
func NewEntailmentScorer(provider Provider, c cache.Cache) *EntailmentScorer {
	if c == nil {
		c = cache.NopCache{}
	}
	return &EntailmentScorer{provider: provider, cache: c}
}

// Score runs NLI with premise = evidence and hypothesis = claim
func (s *EntailmentScorer) Score(ctx context.Context, premise, hypothesis string) (model.Entailment, error) {
	key := cache.Key("nli", s.provider.Name(), premise, hypothesis)
	var cached map[string]float64
	if cache.GetJSON(s.cache, key, &cached) && len(cached) > 0 {
		return entailmentFromScores(cached), nil
	}

	resp, err := s.provider.Complete(ctx, CompletionRequest{
		System:    nliSystemPrompt,
		Prompt:    fmt.Sprintf("PREMISE:\n%s\n\nHYPOTHESIS:\n%s", premise, hypothesis),
		MaxTokens: 80,
		JSON:      true,
	})
	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(s.provider.Name(), "nli", "error").Inc()
		return model.Entailment{}, fmt.Errorf("entailment: %w", err)
	}

	var raw map[string]float64
	if err := decodeObject(resp.Text, &raw); err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(s.provider.Name(), "nli", "invalid").Inc()
		return model.Entailment{}, fmt.Errorf("entailment: %w", err)
	}
	metrics.LLMRequestsTotal.WithLabelValues(s.provider.Name(), "nli", "ok").Inc()

	scores := normalizeScores(raw)
	if err := cache.SetJSON(s.cache, key, scores, nliCacheTTL); err != nil {
		logger.FromContext(ctx).Debug("nli cache write failed", zap.Error(err))
	}
	return entailmentFromScores(scores), nil
}

// normalizeScores lower-cases labels, keeps the three NLI labels and rescales
// them to sum to 1, so percentages and raw weights work too. Negative or
// non-finite values are dropped. An all-zero reply becomes fully neutral.
func normalizeScores(raw map[string]float64) map[string]float64 {
	scores := make(map[string]float64, len(nliLabels))
	var total float64
	for label, p := range raw {
		if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(label))
		for _, l := range nliLabels {
			if name == string(l) {
				scores[name] += p
				total += p
			}
		}
	}

	for _, l := range nliLabels {
		if total > 0 {
			scores[string(l)] = clamp01(scores[string(l)] / total)
		} else {
			scores[string(l)] = 0
		}
	}
	if total == 0 {
		scores[string(model.LabelNeutral)] = 1
	}
	return scores
}

func entailmentFromScores(scores map[string]float64) model.Entailment {
	best := nliLabels[0]
	for _, l := range nliLabels[1:] {
		if scores[string(l)] > scores[string(best)] {
			best = l
		}
	}
	return model.Entailment{Label: best, Scores: scores}
}
