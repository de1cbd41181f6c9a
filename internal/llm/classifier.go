package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/ppiankov/claimcheck/internal/cache"
	"github.com/ppiankov/claimcheck/internal/logger"
	"github.com/ppiankov/claimcheck/internal/metrics"
	"go.uber.org/zap"
)

const claimSystemPrompt = `You are a check-worthiness classifier for social media posts and sentences.
A text is a claim when it asserts something factual that could be verified against public sources
(statistics, events, quotes, scientific or historical statements). Opinions, questions, jokes,
greetings and personal feelings are not claims.
Respond with JSON only: {"claim_probability": <number between 0 and 1>}`

// DefaultClaimThreshold is the probability at or above which a text counts as a claim
const DefaultClaimThreshold = 0.5

const classifierCacheTTL = 24 * time.Hour

// ClaimClassifier decides whether a text is a check-worthy claim
type ClaimClassifier struct {
	provider  Provider
	threshold float64
	cache     cache.Cache
}

// NewClaimClassifier creates a classifier. A nil cache disables caching and a
// threshold <= 0 uses DefaultClaimThreshold.
func NewClaimClassifier(provider Provider, threshold float64, c cache.Cache) *ClaimClassifier {
	if threshold <= 0 {
		threshold = DefaultClaimThreshold
	}
	if c == nil {
		c = cache.NopCache{}
	}
	return &ClaimClassifier{provider: provider, threshold: threshold, cache: c}
}

type claimReply struct {
	ClaimProbability float64 `json:"claim_probability"`
}

// Probability returns the model's probability that text is a claim
func (c *ClaimClassifier) Probability(ctx context.Context, text string) (float64, error) {
	key := cache.Key("claim", c.provider.Name(), text)
	var cached claimReply
	if cache.GetJSON(c.cache, key, &cached) {
		return cached.ClaimProbability, nil
	}

	resp, err := c.provider.Complete(ctx, CompletionRequest{
		System:    claimSystemPrompt,
		Prompt:    "Text:\n" + text,
		MaxTokens: 50,
		JSON:      true,
	})
	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(c.provider.Name(), "claim", "error").Inc()
		return 0, fmt.Errorf("claim detection: %w", err)
	}

	var reply claimReply
	if err := decodeObject(resp.Text, &reply); err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(c.provider.Name(), "claim", "invalid").Inc()
		return 0, fmt.Errorf("claim detection: %w", err)
	}
	metrics.LLMRequestsTotal.WithLabelValues(c.provider.Name(), "claim", "ok").Inc()

	reply.ClaimProbability = clamp01(reply.ClaimProbability)
	if err := cache.SetJSON(c.cache, key, reply, classifierCacheTTL); err != nil {
		logger.FromContext(ctx).Debug("claim cache write failed", zap.Error(err))
	}
	return reply.ClaimProbability, nil
}

// IsClaim reports whether the claim probability reaches the threshold
func (c *ClaimClassifier) IsClaim(ctx context.Context, text string) (bool, error) {
	p, err := c.Probability(ctx, text)
	if err != nil {
		return false, err
	}
	return p >= c.threshold, nil
}
