package llm

import (
	"context"
	"fmt"

	"github.com/ppiankov/claimcheck/internal/metrics"
	"github.com/ppiankov/claimcheck/internal/model"
)

const sentimentSystemPrompt = `You are a sentiment analyzer for short social media posts.
Rate the overall polarity of the text as a compound score between -1 (most negative) and 1 (most positive),
with scores near 0 for neutral or mixed text.
Respond with JSON only: {"compound": <number between -1 and 1>}`

// SentimentAnalyzer scores post polarity
type SentimentAnalyzer struct {
	provider Provider
}

// NewSentimentAnalyzer creates a sentiment analyzer
func NewSentimentAnalyzer(provider Provider) *SentimentAnalyzer {
	return &SentimentAnalyzer{provider: provider}
}

type sentimentReply struct {
	Compound float64 `json:"compound"`
}

// Sentiment returns the label and confidence for text
func (a *SentimentAnalyzer) Sentiment(ctx context.Context, text string) (model.Sentiment, error) {
	resp, err := a.provider.Complete(ctx, CompletionRequest{
		System:    sentimentSystemPrompt,
		Prompt:    "Text:\n" + text,
		MaxTokens: 30,
		JSON:      true,
	})
	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(a.provider.Name(), "sentiment", "error").Inc()
		return model.Sentiment{}, fmt.Errorf("sentiment: %w", err)
	}

	var reply sentimentReply
	if err := decodeObject(resp.Text, &reply); err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(a.provider.Name(), "sentiment", "invalid").Inc()
		return model.Sentiment{}, fmt.Errorf("sentiment: %w", err)
	}
	metrics.LLMRequestsTotal.WithLabelValues(a.provider.Name(), "sentiment", "ok").Inc()

	compound := reply.Compound
	switch {
	case compound > 1:
		compound = 1
	case compound < -1:
		compound = -1
	}
	return model.SentimentFromCompound(compound), nil
}
