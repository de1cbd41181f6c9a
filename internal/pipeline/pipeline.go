// Package pipeline orchestrates a fact check: post fetch, sentiment, claim
// detection and extraction, web search, evidence gathering, NLI and the
// final verdict.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/claimcheck/internal/extract"
	"github.com/ppiankov/claimcheck/internal/logger"
	"github.com/ppiankov/claimcheck/internal/metrics"
	"github.com/ppiankov/claimcheck/internal/model"
	"github.com/ppiankov/claimcheck/internal/score"
	"github.com/ppiankov/claimcheck/internal/source"
	"github.com/ppiankov/claimcheck/internal/util"
	"github.com/ppiankov/claimcheck/internal/worker"
	"go.uber.org/zap"
)

// PostSource loads a post by URL
type PostSource interface {
	FetchPost(ctx context.Context, postURL string) (*model.Post, error)
}

// SentimentScorer rates the polarity of a text
type SentimentScorer interface {
	Sentiment(ctx context.Context, text string) (model.Sentiment, error)
}

// Searcher runs a web search for a claim
type Searcher interface {
	Search(ctx context.Context, query string, num int) ([]model.SearchResult, error)
}

// PageSource returns the main text of a web page
type PageSource interface {
	PageText(ctx context.Context, rawURL string) (string, error)
}

// EntailmentScorer runs NLI on a premise/hypothesis pair
type EntailmentScorer interface {
	Score(ctx context.Context, premise, hypothesis string) (model.Entailment, error)
}

// Components are the capability providers a Pipeline is built from.
// Posts, Pages, Sentiment, Detector and Authority are optional.
type Components struct {
	Posts     PostSource
	Sentiment SentimentScorer
	Detector  extract.ClaimDetector
	Extractor *extract.ClaimExtractor
	Searcher  Searcher
	Pages     PageSource
	NLI       EntailmentScorer
	Authority *source.AuthorityClassifier
}

// Options tunes a Pipeline
type Options struct {
	Extraction           extract.Options
	Policy               score.Policy
	SearchResults        int // Results requested per claim
	EvidenceWorkers      int // Search results processed in parallel
	MaxEvidenceSentences int // Page sentences judged per result, after the snippet
	MaxEvidenceChars     int // Evidence text kept per record
}

// DefaultOptions returns the default pipeline options
func DefaultOptions() Options {
	opts := Options{
		Extraction:           extract.DefaultOptions(),
		Policy:               score.DefaultPolicy(),
		SearchResults:        6,
		EvidenceWorkers:      6,
		MaxEvidenceSentences: 3,
		MaxEvidenceChars:     400,
	}
	opts.Extraction.MinScore = 0.03
	return opts
}

// OptionsFromConfig builds pipeline options from config
func OptionsFromConfig(cfg *model.Config) Options {
	opts := DefaultOptions()
	opts.Extraction = extract.OptionsFromConfig(cfg.Extraction)
	opts.Policy = score.PolicyFromConfig(cfg.Verdict)
	if cfg.Search.NumResults > 0 {
		opts.SearchResults = cfg.Search.NumResults
	}
	if cfg.Concurrency.EvidenceWorkers > 0 {
		opts.EvidenceWorkers = cfg.Concurrency.EvidenceWorkers
	}
	if cfg.Extraction.MaxEvidenceSentences > 0 {
		opts.MaxEvidenceSentences = cfg.Extraction.MaxEvidenceSentences
	}
	if cfg.Extraction.MaxEvidenceChars > 0 {
		opts.MaxEvidenceChars = cfg.Extraction.MaxEvidenceChars
	}
	return opts
}

// Pipeline orchestrates the complete fact-check process
type Pipeline struct {
	c          Components
	opts       Options
	evidence   *extract.EvidenceExtractor
	aggregator *score.Aggregator
	now        func() time.Time
}

// New creates a pipeline. Extractor, Searcher and NLI are required.
func New(c Components, opts Options) (*Pipeline, error) {
	if c.Extractor == nil || c.Searcher == nil || c.NLI == nil {
		return nil, fmt.Errorf("pipeline requires a claim extractor, a searcher and an NLI scorer")
	}
	return &Pipeline{
		c:          c,
		opts:       opts,
		evidence:   extract.NewEvidenceExtractor(opts.MaxEvidenceSentences, opts.MaxEvidenceChars),
		aggregator: score.NewAggregator(opts.Policy),
		now:        time.Now,
	}, nil
}

// Check fact-checks the post at postURL
func (p *Pipeline) Check(ctx context.Context, postURL string) (*model.Report, error) {
	if p.c.Posts == nil {
		return nil, fmt.Errorf("post fetching is not configured")
	}

	start := time.Now()
	post, err := p.c.Posts.FetchPost(ctx, postURL)
	metrics.StageDuration.WithLabelValues("post_fetch").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("fetch post: %w", err)
	}

	return p.check(ctx, *post)
}

// CheckText fact-checks raw text without fetching a post
func (p *Pipeline) CheckText(ctx context.Context, text string) (*model.Report, error) {
	return p.check(ctx, model.Post{Text: text})
}

// ExtractClaims runs only the claim extractor on cleaned text
func (p *Pipeline) ExtractClaims(ctx context.Context, text string) ([]model.Claim, error) {
	return p.c.Extractor.Extract(ctx, util.CleanText(text), p.opts.Extraction)
}

func (p *Pipeline) check(ctx context.Context, post model.Post) (*model.Report, error) {
	log := logger.FromContext(ctx).With(zap.String("check_id", uuid.NewString()))
	ctx = logger.ContextWithLogger(ctx, log)
	report := &model.Report{Post: post}

	report.Sentiment = p.sentiment(ctx, post.Text)

	isClaim, err := p.isClaim(ctx, post.Text)
	if err != nil {
		return nil, err
	}
	report.IsClaim = isClaim
	if !isClaim {
		report.FactCheck = model.NotAClaim(p.now())
		metrics.ChecksTotal.WithLabelValues(string(model.VerdictNotAClaim)).Inc()
		log.Info("not a claim", zap.String("post_id", post.ID))
		return report, nil
	}

	start := time.Now()
	claims, err := p.ExtractClaims(ctx, post.Text)
	metrics.StageDuration.WithLabelValues("extract").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("extract claims: %w", err)
	}
	metrics.ClaimsExtractedTotal.Add(float64(len(claims)))
	log.Debug("claims extracted", zap.Int("count", len(claims)))

	queries := make([]string, 0, len(claims))
	records := []model.EvidenceRecord{}
	for _, claim := range claims {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		queries = append(queries, claim.Text)
		records = append(records, p.gatherEvidence(ctx, claim.Text)...)
	}
	// Evidence from a cancelled run is partial
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if p.c.Authority != nil {
		p.c.Authority.Annotate(records)
	}
	for _, r := range records {
		metrics.EvidenceRecordsTotal.WithLabelValues(score.BucketOf(r.Label).String()).Inc()
	}

	verdict := p.aggregator.Aggregate(records)
	metrics.ChecksTotal.WithLabelValues(string(verdict.Category)).Inc()
	log.Info("fact check complete",
		zap.String("post_id", post.ID),
		zap.String("verdict", string(verdict.Category)),
		zap.Float64("confidence", verdict.Confidence),
		zap.Int("claims", len(claims)),
		zap.Int("records", len(records)))

	report.FactCheck = &model.FactCheck{
		Claim:             post.Text,
		Verdict:           verdict.Category,
		Confidence:        verdict.Confidence,
		SearchedQueries:   queries,
		ResultsConsidered: len(records),
		Support:           verdict.Support,
		Refute:            verdict.Refute,
		Neutral:           verdict.Neutral,
		Details:           records,
		TimestampUTC:      p.now().UTC(),
		Notes:             model.ReviewNote,
	}
	return report, nil
}

// sentiment degrades to neutral when the scorer is missing or fails
func (p *Pipeline) sentiment(ctx context.Context, text string) model.Sentiment {
	if p.c.Sentiment == nil {
		return model.SentimentFromCompound(0)
	}
	start := time.Now()
	s, err := p.c.Sentiment.Sentiment(ctx, text)
	metrics.StageDuration.WithLabelValues("sentiment").Observe(time.Since(start).Seconds())
	if err != nil {
		logger.FromContext(ctx).Warn("sentiment analysis failed", zap.Error(err))
		return model.SentimentFromCompound(0)
	}
	return s
}

func (p *Pipeline) isClaim(ctx context.Context, text string) (bool, error) {
	if p.c.Detector == nil {
		return true, nil
	}
	start := time.Now()
	ok, err := p.c.Detector.IsClaim(ctx, text)
	metrics.StageDuration.WithLabelValues("detect").Observe(time.Since(start).Seconds())
	if err != nil {
		return false, fmt.Errorf("detect claim: %w", err)
	}
	return ok, nil
}

type evidenceResult struct {
	record *model.EvidenceRecord
}

func (r evidenceResult) GetError() error { return nil }

// gatherEvidence searches for a claim and judges every result concurrently.
// Records come back in search-result order.
func (p *Pipeline) gatherEvidence(ctx context.Context, claim string) []model.EvidenceRecord {
	log := logger.FromContext(ctx)

	start := time.Now()
	results, err := p.c.Searcher.Search(ctx, claim, p.opts.SearchResults)
	metrics.StageDuration.WithLabelValues("search").Observe(time.Since(start).Seconds())
	if err != nil {
		log.Warn("search failed", zap.String("claim", claim), zap.Error(err))
		return nil
	}

	start = time.Now()
	pool := worker.NewPool(ctx, p.opts.EvidenceWorkers)
	pool.Start()
	for _, result := range results {
		result := result
		pool.Submit(worker.JobFunc(func(ctx context.Context) worker.Result {
			return evidenceResult{record: p.bestRecord(ctx, claim, result)}
		}))
	}

	var records []model.EvidenceRecord
	for _, res := range pool.Wait() {
		if er, ok := res.(evidenceResult); ok && er.record != nil {
			records = append(records, *er.record)
		}
	}
	metrics.StageDuration.WithLabelValues("evidence").Observe(time.Since(start).Seconds())
	return records
}

// bestRecord judges the snippet and leading page sentences of one result and
// keeps the highest-scoring passage. The first passage wins ties.
func (p *Pipeline) bestRecord(ctx context.Context, claim string, result model.SearchResult) *model.EvidenceRecord {
	log := logger.FromContext(ctx)

	var pageText string
	if p.c.Pages != nil && result.Link != "" {
		text, err := p.c.Pages.PageText(ctx, result.Link)
		if err != nil {
			log.Debug("page text unavailable, using snippet only", zap.String("url", result.Link), zap.Error(err))
		} else {
			pageText = text
		}
	}

	var best *model.EvidenceRecord
	for _, passage := range p.evidence.Extract(result.Snippet, pageText) {
		ent, err := p.c.NLI.Score(ctx, passage, claim)
		if err != nil {
			log.Warn("entailment failed", zap.String("url", result.Link), zap.Error(err))
			continue
		}
		record := &model.EvidenceRecord{
			URL:      result.Link,
			Title:    result.Title,
			Evidence: p.evidence.Clip(passage),
			Label:    string(ent.Label),
			Score:    ent.Score(),
			Scores:   ent.Scores,
		}
		if best == nil || record.Score > best.Score {
			best = record
		}
	}
	return best
}
