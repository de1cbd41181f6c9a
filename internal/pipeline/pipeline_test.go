package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ppiankov/claimcheck/internal/extract"
	"github.com/ppiankov/claimcheck/internal/model"
	"github.com/ppiankov/claimcheck/internal/nlp"
	"github.com/ppiankov/claimcheck/internal/source"
)

// wholeTextAnalyzer treats the input as one verb-bearing sentence with one
// place entity and one keyphrase
type wholeTextAnalyzer struct{}

func (wholeTextAnalyzer) Analyze(text string) (*nlp.Document, error) {
	if text == "" {
		return &nlp.Document{}, nil
	}
	return &nlp.Document{
		Text: text,
		Sentences: []nlp.Sentence{{
			Index:    0,
			Text:     text,
			Tokens:   []nlp.Token{{Text: "is", Tag: "VBZ"}},
			Entities: []nlp.Entity{{Text: "Paris", Label: "GPE"}},
		}},
		Keyphrases: []nlp.Keyphrase{{Text: "capital", Rank: 1, Chunks: []nlp.Chunk{{Sentence: 0, Text: "capital"}}}},
	}, nil
}

type stubDetector struct {
	isClaim bool
	err     error
}

func (d stubDetector) IsClaim(context.Context, string) (bool, error) { return d.isClaim, d.err }

type stubSentiment struct{}

func (stubSentiment) Sentiment(context.Context, string) (model.Sentiment, error) {
	return model.SentimentFromCompound(0.6), nil
}

type stubSearcher struct {
	mu      sync.Mutex
	results []model.SearchResult
	err     error
	queries []string
}

func (s *stubSearcher) Search(_ context.Context, query string, num int) ([]model.SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	return s.results, s.err
}

type stubPages map[string]string

func (p stubPages) PageText(_ context.Context, rawURL string) (string, error) {
	text, ok := p[rawURL]
	if !ok {
		return "", errors.New("unexpected status: 503 Service Unavailable")
	}
	return text, nil
}

type stubNLI struct {
	t      *testing.T
	judged map[string]model.Entailment
}

func (s stubNLI) Score(_ context.Context, premise, hypothesis string) (model.Entailment, error) {
	ent, ok := s.judged[premise]
	if !ok {
		s.t.Errorf("unexpected premise %q", premise)
		return model.Entailment{}, fmt.Errorf("no judgment for %q", premise)
	}
	return ent, nil
}

func entails(label model.EntailmentLabel, p float64) model.Entailment {
	rest := (1 - p) / 2
	scores := map[string]float64{"entailment": rest, "neutral": rest, "contradiction": rest}
	scores[string(label)] = p
	return model.Entailment{Label: label, Scores: scores}
}

type stubPosts struct{}

func (stubPosts) FetchPost(_ context.Context, postURL string) (*model.Post, error) {
	id, err := ExtractPostID(postURL)
	if err != nil {
		return nil, err
	}
	return &model.Post{ID: id, Text: "Paris is the capital of France. https://t.co/abc #geo"}, nil
}

var fixedNow = time.Date(2025, 7, 20, 18, 5, 44, 0, time.UTC)

func newTestPipeline(t *testing.T, c Components) *Pipeline {
	t.Helper()
	if c.Extractor == nil {
		c.Extractor = extract.NewClaimExtractor(wholeTextAnalyzer{}, nil)
	}
	p, err := New(c, DefaultOptions())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	p.now = func() time.Time { return fixedNow }
	return p
}

func TestPipeline_CheckText_NotAClaim(t *testing.T) {
	searcher := &stubSearcher{}
	p := newTestPipeline(t, Components{
		Detector: stubDetector{isClaim: false},
		Searcher: searcher,
		NLI:      stubNLI{t: t},
	})

	report, err := p.CheckText(context.Background(), "Good morning everyone!")
	if err != nil {
		t.Fatalf("CheckText() error: %v", err)
	}

	if report.IsClaim {
		t.Error("Expected IsClaim to be false")
	}
	if report.FactCheck == nil || report.FactCheck.Verdict != model.VerdictNotAClaim {
		t.Fatalf("Expected NOT A CLAIM, got %+v", report.FactCheck)
	}
	if len(report.FactCheck.Support)+len(report.FactCheck.Refute)+len(report.FactCheck.Neutral) != 0 {
		t.Error("Expected no evidence for a non-claim")
	}
	if len(searcher.queries) != 0 {
		t.Errorf("Expected no searches, got %v", searcher.queries)
	}
	if report.Sentiment.Label != model.SentimentNeutral {
		t.Errorf("Expected neutral sentiment without a scorer, got %s", report.Sentiment.Label)
	}
}

func TestPipeline_Check_BestRecordPerResult(t *testing.T) {
	searcher := &stubSearcher{results: []model.SearchResult{
		{Title: "WHO", Link: "https://who.int/a", Snippet: "sa"},
		{Title: "Blog", Link: "https://blog.example/b", Snippet: "sb"},
		{Title: "Empty", Link: "https://empty.example/c"},
	}}
	pages := stubPages{
		"https://who.int/a":       "pa1. pa2. pa3. pa4.",
		"https://empty.example/c": "",
	}
	nli := stubNLI{t: t, judged: map[string]model.Entailment{
		"sa":   entails(model.LabelEntailment, 0.7),
		"pa1.": entails(model.LabelEntailment, 0.9),
		"pa2.": entails(model.LabelEntailment, 0.9),
		"pa3.": entails(model.LabelNeutral, 0.5),
		"sb":   entails(model.LabelEntailment, 0.8),
	}}

	p := newTestPipeline(t, Components{
		Posts:     stubPosts{},
		Sentiment: stubSentiment{},
		Detector:  stubDetector{isClaim: true},
		Searcher:  searcher,
		Pages:     pages,
		NLI:       nli,
		Authority: source.NewAuthorityClassifier(nil),
	})

	report, err := p.Check(context.Background(), "https://x.com/geo/status/99")
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}

	if report.ID != "99" || !report.IsClaim {
		t.Errorf("Unexpected post fields: id=%s is_claim=%v", report.ID, report.IsClaim)
	}
	if report.Sentiment.Label != model.SentimentPositive {
		t.Errorf("Expected positive sentiment, got %s", report.Sentiment.Label)
	}

	if len(searcher.queries) != 1 || searcher.queries[0] != "Paris is the capital of France." {
		t.Errorf("Expected one cleaned query, got %v", searcher.queries)
	}

	fc := report.FactCheck
	if fc.Verdict != model.VerdictLikelyTrue || fc.Confidence != 0.95 {
		t.Errorf("Expected Likely True 0.95, got %s %v", fc.Verdict, fc.Confidence)
	}
	if fc.ResultsConsidered != 2 || len(fc.Details) != 2 {
		t.Errorf("Expected 2 records, got %d (details %d)", fc.ResultsConsidered, len(fc.Details))
	}
	if len(fc.Support) != 2 {
		t.Fatalf("Expected 2 support records, got %d", len(fc.Support))
	}
	if fc.Support[0].URL != "https://who.int/a" || fc.Support[0].Evidence != "pa1." {
		t.Errorf("Expected first tied page sentence for who.int, got %+v", fc.Support[0])
	}
	if fc.Support[0].Authority != model.TierPrimary {
		t.Errorf("Expected who.int to be primary, got %v", fc.Support[0].Authority)
	}
	if fc.Support[1].URL != "https://blog.example/b" || fc.Support[1].Evidence != "sb" {
		t.Errorf("Expected snippet-only record for failed page, got %+v", fc.Support[1])
	}
	if fc.Claim != "Paris is the capital of France. https://t.co/abc #geo" {
		t.Errorf("Expected original post text as claim, got %q", fc.Claim)
	}
	if !fc.TimestampUTC.Equal(fixedNow) || fc.Notes != model.ReviewNote {
		t.Errorf("Unexpected metadata: %v %q", fc.TimestampUTC, fc.Notes)
	}
}

func TestPipeline_Check_InvalidURL(t *testing.T) {
	p := newTestPipeline(t, Components{Posts: stubPosts{}, Searcher: &stubSearcher{}, NLI: stubNLI{t: t}})

	_, err := p.Check(context.Background(), "https://example.com/not-a-post")
	if !errors.Is(err, ErrInvalidPostURL) {
		t.Errorf("Expected ErrInvalidPostURL, got %v", err)
	}
}

func TestPipeline_SearchFailureDegradesToUnclear(t *testing.T) {
	searcher := &stubSearcher{err: errors.New("quota exceeded")}
	p := newTestPipeline(t, Components{Searcher: searcher, NLI: stubNLI{t: t}})

	report, err := p.CheckText(context.Background(), "Paris is the capital of France.")
	if err != nil {
		t.Fatalf("CheckText() error: %v", err)
	}
	fc := report.FactCheck
	if fc.Verdict != model.VerdictUnclear || fc.Confidence != 0.4 {
		t.Errorf("Expected Unclear 0.4, got %s %v", fc.Verdict, fc.Confidence)
	}
	if len(fc.SearchedQueries) != 1 || fc.ResultsConsidered != 0 {
		t.Errorf("Unexpected fact check: %+v", fc)
	}
}

// cancellingSearcher cancels the check while the last claim gathers evidence
type cancellingSearcher struct {
	cancel context.CancelFunc
}

func (s cancellingSearcher) Search(ctx context.Context, _ string, _ int) ([]model.SearchResult, error) {
	s.cancel()
	return nil, ctx.Err()
}

func TestPipeline_CancelledDuringLastClaimFails(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := newTestPipeline(t, Components{
		Searcher: cancellingSearcher{cancel: cancel},
		NLI:      stubNLI{t: t},
	})

	report, err := p.CheckText(ctx, "Paris is the capital of France.")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if report != nil {
		t.Errorf("Expected no report for a cancelled check, got %+v", report.FactCheck)
	}
}

func TestPipeline_DetectorErrorFails(t *testing.T) {
	p := newTestPipeline(t, Components{
		Detector: stubDetector{err: errors.New("model offline")},
		Searcher: &stubSearcher{},
		NLI:      stubNLI{t: t},
	})

	if _, err := p.CheckText(context.Background(), "Paris is the capital of France."); err == nil {
		t.Error("Expected detector error to fail the check")
	}
}

func TestPipeline_CheckWithoutPostSource(t *testing.T) {
	p := newTestPipeline(t, Components{Searcher: &stubSearcher{}, NLI: stubNLI{t: t}})
	if _, err := p.Check(context.Background(), "https://x.com/a/status/1"); err == nil {
		t.Error("Expected error without a post source")
	}
}

func TestNew_RequiresCoreComponents(t *testing.T) {
	if _, err := New(Components{}, DefaultOptions()); err == nil {
		t.Error("Expected error for missing components")
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Search.NumResults = 8
	cfg.Concurrency.EvidenceWorkers = 2

	opts := OptionsFromConfig(cfg)
	if opts.SearchResults != 8 || opts.EvidenceWorkers != 2 {
		t.Errorf("Unexpected options: %+v", opts)
	}
	if opts.Extraction.MinScore != 0.03 || opts.MaxEvidenceSentences != 3 || opts.MaxEvidenceChars != 400 {
		t.Errorf("Unexpected defaults: %+v", opts)
	}
}
