package extract

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/ppiankov/claimcheck/internal/model"
	"github.com/ppiankov/claimcheck/internal/nlp"
)

type stubAnalyzer struct {
	doc *nlp.Document
	err error
}

func (s *stubAnalyzer) Analyze(text string) (*nlp.Document, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.doc == nil {
		return &nlp.Document{Text: text}, nil
	}
	return s.doc, nil
}

type stubDetector struct {
	reject map[string]bool
	err    error
	calls  []string
}

func (s *stubDetector) IsClaim(_ context.Context, text string) (bool, error) {
	s.calls = append(s.calls, text)
	if s.err != nil {
		return false, s.err
	}
	return !s.reject[text], nil
}

// sentence builds an analyzed sentence with a verb and the given entities
func sentence(index int, text string, entities ...nlp.Entity) nlp.Sentence {
	return nlp.Sentence{
		Index:    index,
		Text:     text,
		Tokens:   []nlp.Token{{Text: "Word", Tag: "NNP"}, {Text: "said", Tag: "VBD"}},
		Entities: entities,
	}
}

func gpe(text string) nlp.Entity { return nlp.Entity{Text: text, Label: nlp.LabelGPE} }

func phrase(text string, rank float64, sentences ...int) nlp.Keyphrase {
	kp := nlp.Keyphrase{Text: text, Rank: rank}
	for _, s := range sentences {
		kp.Chunks = append(kp.Chunks, nlp.Chunk{Sentence: s, Text: text})
	}
	return kp
}

// allOptions keeps every scored candidate so penalties can be inspected
func allOptions() Options {
	opts := DefaultOptions()
	opts.MinScore = 0
	opts.Quantile = 0
	opts.BandWidth = 1
	opts.Dedupe = false
	return opts
}

func TestExtract_EmptyInput(t *testing.T) {
	extractor := NewClaimExtractor(&stubAnalyzer{}, &stubDetector{})

	claims, err := extractor.Extract(context.Background(), "", DefaultOptions())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if claims == nil || len(claims) != 0 {
		t.Errorf("Expected empty non-nil result, got %#v", claims)
	}
}

func TestExtract_NoEntities(t *testing.T) {
	doc := &nlp.Document{
		Sentences:  []nlp.Sentence{sentence(0, "Things happened."), sentence(1, "More things happened.")},
		Keyphrases: []nlp.Keyphrase{phrase("things", 1, 0, 1)},
	}
	extractor := NewClaimExtractor(&stubAnalyzer{doc: doc}, &stubDetector{})

	claims, err := extractor.Extract(context.Background(), "x", DefaultOptions())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(claims) != 0 {
		t.Errorf("Expected no claims, got %+v", claims)
	}
}

func TestExtract_NoKeyphrases(t *testing.T) {
	doc := &nlp.Document{
		Sentences: []nlp.Sentence{sentence(0, "Paris grew.", gpe("Paris"))},
	}
	extractor := NewClaimExtractor(&stubAnalyzer{doc: doc}, &stubDetector{})

	claims, err := extractor.Extract(context.Background(), "x", DefaultOptions())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(claims) != 0 {
		t.Errorf("Expected zero-score candidates to fall under the cutoff, got %+v", claims)
	}
}

func TestExtract_AnalyzerError(t *testing.T) {
	extractor := NewClaimExtractor(&stubAnalyzer{err: errors.New("boom")}, nil)
	if _, err := extractor.Extract(context.Background(), "x", DefaultOptions()); err == nil {
		t.Fatal("Expected error")
	}
}

func TestExtract_Filters(t *testing.T) {
	noVerb := nlp.Sentence{
		Index:    2,
		Text:     "Paris, France.",
		Tokens:   []nlp.Token{{Text: "Paris", Tag: "NNP"}},
		Entities: []nlp.Entity{gpe("Paris")},
	}
	wrongLabel := sentence(3, "Bob spoke.", nlp.Entity{Text: "Bob", Label: "MISC"})
	doc := &nlp.Document{
		Sentences: []nlp.Sentence{
			sentence(0, "Berlin expanded in 2020.", gpe("Berlin")),
			sentence(1, "   "),
			noVerb,
			wrongLabel,
		},
		Keyphrases: []nlp.Keyphrase{phrase("k", 1, 0, 1, 2, 3)},
	}
	extractor := NewClaimExtractor(&stubAnalyzer{doc: doc}, nil)

	claims, err := extractor.Extract(context.Background(), "x", allOptions())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(claims) != 1 || claims[0].Text != "Berlin expanded in 2020." {
		t.Fatalf("Expected only the Berlin sentence, got %+v", claims)
	}

	opts := allOptions()
	opts.RequireVerb = false
	claims, err = extractor.Extract(context.Background(), "x", opts)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(claims) != 2 {
		t.Errorf("Expected verbless sentence to pass when verbs are not required, got %+v", claims)
	}
}

func TestExtract_NormalizationAndBand(t *testing.T) {
	doc := &nlp.Document{
		Sentences: []nlp.Sentence{
			sentence(0, "Rome is old.", gpe("Rome")),
			sentence(1, "Oslo is cold.", gpe("Oslo")),
			sentence(2, "Lima is high.", gpe("Lima")),
		},
		Keyphrases: []nlp.Keyphrase{
			phrase("a", 0.98, 1),
			phrase("b", 1.0, 0),
			phrase("c", 0.5, 2),
		},
	}
	extractor := NewClaimExtractor(&stubAnalyzer{doc: doc}, nil)

	all, err := extractor.Extract(context.Background(), "x", allOptions())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 candidates, got %d", len(all))
	}
	if all[0].NormScore != 1.0 {
		t.Errorf("Expected top normalized score 1.0, got %f", all[0].NormScore)
	}
	for _, c := range all {
		if c.NormScore < 0 || c.NormScore > 1 {
			t.Errorf("Normalized score %f out of range", c.NormScore)
		}
	}

	opts := DefaultOptions()
	opts.Quantile = 0
	banded, err := extractor.Extract(context.Background(), "x", opts)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(banded) != 2 {
		t.Fatalf("Expected 2 candidates in the top band, got %+v", banded)
	}
	if banded[0].Text != "Rome is old." || banded[1].Text != "Oslo is cold." {
		t.Errorf("Unexpected ranking: %+v", banded)
	}
	if spread := banded[0].NormScore - banded[len(banded)-1].NormScore; spread > opts.BandWidth {
		t.Errorf("Band spread %f exceeds %f", spread, opts.BandWidth)
	}

	defaults, err := extractor.Extract(context.Background(), "x", DefaultOptions())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(defaults) != 1 || defaults[0].Text != "Rome is old." {
		t.Errorf("Expected only the top sentence above the 0.7 quantile, got %+v", defaults)
	}
}

func TestExtract_HypotheticalPenalty(t *testing.T) {
	doc := &nlp.Document{
		Sentences: []nlp.Sentence{
			sentence(0, "Taxes could rise in Ohio.", gpe("Ohio")),
			sentence(1, "If Ohio votes, taxes rise.", gpe("Ohio")),
			sentence(2, "Taxes rose in Ohio.", gpe("Ohio")),
		},
		Keyphrases: []nlp.Keyphrase{phrase("taxes", 1, 0, 1, 2)},
	}
	extractor := NewClaimExtractor(&stubAnalyzer{doc: doc}, nil)

	claims, err := extractor.Extract(context.Background(), "x", allOptions())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	scores := make(map[string]float64)
	for _, c := range claims {
		scores[c.Text] = c.Score
	}
	if scores["Taxes rose in Ohio."] != 1 {
		t.Errorf("Expected unpenalized score 1, got %f", scores["Taxes rose in Ohio."])
	}
	if scores["Taxes could rise in Ohio."] != 0.5 {
		t.Errorf("Expected hypothetical score 0.5, got %f", scores["Taxes could rise in Ohio."])
	}
	if scores["If Ohio votes, taxes rise."] != 0.5 {
		t.Errorf("Expected conditional score 0.5, got %f", scores["If Ohio votes, taxes rise."])
	}
	if claims[0].Text != "Taxes rose in Ohio." {
		t.Errorf("Expected unpenalized sentence first, got %q", claims[0].Text)
	}
}

func TestExtract_RepeatPenalty(t *testing.T) {
	doc := &nlp.Document{
		Sentences: []nlp.Sentence{
			sentence(0, "Texas beat Texas rivals.", gpe("Texas"), gpe("texas")),
			sentence(1, "Texas beat Iowa rivals.", gpe("Texas"), gpe("Iowa")),
		},
		Keyphrases: []nlp.Keyphrase{phrase("rivals", 1, 0, 1)},
	}
	extractor := NewClaimExtractor(&stubAnalyzer{doc: doc}, nil)

	claims, err := extractor.Extract(context.Background(), "x", allOptions())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(claims) != 2 {
		t.Fatalf("Expected 2 claims, got %+v", claims)
	}
	if claims[0].Text != "Texas beat Iowa rivals." {
		t.Errorf("Expected the sentence without repeats first, got %q", claims[0].Text)
	}
	if !(claims[1].Score < claims[0].Score) {
		t.Errorf("Expected repeated entity to lower the score: %f vs %f", claims[1].Score, claims[0].Score)
	}
	if math.Abs(claims[1].Score-0.8) > 1e-9 {
		t.Errorf("Expected repeated entity score 0.8, got %f", claims[1].Score)
	}
}

func TestExtract_RepeatKeyphrasePenalty(t *testing.T) {
	doc := &nlp.Document{
		Sentences: []nlp.Sentence{
			sentence(0, "Oil prices and oil prices again in Peru.", gpe("Peru")),
		},
		Keyphrases: []nlp.Keyphrase{phrase("oil prices", 1, 0, 0)},
	}
	extractor := NewClaimExtractor(&stubAnalyzer{doc: doc}, nil)

	claims, err := extractor.Extract(context.Background(), "x", allOptions())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	// two anchors contribute 2 * 1.0, then 0.85 for the repeat
	if len(claims) != 1 || math.Abs(claims[0].Score-1.7) > 1e-9 {
		t.Errorf("Expected score 1.7, got %+v", claims)
	}
}

func TestExtract_Dedupe(t *testing.T) {
	doc := &nlp.Document{
		Sentences: []nlp.Sentence{
			sentence(0, "Madrid  won the cup.", gpe("Madrid")),
			sentence(1, "madrid won the   cup.", gpe("madrid")),
		},
		Keyphrases: []nlp.Keyphrase{phrase("cup", 1, 0, 1)},
	}
	extractor := NewClaimExtractor(&stubAnalyzer{doc: doc}, nil)

	claims, err := extractor.Extract(context.Background(), "x", DefaultOptions())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(claims) != 1 {
		t.Fatalf("Expected duplicates collapsed, got %+v", claims)
	}
	if claims[0].Text != "Madrid won the cup." {
		t.Errorf("Expected first occurrence kept with normalized whitespace, got %q", claims[0].Text)
	}

	opts := DefaultOptions()
	opts.Dedupe = false
	claims, err = extractor.Extract(context.Background(), "x", opts)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(claims) != 2 {
		t.Errorf("Expected both sentences without dedupe, got %+v", claims)
	}
}

func TestExtract_ClaimGateDropsConsecutiveNonClaims(t *testing.T) {
	doc := &nlp.Document{
		Sentences: []nlp.Sentence{
			sentence(0, "Quito is nice.", gpe("Quito")),
			sentence(1, "Cairo is nice.", gpe("Cairo")),
			sentence(2, "Delhi has 30 million people.", gpe("Delhi")),
		},
		Keyphrases: []nlp.Keyphrase{phrase("k", 1, 0, 1, 2)},
	}
	detector := &stubDetector{reject: map[string]bool{
		"Quito is nice.": true,
		"Cairo is nice.": true,
	}}
	extractor := NewClaimExtractor(&stubAnalyzer{doc: doc}, detector)

	claims, err := extractor.Extract(context.Background(), "x", DefaultOptions())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(claims) != 1 || claims[0].Text != "Delhi has 30 million people." {
		t.Errorf("Expected only the Delhi claim, got %+v", claims)
	}
	if len(detector.calls) != 3 {
		t.Errorf("Expected every candidate to be classified, got %d calls", len(detector.calls))
	}
}

func TestExtract_ClaimGateError(t *testing.T) {
	doc := &nlp.Document{
		Sentences:  []nlp.Sentence{sentence(0, "Lagos grew fast.", gpe("Lagos"))},
		Keyphrases: []nlp.Keyphrase{phrase("k", 1, 0)},
	}
	boom := errors.New("classifier down")
	extractor := NewClaimExtractor(&stubAnalyzer{doc: doc}, &stubDetector{err: boom})

	_, err := extractor.Extract(context.Background(), "x", DefaultOptions())
	if !errors.Is(err, boom) {
		t.Errorf("Expected wrapped classifier error, got %v", err)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	doc := &nlp.Document{
		Sentences: []nlp.Sentence{
			sentence(0, "Kyiv is big.", gpe("Kyiv")),
			sentence(1, "Riga is big.", gpe("Riga")),
			sentence(2, "Baku is big.", gpe("Baku")),
		},
		Keyphrases: []nlp.Keyphrase{phrase("big", 1, 0, 1, 2)},
	}
	extractor := NewClaimExtractor(&stubAnalyzer{doc: doc}, nil)

	first, err := extractor.Extract(context.Background(), "x", DefaultOptions())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	for i := 0; i < 5; i++ {
		got, err := extractor.Extract(context.Background(), "x", DefaultOptions())
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if !reflect.DeepEqual(first, got) {
			t.Fatalf("Run %d differs: %+v vs %+v", i, first, got)
		}
	}
	// ties keep document order
	if len(first) != 3 || first[0].Text != "Kyiv is big." || first[2].Text != "Baku is big." {
		t.Errorf("Expected stable tie order, got %+v", first)
	}
}

func TestQuantile(t *testing.T) {
	tests := []struct {
		values []float64
		q      float64
		want   float64
	}{
		{[]float64{1, 2, 3, 4}, 0.5, 2.5},
		{[]float64{0, 1}, 0.7, 0.7},
		{[]float64{3, 1, 2}, 1, 3},
		{[]float64{3, 1, 2}, 0, 1},
		{[]float64{0.4}, 0.7, 0.4},
		{nil, 0.7, 0},
	}

	for _, tt := range tests {
		if got := quantile(tt.values, tt.q); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("quantile(%v, %v) = %v, want %v", tt.values, tt.q, got, tt.want)
		}
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.MinScore != 0.05 || opts.Quantile != 0.7 || opts.MinEntities != 1 || !opts.RequireVerb || !opts.Dedupe {
		t.Errorf("Unexpected defaults: %+v", opts)
	}
	if len(opts.EntityTypes) != 17 {
		t.Errorf("Expected 17 allowed entity types, got %d", len(opts.EntityTypes))
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := model.DefaultConfig().Extraction
	cfg.MinScore = 0.03
	cfg.BandWidth = 0

	opts := OptionsFromConfig(cfg)
	if opts.MinScore != 0.03 {
		t.Errorf("Expected configured min score 0.03, got %f", opts.MinScore)
	}
	if opts.BandWidth != 0.05 {
		t.Errorf("Expected zero band width to fall back to 0.05, got %f", opts.BandWidth)
	}
	if opts.RepeatEntityBase != cfg.RepeatEntityBase {
		t.Errorf("Expected repeat entity base %f, got %f", cfg.RepeatEntityBase, opts.RepeatEntityBase)
	}
}
