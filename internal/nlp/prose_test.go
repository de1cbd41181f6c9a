package nlp

import (
	"strings"
	"testing"
	"time"
)

func TestProseAnalyzer_ReusesModel(t *testing.T) {
	a := NewProseAnalyzer()
	if a.model == nil {
		t.Fatal("Expected the tagger and entity model to be loaded up front")
	}
	loaded := a.model

	doc, err := a.Analyze(strings.Repeat("Barack Obama was born in Hawaii in 1961. ", 3))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if a.model != loaded {
		t.Error("Expected Analyze to keep the loaded model")
	}

	var person bool
	for _, ent := range doc.Sentences[0].Entities {
		if ent.Label == LabelPerson || ent.Label == LabelGPE {
			person = true
		}
	}
	if !person {
		t.Errorf("Expected shared model to tag entities, got %+v", doc.Sentences[0].Entities)
	}
}

func TestProseAnalyzer_ManySentences(t *testing.T) {
	if testing.Short() {
		t.Skip("timing test")
	}
	a := NewProseAnalyzer()
	text := strings.Repeat("Barack Obama was born in Hawaii in 1961. ", 20)

	start := time.Now()
	doc, err := a.Analyze(text)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(doc.Sentences) != 20 {
		t.Fatalf("Expected 20 sentences, got %d", len(doc.Sentences))
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("Analyzing 20 sentences took %v; models are being reloaded", elapsed)
	}
}

func BenchmarkProseAnalyzer_Analyze(b *testing.B) {
	a := NewProseAnalyzer()
	text := strings.Repeat("Barack Obama was born in Hawaii in 1961. ", 10)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := a.Analyze(text); err != nil {
			b.Fatal(err)
		}
	}
}

func TestProseAnalyzer_Empty(t *testing.T) {
	doc, err := NewProseAnalyzer().Analyze("   ")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(doc.Sentences) != 0 || len(doc.Keyphrases) != 0 {
		t.Errorf("Expected empty document, got %+v", doc)
	}
}

func TestProseAnalyzer_Analyze(t *testing.T) {
	text := "The company reported revenue of $4 billion in 2023. Analysts expected a smaller number."
	doc, err := NewProseAnalyzer().Analyze(text)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(doc.Sentences) != 2 {
		t.Fatalf("Expected 2 sentences, got %d", len(doc.Sentences))
	}
	for i, s := range doc.Sentences {
		if s.Index != i {
			t.Errorf("Sentence %d has index %d", i, s.Index)
		}
		if len(s.Tokens) == 0 {
			t.Errorf("Sentence %d has no tokens", i)
		}
	}

	if !doc.Sentences[0].HasVerb() {
		t.Error("Expected first sentence to contain a verb")
	}

	var money bool
	for _, ent := range doc.Sentences[0].Entities {
		if ent.Label == LabelMoney && strings.Contains(ent.Text, "4 billion") {
			money = true
		}
	}
	if !money {
		t.Errorf("Expected MONEY entity, got %+v", doc.Sentences[0].Entities)
	}

	if len(doc.Keyphrases) == 0 {
		t.Error("Expected keyphrases")
	}
}

func TestProseLabel(t *testing.T) {
	tests := map[string]string{
		"PERSON": LabelPerson,
		"GPE":    LabelGPE,
		"ORG":    LabelOrg,
		"O":      "",
	}
	for in, want := range tests {
		if got := proseLabel(in); got != want {
			t.Errorf("proseLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
