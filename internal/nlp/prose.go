package nlp

import (
	"fmt"
	"strings"

	"github.com/jdkato/prose/v2"
)

// ProseAnalyzer analyzes English text with prose's segmenter, tagger and
// entity model, adds pattern-based numeric and temporal entities, and ranks
// keyphrases with TextRank. The tagger and entity model are loaded once and
// shared by every call.
type ProseAnalyzer struct {
	model *prose.Model
}

// NewProseAnalyzer loads prose's tagger and entity model
func NewProseAnalyzer() *ProseAnalyzer {
	primed, err := prose.NewDocument("Claimcheck loads its models once.")
	if err != nil {
		return &ProseAnalyzer{}
	}
	return &ProseAnalyzer{model: primed.Model}
}

func (a *ProseAnalyzer) opts(extra ...prose.DocOpt) []prose.DocOpt {
	if a.model == nil {
		return extra
	}
	return append(extra, prose.UsingModel(a.model))
}

// Analyze segments, tags and ranks the given text
func (a *ProseAnalyzer) Analyze(text string) (*Document, error) {
	doc := &Document{Text: text}
	if strings.TrimSpace(text) == "" {
		return doc, nil
	}

	segmented, err := prose.NewDocument(text, a.opts(
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)...)
	if err != nil {
		return nil, fmt.Errorf("segment document: %w", err)
	}

	for _, s := range segmented.Sentences() {
		sentence, err := a.analyzeSentence(len(doc.Sentences), s.Text)
		if err != nil {
			return nil, err
		}
		doc.Sentences = append(doc.Sentences, sentence)
	}

	doc.Keyphrases = RankKeyphrases(doc.Sentences)
	return doc, nil
}

// analyzeSentence tags one sentence and collects its entities
func (a *ProseAnalyzer) analyzeSentence(index int, text string) (Sentence, error) {
	sentence := Sentence{Index: index, Text: text}
	if strings.TrimSpace(text) == "" {
		return sentence, nil
	}

	tagged, err := prose.NewDocument(text, a.opts(prose.WithSegmentation(false))...)
	if err != nil {
		return sentence, fmt.Errorf("tag sentence %d: %w", index, err)
	}

	for _, tok := range tagged.Tokens() {
		sentence.Tokens = append(sentence.Tokens, Token{Text: tok.Text, Tag: tok.Tag})
	}

	seen := make(map[string]bool)
	for _, ent := range tagged.Entities() {
		label := proseLabel(ent.Label)
		if label == "" {
			continue
		}
		sentence.Entities = append(sentence.Entities, Entity{Text: ent.Text, Label: label})
		seen[strings.ToLower(ent.Text)] = true
	}
	for _, ent := range PatternEntities(text) {
		if seen[strings.ToLower(ent.Text)] {
			continue
		}
		sentence.Entities = append(sentence.Entities, ent)
	}

	return sentence, nil
}

// proseLabel maps prose's entity labels onto the analyzer's label set
func proseLabel(label string) string {
	switch label {
	case "PERSON":
		return LabelPerson
	case "GPE":
		return LabelGPE
	case "ORG", "ORGANIZATION":
		return LabelOrg
	case "LOC", "LOCATION":
		return LabelLoc
	default:
		return ""
	}
}
