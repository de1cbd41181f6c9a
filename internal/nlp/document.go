// Package nlp provides the linguistic analysis consumed by claim extraction:
// sentence segmentation, part-of-speech tags, named entities and ranked
// keyphrases anchored to sentences by position.
package nlp

import "strings"

// Analyzer turns raw text into an analyzed document
type Analyzer interface {
	Analyze(text string) (*Document, error)
}

// Document is the result of one analysis pass over a text
type Document struct {
	Text       string
	Sentences  []Sentence
	Keyphrases []Keyphrase // Highest rank first
}

// Sentence is a contiguous span of the document
type Sentence struct {
	Index    int // Position in Document.Sentences
	Text     string
	Tokens   []Token
	Entities []Entity
}

// Token is a word with its Penn Treebank part-of-speech tag
type Token struct {
	Text string
	Tag  string
}

// IsVerb reports whether the token is tagged as a verb
func (t Token) IsVerb() bool {
	return strings.HasPrefix(t.Tag, "VB")
}

// Entity is a named-entity span
type Entity struct {
	Text  string
	Label string // PERSON, ORG, GPE, DATE, CARDINAL, ...
}

// Keyphrase is a ranked phrase and every place it occurs
type Keyphrase struct {
	Text   string // Lower-cased, whitespace-normalized
	Rank   float64
	Chunks []Chunk
}

// Chunk anchors one occurrence of a keyphrase to a sentence
type Chunk struct {
	Sentence int // Sentence.Index
	Text     string
}

// HasVerb reports whether any token in the sentence is a verb
func (s Sentence) HasVerb() bool {
	for _, tok := range s.Tokens {
		if tok.IsVerb() {
			return true
		}
	}
	return false
}
