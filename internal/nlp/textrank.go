package nlp

import (
	"math"
	"sort"
	"strings"
)

const (
	textRankDamping    = 0.85
	textRankIterations = 50
	textRankTolerance  = 1e-6
	textRankWindow     = 2
)

var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "this": true, "that": true, "these": true, "those": true,
	"it": true, "its": true, "is": true, "are": true, "was": true, "were": true, "be": true,
	"of": true, "in": true, "on": true, "at": true, "to": true, "for": true, "and": true, "or": true,
	"which": true, "who": true, "what": true, "has": true, "have": true, "had": true,
	"he": true, "she": true, "they": true, "we": true, "i": true, "you": true, "his": true,
	"her": true, "their": true, "our": true, "my": true, "your": true,
}

// isContentTag reports whether a tag can carry keyphrase weight
func isContentTag(tag string) bool {
	return strings.HasPrefix(tag, "NN") || strings.HasPrefix(tag, "JJ") || tag == "CD"
}

// isNounTag reports whether a tag can close a noun phrase
func isNounTag(tag string) bool {
	return strings.HasPrefix(tag, "NN") || tag == "CD"
}

type phraseSpan struct {
	sentence int
	words    []string // lower-cased content words
	text     string   // surface text
}

// nounChunks returns maximal runs of adjectives/nouns that end in a noun
func nounChunks(sentence int, tokens []Token) []phraseSpan {
	var chunks []phraseSpan
	var words, surface []string
	lastNoun := -1

	flush := func() {
		if lastNoun >= 0 {
			chunks = append(chunks, phraseSpan{
				sentence: sentence,
				words:    append([]string(nil), words[:lastNoun+1]...),
				text:     strings.Join(surface[:lastNoun+1], " "),
			})
		}
		words, surface, lastNoun = nil, nil, -1
	}

	for _, tok := range tokens {
		lower := strings.ToLower(tok.Text)
		if !isContentTag(tok.Tag) || stopwords[lower] {
			flush()
			continue
		}
		words = append(words, lower)
		surface = append(surface, tok.Text)
		if isNounTag(tok.Tag) {
			lastNoun = len(words) - 1
		}
	}
	flush()

	return chunks
}

// RankKeyphrases ranks the noun phrases of the given sentences with TextRank.
// Word ranks come from PageRank over a co-occurrence graph of content words;
// a phrase's rank is the mean rank of its words.
func RankKeyphrases(sentences []Sentence) []Keyphrase {
	// co-occurrence graph over content words
	graph := make(map[string]map[string]bool)
	addEdge := func(a, b string) {
		if a == b {
			return
		}
		if graph[a] == nil {
			graph[a] = make(map[string]bool)
		}
		if graph[b] == nil {
			graph[b] = make(map[string]bool)
		}
		graph[a][b] = true
		graph[b][a] = true
	}

	var spans []phraseSpan
	for _, sent := range sentences {
		var window []string
		for _, tok := range sent.Tokens {
			lower := strings.ToLower(tok.Text)
			if !isContentTag(tok.Tag) || stopwords[lower] {
				continue
			}
			if graph[lower] == nil {
				graph[lower] = make(map[string]bool)
			}
			for _, prev := range window {
				addEdge(prev, lower)
			}
			window = append(window, lower)
			if len(window) > textRankWindow {
				window = window[1:]
			}
		}
		spans = append(spans, nounChunks(sent.Index, sent.Tokens)...)
	}

	if len(graph) == 0 || len(spans) == 0 {
		return nil
	}

	ranks := pageRank(graph)

	byText := make(map[string]*Keyphrase)
	var order []string
	for _, sp := range spans {
		key := strings.Join(sp.words, " ")
		kp, ok := byText[key]
		if !ok {
			var sum float64
			for _, w := range sp.words {
				sum += ranks[w]
			}
			kp = &Keyphrase{Text: key, Rank: sum / float64(len(sp.words))}
			byText[key] = kp
			order = append(order, key)
		}
		kp.Chunks = append(kp.Chunks, Chunk{Sentence: sp.sentence, Text: sp.text})
	}

	phrases := make([]Keyphrase, 0, len(order))
	for _, key := range order {
		phrases = append(phrases, *byText[key])
	}
	sort.SliceStable(phrases, func(i, j int) bool {
		return phrases[i].Rank > phrases[j].Rank
	})

	return phrases
}

// pageRank runs unweighted PageRank until convergence; ranks are scaled so the
// best word has rank 1
func pageRank(graph map[string]map[string]bool) map[string]float64 {
	nodes := make([]string, 0, len(graph))
	for n := range graph {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)

	// sorted adjacency keeps float summation order stable across runs
	adjacency := make(map[string][]string, len(nodes))
	for _, node := range nodes {
		neighbors := make([]string, 0, len(graph[node]))
		for neighbor := range graph[node] {
			neighbors = append(neighbors, neighbor)
		}
		sort.Strings(neighbors)
		adjacency[node] = neighbors
	}

	n := float64(len(nodes))
	ranks := make(map[string]float64, len(nodes))
	for _, node := range nodes {
		ranks[node] = 1 / n
	}

	for iter := 0; iter < textRankIterations; iter++ {
		next := make(map[string]float64, len(nodes))
		delta := 0.0
		for _, node := range nodes {
			sum := 0.0
			for _, neighbor := range adjacency[node] {
				sum += ranks[neighbor] / float64(len(adjacency[neighbor]))
			}
			next[node] = (1-textRankDamping)/n + textRankDamping*sum
			delta += math.Abs(next[node] - ranks[node])
		}
		ranks = next
		if delta < textRankTolerance {
			break
		}
	}

	maxRank := 0.0
	for _, node := range nodes {
		maxRank = math.Max(maxRank, ranks[node])
	}
	if maxRank > 0 {
		for _, node := range nodes {
			ranks[node] /= maxRank
		}
	}
	return ranks
}
