package nlp

import (
	"regexp"
	"sort"
	"strings"
)

// Entity labels used across the analyzer
const (
	LabelPerson    = "PERSON"
	LabelOrg       = "ORG"
	LabelGPE       = "GPE"
	LabelNORP      = "NORP"
	LabelLoc       = "LOC"
	LabelDate      = "DATE"
	LabelTime      = "TIME"
	LabelEvent     = "EVENT"
	LabelLaw       = "LAW"
	LabelProduct   = "PRODUCT"
	LabelMoney     = "MONEY"
	LabelPercent   = "PERCENT"
	LabelCardinal  = "CARDINAL"
	LabelOrdinal   = "ORDINAL"
	LabelFac       = "FAC"
	LabelWorkOfArt = "WORK_OF_ART"
	LabelLanguage  = "LANGUAGE"
)

type entityPattern struct {
	label string
	re    *regexp.Regexp
}

const months = `(?:January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec)\.?`

// Patterns are tried in order; a span claimed by an earlier pattern is not
// reused by a later one.
var entityPatterns = []entityPattern{
	{LabelMoney, regexp.MustCompile(`(?i)(?:[$€£¥]\s?\d[\d,]*(?:\.\d+)?(?:\s?(?:thousand|million|billion|trillion|[mbk]n?))?|\b\d[\d,]*(?:\.\d+)?\s?(?:dollars|euros|pounds|yen|usd|eur|gbp)\b)`)},
	{LabelPercent, regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s?(?:%|percent\b|per cent\b)`)},
	{LabelDate, regexp.MustCompile(`(?i)\b` + months + `\s+\d{1,2}(?:st|nd|rd|th)?(?:,\s*\d{4})?\b|\b\d{1,2}(?:st|nd|rd|th)?\s+` + months + `(?:\s+\d{4})?\b|\b` + months + `\s+\d{4}\b`)},
	{LabelDate, regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b|\b\d{1,2}/\d{1,2}/\d{2,4}\b`)},
	{LabelDate, regexp.MustCompile(`(?i)\b(?:yesterday|today|tomorrow|last (?:week|month|year)|next (?:week|month|year)|(?:mon|tues|wednes|thurs|fri|satur|sun)day)\b`)},
	{LabelDate, regexp.MustCompile(`\b(?:1[5-9]|20)\d{2}s?\b`)},
	{LabelTime, regexp.MustCompile(`(?i)\b\d{1,2}(?::\d{2})?\s?(?:a\.?m\.?|p\.?m\.?)|\b\d{1,2}:\d{2}\b`)},
	{LabelOrdinal, regexp.MustCompile(`(?i)\b(?:\d+(?:st|nd|rd|th)|first|second|third|fourth|fifth|sixth|seventh|eighth|ninth|tenth)\b`)},
	{LabelCardinal, regexp.MustCompile(`(?i)\b\d[\d,]*(?:\.\d+)?(?:\s(?:thousand|million|billion|trillion))?\b|\b(?:two|three|four|five|six|seven|eight|nine|ten|eleven|twelve|twenty|thirty|forty|fifty|hundred|thousand|million|billion|trillion|dozens?)\b`)},
}

// PatternEntities finds numeric, temporal and monetary entities in text
func PatternEntities(text string) []Entity {
	type span struct {
		start, end int
		label      string
	}

	var spans []span
	taken := func(start, end int) bool {
		for _, s := range spans {
			if start < s.end && end > s.start {
				return true
			}
		}
		return false
	}

	for _, p := range entityPatterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			if taken(loc[0], loc[1]) {
				continue
			}
			spans = append(spans, span{start: loc[0], end: loc[1], label: p.label})
		}
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	entities := make([]Entity, 0, len(spans))
	for _, s := range spans {
		entities = append(entities, Entity{
			Text:  strings.TrimSpace(text[s.start:s.end]),
			Label: s.label,
		})
	}
	return entities
}
