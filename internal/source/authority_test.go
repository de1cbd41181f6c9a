package source

import (
	"testing"

	"github.com/ppiankov/claimcheck/internal/model"
)

func TestAuthorityClassifier_Classify(t *testing.T) {
	config := &model.AuthorityConfig{
		PrimaryDomains:   []string{"who.int", "doi.org", "politifact.com"},
		SecondaryDomains: []string{"wikipedia.org", "bbc.co.uk"},
		DomainMap: map[string]string{
			"blogs.who.int": "tertiary",
			"Example.ORG":   "2",
		},
	}
	classifier := NewAuthorityClassifier(config)

	tests := []struct {
		url      string
		expected model.AuthorityTier
		desc     string
	}{
		{"https://who.int/news/item/1", model.TierPrimary, "primary exact match"},
		{"https://www.who.int/news", model.TierPrimary, "www prefix ignored"},
		{"https://extranet.who.int/x", model.TierPrimary, "primary subdomain"},
		{"https://blogs.who.int/post", model.TierTertiary, "domain map beats parent domain"},
		{"https://en.wikipedia.org/wiki/Laksa", model.TierSecondary, "secondary subdomain"},
		{"https://news.bbc.co.uk/a", model.TierSecondary, "multi-label suffix"},
		{"https://example.org:8443/page", model.TierSecondary, "domain map with port, case-insensitive"},
		{"https://www.cdc.gov/flu", model.TierPrimary, ".gov"},
		{"https://mit.edu/research", model.TierPrimary, ".edu"},
		{"https://www.ox.ac.uk/", model.TierPrimary, ".ac.uk"},
		{"https://notwho.int/", model.TierTertiary, "suffix must match on a label boundary"},
		{"https://someblog.example.com/post", model.TierTertiary, "unknown domain"},
		{"not a url", model.TierTertiary, "unparseable"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := classifier.Classify(tt.url); got != tt.expected {
				t.Errorf("Classify(%s) = %v, want %v", tt.url, got, tt.expected)
			}
		})
	}
}

func TestAuthorityClassifier_DefaultConfig(t *testing.T) {
	classifier := NewAuthorityClassifier(nil)
	if got := classifier.Classify("https://www.snopes.com/fact-check/x"); got != model.TierPrimary {
		t.Errorf("Expected snopes.com to be primary by default, got %v", got)
	}
	if got := classifier.Classify("https://www.reuters.com/world"); got != model.TierSecondary {
		t.Errorf("Expected reuters.com to be secondary by default, got %v", got)
	}
}

func TestAuthorityClassifier_Annotate(t *testing.T) {
	records := []model.EvidenceRecord{
		{URL: "https://politifact.com/a"},
		{URL: "https://random.blog/b"},
	}
	NewAuthorityClassifier(&model.AuthorityConfig{PrimaryDomains: []string{"politifact.com"}}).Annotate(records)

	if records[0].Authority != model.TierPrimary || records[1].Authority != model.TierTertiary {
		t.Errorf("Unexpected tiers: %v, %v", records[0].Authority, records[1].Authority)
	}
}

func TestParseTier(t *testing.T) {
	tests := map[string]model.AuthorityTier{
		"primary":   model.TierPrimary,
		" 1 ":       model.TierPrimary,
		"Secondary": model.TierSecondary,
		"3":         model.TierTertiary,
		"bogus":     model.TierTertiary,
	}
	for in, want := range tests {
		if got := ParseTier(in); got != want {
			t.Errorf("ParseTier(%q) = %v, want %v", in, got, want)
		}
	}
}
