// Package source classifies evidence URLs by the authority of the publishing site.
package source

import (
	"net/url"
	"strings"

	"github.com/ppiankov/claimcheck/internal/model"
)

// AuthorityClassifier classifies sources into authority tiers
type AuthorityClassifier struct {
	domainMap map[string]model.AuthorityTier
	primary   map[string]bool
	secondary map[string]bool
}

// NewAuthorityClassifier creates a new authority classifier
func NewAuthorityClassifier(config *model.AuthorityConfig) *AuthorityClassifier {
	if config == nil {
		config = &model.DefaultConfig().Authority
	}

	classifier := &AuthorityClassifier{
		domainMap: make(map[string]model.AuthorityTier),
		primary:   make(map[string]bool),
		secondary: make(map[string]bool),
	}

	for domain, tier := range config.DomainMap {
		classifier.domainMap[normalizeHost(domain)] = ParseTier(tier)
	}
	for _, domain := range config.PrimaryDomains {
		classifier.primary[normalizeHost(domain)] = true
	}
	for _, domain := range config.SecondaryDomains {
		classifier.secondary[normalizeHost(domain)] = true
	}

	return classifier
}

// Classify classifies a URL into an authority tier
func (a *AuthorityClassifier) Classify(rawURL string) model.AuthorityTier {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return model.TierTertiary
	}
	host := normalizeHost(parsed.Hostname())

	// Walk from the full host up to its registrable suffixes so the most
	// specific configured domain wins (news.bbc.co.uk, bbc.co.uk, co.uk).
	for h := host; h != ""; h = parentDomain(h) {
		if tier, ok := a.domainMap[h]; ok {
			return tier
		}
		if a.primary[h] {
			return model.TierPrimary
		}
		if a.secondary[h] {
			return model.TierSecondary
		}
	}

	if strings.HasSuffix(host, ".gov") || strings.HasSuffix(host, ".edu") ||
		strings.HasSuffix(host, ".mil") || strings.HasSuffix(host, ".ac.uk") {
		return model.TierPrimary
	}

	return model.TierTertiary
}

// Annotate sets the Authority field of every record in place
func (a *AuthorityClassifier) Annotate(records []model.EvidenceRecord) {
	for i := range records {
		records[i].Authority = a.Classify(records[i].URL)
	}
}

// ParseTier converts a tier name or number to an AuthorityTier
func ParseTier(tier string) model.AuthorityTier {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case "primary", "1":
		return model.TierPrimary
	case "secondary", "2":
		return model.TierSecondary
	default:
		return model.TierTertiary
	}
}

func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(host), "."))
	return strings.TrimPrefix(host, "www.")
}

func parentDomain(host string) string {
	idx := strings.Index(host, ".")
	if idx < 0 {
		return ""
	}
	return host[idx+1:]
}
