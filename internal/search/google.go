// Package search runs web searches for claims through the Google Custom Search JSON API.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/claimcheck/internal/cache"
	"github.com/ppiankov/claimcheck/internal/logger"
	"github.com/ppiankov/claimcheck/internal/model"
	"go.uber.org/zap"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// MaxResults is the most results the API returns per call
const MaxResults = 10

// DefaultExcludeSites are social platforms whose pages restate the post instead of checking it
var DefaultExcludeSites = []string{
	"x.com", "twitter.com", "nitter.net", "tweettunnel.com", "youtube.com",
	"tiktok.com", "reddit.com", "facebook.com", "instagram.com",
}

// GoogleSearcher queries a Programmable Search Engine
type GoogleSearcher struct {
	service  *customsearch.Service
	engineID string
	exclude  []string
	safe     string
	country  string
	language string
	cache    cache.Cache
	cacheTTL time.Duration
}

// NewGoogleSearcher creates a searcher from config. A nil cache disables caching.
func NewGoogleSearcher(ctx context.Context, cfg model.SearchConfig, c cache.Cache) (*GoogleSearcher, error) {
	if cfg.APIKey == "" || cfg.EngineID == "" {
		return nil, fmt.Errorf("search API key and engine ID are required (GOOGLE_API_KEY, GOOGLE_CX)")
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	service, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create custom search service: %w", err)
	}

	exclude := cfg.ExcludeSites
	if exclude == nil {
		exclude = DefaultExcludeSites
	}
	if c == nil {
		c = cache.NopCache{}
	}

	return &GoogleSearcher{
		service:  service,
		engineID: cfg.EngineID,
		exclude:  exclude,
		safe:     cfg.SafeSearch,
		country:  cfg.Country,
		language: cfg.Language,
		cache:    c,
		cacheTTL: cfg.CacheTTL,
	}, nil
}

// Search returns up to num results for a claim, excluding the configured sites
func (g *GoogleSearcher) Search(ctx context.Context, claim string, num int) ([]model.SearchResult, error) {
	log := logger.FromContext(ctx)
	query := BuildQuery(claim, g.exclude)
	n := ClampResults(num)

	key := cache.Key("search", query, fmt.Sprint(n), g.safe, g.country, g.language)
	var cached []model.SearchResult
	if cache.GetJSON(g.cache, key, &cached) {
		log.Debug("search cache hit", zap.String("claim", claim))
		return cached, nil
	}

	call := g.service.Cse.List().
		Cx(g.engineID).
		Q(query).
		Num(int64(n))
	if g.safe != "" {
		call = call.Safe(g.safe)
	}
	if g.country != "" {
		call = call.Gl(g.country)
	}
	if g.language != "" {
		call = call.Lr(g.language)
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("custom search: %w", err)
	}

	results := convertResults(resp.Items)
	log.Debug("search completed", zap.String("claim", claim), zap.Int("results", len(results)))

	if err := cache.SetJSON(g.cache, key, results, g.cacheTTL); err != nil {
		log.Debug("search cache write failed", zap.Error(err))
	}
	return results, nil
}

// BuildQuery appends a -site: operator for every excluded site
func BuildQuery(claim string, exclude []string) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(claim))
	for _, site := range exclude {
		site = strings.TrimSpace(site)
		if site == "" {
			continue
		}
		b.WriteString(" -site:")
		b.WriteString(site)
	}
	return b.String()
}

// ClampResults keeps a requested result count within [1, MaxResults]
func ClampResults(n int) int {
	switch {
	case n < 1:
		return 1
	case n > MaxResults:
		return MaxResults
	default:
		return n
	}
}

func convertResults(items []*customsearch.Result) []model.SearchResult {
	results := make([]model.SearchResult, 0, len(items))
	for _, it := range items {
		if it == nil || it.Link == "" {
			continue
		}
		results = append(results, model.SearchResult{
			Title:       it.Title,
			Link:        it.Link,
			Snippet:     it.Snippet,
			DisplayLink: it.DisplayLink,
		})
	}
	return results
}
