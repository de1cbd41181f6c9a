package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ppiankov/claimcheck/internal/cache"
	"github.com/ppiankov/claimcheck/internal/logger"
	"github.com/ppiankov/claimcheck/internal/metrics"
	"github.com/ppiankov/claimcheck/internal/util"
	"github.com/ppiankov/claimcheck/internal/worker"
	"go.uber.org/zap"
)

// DefaultMaxPageChars caps the text kept per evidence page
const DefaultMaxPageChars = 20000

// ErrDisallowed is returned when robots.txt forbids fetching a page
var ErrDisallowed = errors.New("disallowed by robots.txt")

// PageReader downloads evidence pages and extracts their main text
type PageReader struct {
	fetcher  *Fetcher
	robots   *util.RobotsChecker
	limiter  *worker.Limiter
	cache    cache.Cache
	cacheTTL time.Duration
	maxChars int
}

// PageReaderOption configures a PageReader
type PageReaderOption func(*PageReader)

// WithRobots enables robots.txt checks
func WithRobots(robots *util.RobotsChecker) PageReaderOption {
	return func(r *PageReader) { r.robots = robots }
}

// WithLimiter paces requests per domain
func WithLimiter(limiter *worker.Limiter) PageReaderOption {
	return func(r *PageReader) { r.limiter = limiter }
}

// WithPageCache caches extracted page text
func WithPageCache(c cache.Cache, ttl time.Duration) PageReaderOption {
	return func(r *PageReader) {
		r.cache = c
		r.cacheTTL = ttl
	}
}

// NewPageReader creates a page reader. maxChars <= 0 uses DefaultMaxPageChars.
func NewPageReader(fetcher *Fetcher, maxChars int, opts ...PageReaderOption) *PageReader {
	if maxChars <= 0 {
		maxChars = DefaultMaxPageChars
	}
	r := &PageReader{
		fetcher:  fetcher,
		cache:    cache.NopCache{},
		maxChars: maxChars,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// PageText returns the main text of the page at rawURL. An empty string with a
// nil error means the page had no extractable text.
func (r *PageReader) PageText(ctx context.Context, rawURL string) (string, error) {
	log := logger.FromContext(ctx)

	key := cache.Key("page", rawURL)
	if data, ok := r.cache.Get(key); ok {
		metrics.PageFetchTotal.WithLabelValues("cached").Inc()
		return string(data), nil
	}

	if r.robots != nil {
		allowed, delay, err := r.robots.CanFetch(ctx, rawURL)
		if err != nil {
			metrics.PageFetchTotal.WithLabelValues("error").Inc()
			return "", fmt.Errorf("robots check: %w", err)
		}
		if !allowed {
			metrics.PageFetchTotal.WithLabelValues("disallowed").Inc()
			log.Debug("page disallowed by robots.txt", zap.String("url", rawURL))
			return "", ErrDisallowed
		}
		if r.limiter != nil {
			r.limiter.ApplyCrawlDelay(rawURL, delay)
		}
	}

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx, rawURL); err != nil {
			metrics.PageFetchTotal.WithLabelValues("error").Inc()
			return "", fmt.Errorf("rate limit: %w", err)
		}
	}

	start := time.Now()
	result, err := r.fetcher.FetchWithRetry(ctx, rawURL)
	metrics.StageDuration.WithLabelValues("page_fetch").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.PageFetchTotal.WithLabelValues("error").Inc()
		return "", err
	}

	text := ExtractPageText(result.HTML, r.maxChars)
	if text == "" {
		metrics.PageFetchTotal.WithLabelValues("empty").Inc()
	} else {
		metrics.PageFetchTotal.WithLabelValues("ok").Inc()
	}

	if err := r.cache.Set(key, []byte(text), r.cacheTTL); err != nil {
		log.Debug("page cache write failed", zap.String("url", rawURL), zap.Error(err))
	}
	return text, nil
}
