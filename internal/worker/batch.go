package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/claimcheck/internal/model"
)

// postAPIKey is the limiter bucket shared by all post fetches
const postAPIKey = "post-api"

// Checker fact-checks a single post URL
type Checker interface {
	Check(ctx context.Context, postURL string) (*model.Report, error)
}

// CheckJob represents a post fact-check job
type CheckJob struct {
	URL     string
	Checker Checker
	Limiter *Limiter
}

// Execute executes the check job
func (j *CheckJob) Execute(ctx context.Context) Result {
	if j.Limiter != nil {
		if err := j.Limiter.WaitKey(ctx, postAPIKey); err != nil {
			return &CheckResult{URL: j.URL, Error: fmt.Errorf("rate limit: %w", err)}
		}
	}

	report, err := j.Checker.Check(ctx, j.URL)
	if err != nil {
		return &CheckResult{URL: j.URL, Error: err}
	}
	return &CheckResult{URL: j.URL, Report: report}
}

// CheckResult represents the result of a check job
type CheckResult struct {
	URL    string
	Report *model.Report
	Error  error
}

// GetError returns the error from the check result
func (r *CheckResult) GetError() error {
	return r.Error
}

// BatchProcessor fact-checks multiple posts concurrently
type BatchProcessor struct {
	checker     Checker
	concurrency int
	limiter     *Limiter
}

// NewBatchProcessor creates a new batch processor. Post fetches share one
// token bucket of rps/burst; rps <= 0 disables it.
func NewBatchProcessor(checker Checker, concurrency int, rps float64, burst int) *BatchProcessor {
	var limiter *Limiter
	if rps > 0 {
		limiter = NewLimiter(rps, burst)
	}
	return &BatchProcessor{
		checker:     checker,
		concurrency: concurrency,
		limiter:     limiter,
	}
}

// ProcessURLs checks multiple posts concurrently; results follow input order
func (b *BatchProcessor) ProcessURLs(ctx context.Context, urls []string) []*CheckResult {
	if len(urls) == 0 {
		return []*CheckResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	indexes := make([]int, len(urls))
	for i, u := range urls {
		indexes[i] = pool.Submit(&CheckJob{
			URL:     u,
			Checker: b.checker,
			Limiter: b.limiter,
		})
	}

	results := pool.Wait()

	checkResults := make([]*CheckResult, len(urls))
	for i, u := range urls {
		idx := indexes[i]
		if idx < 0 {
			checkResults[i] = &CheckResult{URL: u, Error: fmt.Errorf("not submitted: %w", context.Cause(ctx))}
			continue
		}
		cr, ok := results[idx].(*CheckResult)
		if !ok {
			cr = &CheckResult{URL: u, Error: results[idx].GetError()}
		}
		checkResults[i] = cr
	}

	return checkResults
}

// ProcessFile reads post URLs from a file and checks them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*CheckResult, error) {
	urls, err := ReadURLsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read URLs: %w", err)
	}

	return b.ProcessURLs(ctx, urls), nil
}

// ReadURLsFromFile reads URLs from a file (one per line)
func ReadURLsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var urls []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			urls = append(urls, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return urls, nil
}
