// Package metrics holds the Prometheus collectors for fact-check runs and the
// ops server that exposes them.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "claimcheck"

// Fact-check Prometheus metrics.
var (
	ChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checks_total",
			Help:      "Total fact checks by verdict",
		},
		[]string{"verdict"},
	)

	ClaimsExtractedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "claims_extracted_total",
			Help:      "Total candidate claims returned by the extractor",
		},
	)

	EvidenceRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evidence_records_total",
			Help:      "Total evidence records by aggregation bucket",
		},
		[]string{"bucket"},
	)

	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"stage"},
	)

	PageFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_fetch_total",
			Help:      "Evidence page fetches by outcome",
		},
		[]string{"outcome"}, // "ok" / "empty" / "error" / "disallowed" / "cached"
	)

	CacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_total",
			Help:      "Cache lookups by layer and result",
		},
		[]string{"layer", "result"}, // result: "hit" / "miss"
	)

	LLMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "LLM completions by provider, task and status",
		},
		[]string{"provider", "task", "status"},
	)
)

var registerOnce sync.Once

// Register registers the fact-check metrics with the default registry.
// Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			ChecksTotal,
			ClaimsExtractedTotal,
			EvidenceRecordsTotal,
			StageDuration,
			PageFetchTotal,
			CacheTotal,
			LLMRequestsTotal,
		)
	})
}
