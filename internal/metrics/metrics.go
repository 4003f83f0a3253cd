package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "lexai"

// Provider metrics cover both embedding and generation calls.
var (
	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Total number of model provider requests",
		},
		[]string{"provider", "operation", "status"}, // operation: embed / generate
	)

	ProviderRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Model provider request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider", "operation"},
	)

	ProviderTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_tokens_total",
			Help:      "Total tokens consumed by model providers",
		},
		[]string{"provider", "operation", "type"}, // type: prompt / completion
	)

	ProviderErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_errors_total",
			Help:      "Total model provider errors by failure kind",
		},
		[]string{"provider", "operation", "kind"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_cache_total",
			Help:      "Query embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

// Query and corpus metrics.
var (
	QueryOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_outcomes_total",
			Help:      "Answered and failed queries by jurisdiction and failure kind",
		},
		[]string{"jurisdiction", "status", "kind"},
	)

	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "End-to-end query handling duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"jurisdiction", "status"},
	)

	CorpusLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "corpus_loads_total",
			Help:      "Corpus loads by source scheme and result",
		},
		[]string{"source", "result"},
	)

	CorpusLoadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "corpus_load_duration_seconds",
			Help:      "Corpus load duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"source"},
	)

	CorpusCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "corpus_cache_total",
			Help:      "Corpus cache hits and misses",
		},
		[]string{"result"},
	)
)

var registerOnce sync.Once

// Register registers all lexai metrics with the default registry. Safe to call repeatedly.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			ProviderRequestsTotal,
			ProviderRequestDuration,
			ProviderTokensTotal,
			ProviderErrorsTotal,
			EmbeddingCacheTotal,
			QueryOutcomesTotal,
			QueryDuration,
			CorpusLoadsTotal,
			CorpusLoadDuration,
			CorpusCacheTotal,
			httpRequestDuration,
			httpRequestsTotal,
			httpInFlight,
		)
	})
}
