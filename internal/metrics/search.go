package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search engine Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aptdex",
			Name:      "search_requests_total",
			Help:      "Total number of search requests",
		},
		[]string{"status"},
	)

	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "aptdex",
			Name:      "search_duration_seconds",
			Help:      "End-to-end search request duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	ClaimQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aptdex",
			Name:      "claim_queries_total",
			Help:      "Per-claim vector queries by hierarchy domain and outcome",
		},
		[]string{"domain", "status"}, // status: ok / timeout / error
	)

	DegradedDomainsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aptdex",
			Name:      "degraded_domains_total",
			Help:      "Searches that lost a whole hierarchy domain to backend failure",
		},
		[]string{"domain"},
	)

	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aptdex",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"provider", "model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "aptdex",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "model"},
	)

	EmbeddingTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aptdex",
			Name:      "embedding_tokens_total",
			Help:      "Total tokens consumed by embedding requests",
		},
		[]string{"provider", "model", "type"}, // type: prompt / total
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aptdex",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"tier", "result"}, // tier: memory / store
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search and embedding metrics.
// Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(ClaimQueriesTotal)
	prometheus.MustRegister(DegradedDomainsTotal)
	prometheus.MustRegister(EmbeddingRequestsTotal)
	prometheus.MustRegister(EmbeddingRequestDuration)
	prometheus.MustRegister(EmbeddingTokensTotal)
	prometheus.MustRegister(EmbeddingCacheTotal)
	searchMetricsRegistered = true
}
