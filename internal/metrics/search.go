package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search and lookup Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prodex",
			Name:      "search_requests_total",
			Help:      "Total number of search requests",
		},
		[]string{"strategy"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "prodex",
			Name:      "search_duration_seconds",
			Help:      "End-to-end search duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"strategy"},
	)

	LookupCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prodex",
			Name:      "lookup_cache_total",
			Help:      "Barcode lookup cache outcomes",
		},
		[]string{"result"}, // "hit" / "miss" / "stale"
	)

	LookupSlowTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "prodex",
			Name:      "lookup_slow_total",
			Help:      "Barcode repository round trips exceeding the SLA threshold",
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(LookupCacheTotal)
	prometheus.MustRegister(LookupSlowTotal)
	searchMetricsRegistered = true
}
