package metrics

import "github.com/prometheus/client_golang/prometheus"

// Listing engine Prometheus metrics.
var (
	ListingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "listing_requests_total",
			Help:      "Listing requests by resource, view and outcome",
		},
		[]string{"resource", "view", "status"},
	)

	ListingStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "listing_stage_duration_seconds",
			Help:      "Duration of listing pipeline stages in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"stage"},
	)

	SearchStrategyTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "search_strategy_total",
			Help:      "Search cascade outcomes by strategy",
		},
		[]string{"strategy"}, // empty / fuzzy / exact_first / contains
	)

	UnknownFieldsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "unknown_fields_total",
			Help:      "References to undeclared fields that were dropped",
		},
		[]string{"kind"}, // filter / sort / column / group / summary
	)

	ListCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "list_cache_total",
			Help:      "Listing response cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	BackendErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "backend_errors_total",
			Help:      "Query executor failures by operation",
		},
		[]string{"op"},
	)
)

var listingMetricsRegistered bool

// RegisterListingMetrics registers listing engine metrics. Must be called once from main.
func RegisterListingMetrics() {
	if listingMetricsRegistered {
		return
	}
	prometheus.MustRegister(ListingRequestsTotal)
	prometheus.MustRegister(ListingStageDuration)
	prometheus.MustRegister(SearchStrategyTotal)
	prometheus.MustRegister(UnknownFieldsTotal)
	prometheus.MustRegister(ListCacheTotal)
	prometheus.MustRegister(BackendErrorsTotal)
	listingMetricsRegistered = true
}
