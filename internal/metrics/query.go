package metrics

import "github.com/prometheus/client_golang/prometheus"

// Query path Prometheus metrics.
var (
	StoreQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "survivor",
			Name:      "store_query_duration_seconds",
			Help:      "Snapshot query duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"network", "entity", "status"},
	)

	QueryRecordsReturned = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "survivor",
			Name:      "query_records_returned",
			Help:      "Records returned per snapshot query",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
		},
		[]string{"network", "entity"},
	)

	QueryCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "survivor",
			Name:      "query_cache_total",
			Help:      "Query cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	DataAnomaliesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "survivor",
			Name:      "data_anomalies_total",
			Help:      "Stored records that failed to materialize",
		},
		[]string{"network", "entity"},
	)
)

var queryMetricsRegistered bool

// RegisterQueryMetrics registers query path metrics. Must be called once from main.
func RegisterQueryMetrics() {
	if queryMetricsRegistered {
		return
	}
	prometheus.MustRegister(StoreQueryDuration)
	prometheus.MustRegister(QueryRecordsReturned)
	prometheus.MustRegister(QueryCacheTotal)
	prometheus.MustRegister(DataAnomaliesTotal)
	queryMetricsRegistered = true
}
