package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recommendation Prometheus metrics.
var (
	RecommendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shelfmind",
			Name:      "recommend_requests_total",
			Help:      "Total number of recommendation requests",
		},
		[]string{"strategy", "status"},
	)

	RecommendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shelfmind",
			Name:      "recommend_duration_seconds",
			Help:      "Recommendation request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"strategy"},
	)

	RecommendPoolSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shelfmind",
			Name:      "recommend_pool_size",
			Help:      "Candidate pool size per recommendation request",
			Buckets:   []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"strategy"},
	)
)

var recMetricsRegistered bool

// RegisterRecommendMetrics registers recommendation metrics. Must be called once from main.
func RegisterRecommendMetrics() {
	if recMetricsRegistered {
		return
	}
	prometheus.MustRegister(RecommendRequestsTotal)
	prometheus.MustRegister(RecommendDuration)
	prometheus.MustRegister(RecommendPoolSize)
	recMetricsRegistered = true
}
