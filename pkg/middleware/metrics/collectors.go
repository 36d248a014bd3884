package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	responseTime = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "response_time",
			Help:    "http response time.",
			Buckets: []float64{0.5, 1, 5, 10, 30, 60},
		},
	)

	totalHttpRequestsToUri = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "total_http_requests_to_uri", Help: "http requests to uri"},
		[]string{"code", "uri", "method"},
	)

	totalHttpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "total_http_requests", Help: "http requests by code, and method"},
		[]string{"code", "method"},
	)

	bridgeCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "bridge_calls_total", Help: "bridged function calls by module, export, method and outcome"},
		[]string{"module", "export", "method", "outcome"},
	)

	bridgeCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bridge_call_duration_seconds",
			Help:    "time spent binding, invoking and encoding a bridged call.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"module", "export"},
	)
)

func init() {
	prometheus.MustRegister(
		responseTime,
		totalHttpRequestsToUri,
		totalHttpRequests,
		bridgeCalls,
		bridgeCallDuration,
	)
}
