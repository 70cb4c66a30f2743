package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~20s
		},
		[]string{"method", "route", "status"},
	)

	upstreamLatencySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_latency_seconds",
			Help:    "Latency of upstream calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"upstream"},
	)

	buildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_build_info",
			Help: "Build information for the binary.",
		},
		[]string{"version"},
	)

	searchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_requests_total",
			Help: "Restaurant searches by request shape and outcome.",
		},
		[]string{"shape", "outcome"},
	)

	backendProbes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_probe_total",
			Help: "Liveness probes after a failed search, by classification.",
		},
		[]string{"result"},
	)

	signupAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signup_attempts_total",
			Help: "Signup attempts by outcome.",
		},
		[]string{"outcome"},
	)

	locationSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "location_submissions_total",
			Help: "Location submissions by outcome.",
		},
		[]string{"outcome"},
	)
)

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	st := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, st).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st).Observe(durationSeconds)
}

func ObserveUpstreamLatency(upstream string, durationSeconds float64) {
	upstreamLatencySeconds.WithLabelValues(upstream).Observe(durationSeconds)
}

// outcome: success|empty|error|status|invalid
func IncSearch(shape, outcome string) {
	searchRequests.WithLabelValues(shape, outcome).Inc()
}

// result: up|error|down
func IncProbe(result string) {
	backendProbes.WithLabelValues(result).Inc()
}

func IncSignup(outcome string) {
	signupAttempts.WithLabelValues(outcome).Inc()
}

func IncLocationSubmission(outcome string) {
	locationSubmissions.WithLabelValues(outcome).Inc()
}

func ExposeBuildInfo(version string) {
	if version == "" {
		version = "dev"
	}
	buildInfo.WithLabelValues(version).Set(1)
}
