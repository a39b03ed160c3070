package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pawcare"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status class.",
		},
		[]string{"route", "status"},
	)

	stepTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_step_transitions_total",
			Help:      "Wizard step changes by source and target step.",
		},
		[]string{"from", "to"},
	)

	guardRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_guard_rejections_total",
			Help:      "Forward navigation attempts refused by the step guard.",
		},
		[]string{"step"},
	)

	submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_submissions_total",
			Help:      "Booking submissions by result (created, incomplete, invalid, rejected, throttled).",
		},
		[]string{"result"},
	)

	catalogRequests = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_request_duration_seconds",
			Help:      "Latency of catalog API calls by operation and outcome.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation", "outcome"},
	)

	staleResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_stale_results_total",
			Help:      "Fetched results dropped because the draft moved on while they were in flight.",
		},
		[]string{"query"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			stepTransitions,
			guardRejections,
			submissions,
			catalogRequests,
			staleResults,
		)
	})
}

func IncHTTP(route, status string) {
	httpRequests.WithLabelValues(route, status).Inc()
}

func IncStepTransition(from, to string) {
	stepTransitions.WithLabelValues(from, to).Inc()
}

func IncGuardRejection(step string) {
	guardRejections.WithLabelValues(step).Inc()
}

func IncSubmission(result string) {
	submissions.WithLabelValues(result).Inc()
}

func ObserveCatalog(operation, outcome string, seconds float64) {
	catalogRequests.WithLabelValues(operation, outcome).Observe(seconds)
}

func IncStaleResult(query string) {
	staleResults.WithLabelValues(query).Inc()
}
