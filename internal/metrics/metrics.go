// Package metrics exposes Prometheus instrumentation for the HTTP
// surface and the gym context resolver.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const prefix = "fitdesk"

var (
	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Authentication metrics
	AuthAttemptsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
	)

	AuthSuccessTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_success_total",
			Help: "Total number of successful authentications",
		},
	)

	SilentRefreshTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_silent_refresh_total",
			Help: "Total number of transparent session refreshes",
		},
	)

	// Access gate metrics
	GateRedirectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_gate_redirects_total",
			Help: "Total number of access gate redirects",
		},
		[]string{"decision"},
	)

	// Gym context metrics
	GymResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_gym_resolutions_total",
			Help: "Total number of gym context resolutions",
		},
		[]string{"outcome"},
	)

	GymSelectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_gym_selections_total",
			Help: "Total number of explicit gym switches",
		},
	)
)

// ObserveRequest records one completed HTTP request.
func ObserveRequest(method, path, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordGymResolution increments the resolution counter for an outcome
// ("ok", "empty" or "error").
func RecordGymResolution(outcome string) {
	GymResolutionsTotal.WithLabelValues(outcome).Inc()
}

// RecordGateRedirect increments the gate redirect counter.
func RecordGateRedirect(decision string) {
	GateRedirectsTotal.WithLabelValues(decision).Inc()
}
