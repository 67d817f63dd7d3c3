package metrics

import (
	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Platform transport Prometheus metrics.
var (
	TransportRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "citrination",
			Name:      "transport_requests_total",
			Help:      "Total number of requests sent to the platform",
		},
		[]string{"method", "route", "status"},
	)

	TransportRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "citrination",
			Name:      "transport_request_duration_seconds",
			Help:      "Platform request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "route"},
	)

	TransportErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "citrination",
			Name:      "transport_errors_total",
			Help:      "Total platform requests that got no response",
		},
		[]string{"method", "route", "error_type"},
	)

	TransportRateLimitWaitSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "citrination",
			Name:      "transport_rate_limit_wait_seconds",
			Help:      "Time spent waiting for the client-side rate limiter",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)
)

// RegisterTransportMetrics registers platform transport metrics on reg.
// Collectors already registered on reg are kept.
func RegisterTransportMetrics(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		TransportRequestsTotal,
		TransportRequestDuration,
		TransportErrorsTotal,
		TransportRateLimitWaitSeconds,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return errors.Wrap(err, "register transport metrics")
		}
	}
	return nil
}
