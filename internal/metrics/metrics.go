package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   prometheus.CounterVec
	HTTPRequestDuration prometheus.HistogramVec

	// Cache metrics
	CacheHitsTotal   prometheus.CounterVec
	CacheMissesTotal prometheus.CounterVec

	// Rate limiting metrics
	RateLimitExceededTotal prometheus.CounterVec

	// Counting metrics
	ViewsTrackedTotal     prometheus.CounterVec
	ReactionsTrackedTotal prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Get returns the metrics instance, registering it on first use
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),
			CacheHitsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_hits_total",
					Help: "Total number of cache hits",
				},
				[]string{"cache_name"},
			),
			CacheMissesTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_misses_total",
					Help: "Total number of cache misses",
				},
				[]string{"cache_name"},
			),
			RateLimitExceededTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "rate_limit_exceeded_total",
					Help: "Total number of rate limited requests",
				},
				[]string{"endpoint", "method"},
			),
			ViewsTrackedTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "views_tracked_total",
					Help: "Total number of view tracking calls",
				},
				[]string{"unique"},
			),
			ReactionsTrackedTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "reactions_tracked_total",
					Help: "Total number of reaction tracking calls",
				},
				[]string{"unique"},
			),
		}
	})
	return instance
}

// RecordViewTracked counts a track call by whether it was a new unique
func RecordViewTracked(isNew bool) {
	Get().ViewsTrackedTotal.WithLabelValues(boolLabel(isNew)).Inc()
}

// RecordReactionTracked counts a react call by whether it was a new unique
func RecordReactionTracked(isNew bool) {
	Get().ReactionsTrackedTotal.WithLabelValues(boolLabel(isNew)).Inc()
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
