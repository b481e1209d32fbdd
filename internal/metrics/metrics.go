// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neuralpress_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "neuralpress_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "route"},
	)

	// Business metrics
	KeysIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "neuralpress_keys_issued_total",
			Help: "Total API keys issued",
		},
	)

	PostsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neuralpress_posts_published_total",
			Help: "Total posts published",
		},
		[]string{"tier"},
	)

	QuotaRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neuralpress_quota_rejections_total",
			Help: "Publish attempts rejected by the daily limit",
		},
		[]string{"tier"},
	)

	PublishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neuralpress_publish_failures_total",
			Help: "Publish attempts that failed, by reason",
		},
		[]string{"reason"}, // "validation", "auth", "storage"
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neuralpress_rate_limit_hits_total",
			Help: "Requests rejected by the issuance limiter",
		},
		[]string{"bucket"},
	)

	RateLimitErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "neuralpress_rate_limit_errors_total",
			Help: "Limiter backend failures (request allowed)",
		},
	)
)
