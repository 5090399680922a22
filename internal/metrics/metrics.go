// Package metrics declares the board's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "board_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Reactions counts engine outcomes: created, switched or unchanged.
	Reactions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_reactions_total",
			Help: "Reaction engine outcomes by kind.",
		},
		[]string{"outcome", "kind"},
	)

	TaskTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_task_status_changes_total",
			Help: "Task saves by resulting status.",
		},
		[]string{"status"},
	)

	RateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "board_rate_limited_total",
			Help: "Requests rejected by the per-user rate limiter.",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequests)
	prometheus.MustRegister(HTTPDuration)
	prometheus.MustRegister(Reactions)
	prometheus.MustRegister(TaskTransitions)
	prometheus.MustRegister(RateLimited)
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
