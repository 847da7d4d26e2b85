// Package metrics holds the Prometheus collectors shared by the search core
// and the HTTP/gRPC servers.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SearchQueries counts statements issued by member searches, by kind
	// ("content" or "count") and count strategy.
	SearchQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "querydsl_search_queries_total",
			Help: "Total number of queries issued by member searches",
		},
		[]string{"kind", "strategy"},
	)
	// CountQueriesSkipped counts paged searches that inferred the total
	// without a count query.
	CountQueriesSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "querydsl_count_queries_skipped_total",
			Help: "Total number of paged searches answered without a count query",
		},
	)
	// RequestTotal counts HTTP requests by method, path prefix and status.
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "querydsl_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	// RequestDuration is the latency of HTTP requests.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "querydsl_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	// RPCTotal counts gRPC calls by method and status code.
	RPCTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "querydsl_grpc_requests_total",
			Help: "Total number of gRPC requests",
		},
		[]string{"method", "code"},
	)
	// EventsPublished counts change events handed to the publisher, by topic.
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "querydsl_events_published_total",
			Help: "Total number of change events published",
		},
		[]string{"topic"},
	)
)

// Handler returns the Prometheus HTTP handler for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
