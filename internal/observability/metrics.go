// Package observability exposes Prometheus metrics for the server.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the server's Prometheus collectors.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	GraphQLErrors   *prometheus.CounterVec
	LoaderBatches   prometheus.Counter
	LoaderKeys      prometheus.Counter
}

// NewMetrics registers the server collectors on the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shiptrack",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests processed, partitioned by path and status code.",
		}, []string{"path", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "shiptrack",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path"}),
		GraphQLErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shiptrack",
			Subsystem: "graphql",
			Name:      "errors_total",
			Help:      "GraphQL errors returned to clients, partitioned by code.",
		}, []string{"code"}),
		LoaderBatches: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "shiptrack",
			Subsystem: "loader",
			Name:      "batches_total",
			Help:      "Batch fetches dispatched by the user loader.",
		}),
		LoaderKeys: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "shiptrack",
			Subsystem: "loader",
			Name:      "keys_total",
			Help:      "Unique keys requested across all loader batches.",
		}),
	}
}
