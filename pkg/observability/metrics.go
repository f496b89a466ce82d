// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the docsim service.
package observability

import "github.com/prometheus/client_golang/prometheus"

// LatencyBuckets defines histogram buckets for embedding and vector store
// calls, ranging from 5ms to 30s.
var LatencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

var (
	// RequestsTotal counts all HTTP requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docsim_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docsim_request_duration_seconds",
			Help:    "Request duration",
			Buckets: LatencyBuckets,
		},
		[]string{"method"},
	)

	// EmbeddingRequestsTotal counts embedding calls by model and outcome.
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docsim_embedding_requests_total",
			Help: "Embedding requests",
		},
		[]string{"model", "status"},
	)

	// EmbeddingLatency records embedding call latency in seconds.
	EmbeddingLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docsim_embedding_latency_seconds",
			Help:    "Embedding latency",
			Buckets: LatencyBuckets,
		},
		[]string{"model"},
	)

	// EmbeddingCacheTotal counts embedding cache lookups by result (hit/miss).
	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docsim_embedding_cache_total",
			Help: "Embedding cache lookups",
		},
		[]string{"result"},
	)

	// StoreOperationsTotal counts vector store backend operations.
	StoreOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docsim_store_operations_total",
			Help: "Vector store operations",
		},
		[]string{"backend", "op", "status"},
	)

	// StoreLatency records vector store backend latency in seconds.
	StoreLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docsim_store_latency_seconds",
			Help:    "Vector store latency",
			Buckets: LatencyBuckets,
		},
		[]string{"backend", "op"},
	)

	// DocumentsIndexedTotal counts documents written to a collection.
	DocumentsIndexedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "docsim_documents_indexed_total",
			Help: "Documents indexed",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		EmbeddingRequestsTotal,
		EmbeddingLatency,
		EmbeddingCacheTotal,
		StoreOperationsTotal,
		StoreLatency,
		DocumentsIndexedTotal,
	)
}

// StatusLabel returns "error" for a non-nil error and "success" otherwise.
func StatusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
