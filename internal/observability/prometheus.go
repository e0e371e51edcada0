package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TranslationRequestCount tracks the total number of translation requests
	TranslationRequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "translation_requests_total",
			Help: "The total number of translation requests processed",
		},
		[]string{"endpoint", "status"},
	)

	// TranslationLatency tracks the latency of translation request processing
	TranslationLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "translation_request_latency_seconds",
			Help:    "The duration of translation request processing in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint"},
	)

	// TranslationMethodCount tracks resolutions by method
	TranslationMethodCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "translation_resolutions_total",
			Help: "The total number of translation resolutions by method",
		},
		[]string{"method", "target_lang"},
	)

	// CacheOperationCount tracks response cache hits and misses
	CacheOperationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "translation_cache_operations_total",
			Help: "The total number of response cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	// RateLimitRejectionCount tracks requests rejected by the rate limiter
	RateLimitRejectionCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "translation_rate_limit_rejections_total",
			Help: "The total number of requests rejected by the rate limiter",
		},
		[]string{"endpoint"},
	)

	// BatchSizeHistogram tracks the number of items per batch request
	BatchSizeHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "translation_batch_size",
			Help:    "The number of items per batch translation request",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
		},
		[]string{"endpoint"},
	)
)

// RecordTranslationRequest records a processed request with duration and status
func RecordTranslationRequest(endpoint, status string, duration float64) {
	if status == "" {
		status = "success"
	}
	TranslationRequestCount.WithLabelValues(endpoint, status).Inc()
	TranslationLatency.WithLabelValues(endpoint).Observe(duration)
}

// RecordTranslationMethod records the resolution method used for a translation
func RecordTranslationMethod(method, targetLang string) {
	if method == "" {
		method = "unknown"
	}
	TranslationMethodCount.WithLabelValues(method, targetLang).Inc()
}

// RecordCacheOperation records a response cache lookup outcome ("hit" or "miss")
func RecordCacheOperation(outcome string) {
	CacheOperationCount.WithLabelValues(outcome).Inc()
}

// RecordRateLimitRejection records a request rejected by the rate limiter
func RecordRateLimitRejection(endpoint string) {
	RateLimitRejectionCount.WithLabelValues(endpoint).Inc()
}

// RecordBatchSize records the number of items in a batch request
func RecordBatchSize(endpoint string, size int) {
	BatchSizeHistogram.WithLabelValues(endpoint).Observe(float64(size))
}
