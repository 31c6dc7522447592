// Package metrics exposes Prometheus instrumentation for the recommender.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Orchestrator
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_requests_total",
			Help: "Recommendation requests by requested intent and the strategy that answered",
		},
		[]string{"intent", "strategy"},
	)

	FallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_fallbacks_total",
			Help: "Fallback transitions taken by the orchestrator",
		},
		[]string{"from", "to"},
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommender_duration_seconds",
			Help:    "Time to produce a recommendation result",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"intent"},
	)

	RecommendationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_errors_total",
			Help: "Failed recommendation requests by error kind",
		},
		[]string{"intent", "kind"},
	)

	// Result cache
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommender_cache_hits_total",
			Help: "Result cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommender_cache_misses_total",
			Help: "Result cache misses",
		},
	)

	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_cache_errors_total",
			Help: "Result cache errors",
		},
		[]string{"operation"},
	)

	// Catalog
	CatalogCourses = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommender_catalog_courses",
			Help: "Courses in the current catalog snapshot",
		},
	)

	CatalogReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_catalog_reloads_total",
			Help: "Catalog reload attempts",
		},
		[]string{"status"},
	)

	SimilarityMatrixBuilds = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommender_similarity_matrix_builds_total",
			Help: "Similarity matrices computed for a new catalog snapshot",
		},
	)

	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"method", "route"},
	)
)

func RecordRecommendation(intent, strategy string, d time.Duration) {
	RecommendationsTotal.WithLabelValues(intent, strategy).Inc()
	RecommendationDuration.WithLabelValues(intent).Observe(d.Seconds())
}

func RecordFallback(from, to string) {
	FallbacksTotal.WithLabelValues(from, to).Inc()
}

func RecordError(intent, kind string) {
	RecommendationErrors.WithLabelValues(intent, kind).Inc()
}

func RecordCacheLookup(hit bool) {
	if hit {
		CacheHits.Inc()
		return
	}
	CacheMisses.Inc()
}

func RecordCatalogReload(courses int, err error) {
	if err != nil {
		CatalogReloads.WithLabelValues("failed").Inc()
		return
	}
	CatalogReloads.WithLabelValues("success").Inc()
	CatalogCourses.Set(float64(courses))
}

func RecordHTTPRequest(method, route string, status int, d time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
