package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Queries: запросы к рекомендациям по типу (title|genre|genre_exact) и исходу.
	Queries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_queries_total",
			Help: "Recommendation queries by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	BuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "movierec_build_duration_seconds",
			Help:    "Duration of catalog + feature + matrix builds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
	)

	BuildFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "movierec_build_failures_total",
			Help: "Failed catalog builds",
		},
	)

	CatalogEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "movierec_catalog_entries",
			Help: "Entries in the active catalog snapshot",
		},
	)

	VocabularySize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "movierec_vocabulary_terms",
			Help: "Terms in the active feature vocabulary",
		},
	)

	DroppedRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_dropped_records_total",
			Help: "Source records dropped by the loader",
		},
		[]string{"reason"},
	)

	// PosterLookups: обращения к поставщику постеров: ok|miss|fallback|cache.
	PosterLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_poster_lookups_total",
			Help: "Poster lookups by outcome",
		},
		[]string{"outcome"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movierec_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)
