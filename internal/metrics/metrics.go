// Package metrics holds the Prometheus collectors of the ingestion path.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EntriesCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "nutritiontracker",
			Name:      "entries_created_total",
			Help:      "Entries persisted by the ingestion flow.",
		},
	)

	ExtractionFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nutritiontracker",
			Name:      "extraction_failures_total",
			Help:      "Extraction calls that failed, by error kind.",
		},
		[]string{"kind"},
	)

	ExtractionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "nutritiontracker",
			Name:      "extraction_duration_seconds",
			Help:      "Latency of calls to the extraction service.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
	)
)
