// Package metrics exposes Prometheus counters for the identification
// pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SamplesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "faident_samples_processed_total",
		Help: "Samples processed, labelled by outcome status.",
	}, []string{"status"})

	PeaksMatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "faident_peaks_matched_total",
		Help: "Observed peaks assigned to a reference compound.",
	})

	PeaksUnmatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "faident_peaks_unmatched_total",
		Help: "Observed peaks outside every tolerance window.",
	})

	ProcessingSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "faident_sample_processing_seconds",
		Help:    "Wall time per sample through the pipeline.",
		Buckets: prometheus.ExponentialBuckets(1e-5, 10, 6),
	})
)

// Handler returns the /metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
