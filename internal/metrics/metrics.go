// Package metrics exposes the Prometheus collectors for the sky-map
// pipeline. The core exposes no HTTP surface of its own; a host process
// registers these collectors with its own registry and serves them
// however it serves its own metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	evaluationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "skymap_evaluation_duration_seconds",
			Help:    "Wall-clock duration of one sky-map evaluation call.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"entry_point"},
	)

	pixelsPruned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "skymap_pixels_pruned_total",
			Help: "Number of pixels excluded from the amplitude phase by the top-K mass threshold.",
		},
	)

	pixelFailuresByKind = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skymap_pixel_failures_total",
			Help: "Per-pixel amplitude-phase failures, by status kind.",
		},
		[]string{"kind"},
	)

	latticePointsSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "skymap_lattice_points_skipped_total",
			Help: "Amplitude-phase lattice points abandoned per the boundary policy (A >= 0, quadrature failure, or non-positive integral), across all pixels.",
		},
	)
)

func init() {
	prometheus.MustRegister(evaluationDuration)
	prometheus.MustRegister(pixelsPruned)
	prometheus.MustRegister(pixelFailuresByKind)
	prometheus.MustRegister(latticePointsSkipped)
}

// RecordEvaluation records the duration of one full evaluation call and
// the number of pixels pruned by the top-K mass threshold.
func RecordEvaluation(entryPoint string, d time.Duration, pruned int) {
	evaluationDuration.WithLabelValues(entryPoint).Observe(d.Seconds())
	pixelsPruned.Add(float64(pruned))
}

// RecordPixelFailure records one per-pixel amplitude-phase failure,
// labeled by its status kind.
func RecordPixelFailure(kind string) {
	pixelFailuresByKind.WithLabelValues(kind).Inc()
}

// RecordLatticePointsSkipped records n lattice points abandoned within
// one pixel's amplitude evaluation, regardless of whether the pixel's
// overall status was success.
func RecordLatticePointsSkipped(n int) {
	if n > 0 {
		latticePointsSkipped.Add(float64(n))
	}
}
