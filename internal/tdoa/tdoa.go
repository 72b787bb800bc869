// Package tdoa computes the time-delay-only log-posterior contribution
// over a grid of sky directions.
package tdoa

import (
	"sync"

	"github.com/bayestar/skymap/internal/geometry"
	"github.com/bayestar/skymap/internal/pixelgrid"
)

// Detector is the subset of per-detector metadata needed for a
// time-delay-only localization.
type Detector struct {
	Location    [3]float64 // Earth-fixed geocentric, meters
	TOA         float64    // seconds, any epoch
	VarianceTOA float64    // seconds^2
}

// LogPosterior computes the un-normalized log-TDOA posterior at every
// direction in dirs: for each pixel, the expected arrival-time residual
// is formed per detector and the common arrival-time offset is
// analytically marginalized, leaving a weighted Gaussian log-likelihood
// over the residuals' deviation from their weighted mean.
//
// The first detector's TOA is used as the zero point; shifting all TOAs
// by a common constant leaves the result unchanged, since only
// dt_j - <dt>_w enters the likelihood.
func LogPosterior(dirs []pixelgrid.Direction, gmst float64, dets []Detector) []float64 {
	return LogPosteriorParallel(dirs, gmst, dets, 1)
}

// LogPosteriorParallel is the parallel form of LogPosterior, statically
// partitioning dirs into contiguous ranges across workers goroutines.
// Unlike the amplitude phase, the TDOA pass needs no per-worker
// quadrature workspace, so the partition here is plain data parallelism
// with no shared mutable state.
func LogPosteriorParallel(dirs []pixelgrid.Direction, gmst float64, dets []Detector, workers int) []float64 {
	p := make([]float64, len(dirs))
	if len(dets) == 0 || len(dirs) == 0 {
		return p
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(dirs) {
		workers = len(dirs)
	}

	weights := make([]float64, len(dets))
	var wSum float64
	for j, d := range dets {
		weights[j] = 1 / d.VarianceTOA
		wSum += weights[j]
	}
	t0 := dets[0].TOA

	chunk := (len(dirs) + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > len(dirs) {
			hi = len(dirs)
		}
		if lo >= hi {
			continue
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			dt := make([]float64, len(dets))
			for i := lo; i < hi; i++ {
				var wMean float64
				for j, d := range dets {
					dt[j] = (d.TOA - t0) + geometry.LightTravelDelay(d.Location, dirs[i], gmst)
					wMean += weights[j] * dt[j]
				}
				wMean /= wSum

				var chi2 float64
				for j := range dets {
					diff := dt[j] - wMean
					chi2 += weights[j] * diff * diff
				}
				p[i] = -0.5 * chi2
			}
		}(lo, hi)
	}
	wg.Wait()
	return p
}
