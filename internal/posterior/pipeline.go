// Package posterior sequences the full time-delay + amplitude sky-map
// evaluation: TDOA pass, top-K pixel selection by mass, parallel
// amplitude phase, combination, and normalization.
package posterior

import (
	"context"
	"log/slog"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/bayestar/skymap/internal/amplitude"
	"github.com/bayestar/skymap/internal/logsumexp"
	"github.com/bayestar/skymap/internal/metrics"
	"github.com/bayestar/skymap/internal/pixelgrid"
	"github.com/bayestar/skymap/internal/quadrature"
	"github.com/bayestar/skymap/internal/radial"
	"github.com/bayestar/skymap/internal/skyerr"
	"github.com/bayestar/skymap/internal/tdoa"
)

// TopMassFraction is the running-sum threshold used to select the
// amplitude-phase pixel subset: tuned, not derived from first
// principles.
const TopMassFraction = 0.9999

// Request holds every input to one full evaluation. Logger may be nil,
// in which case a no-op logger is used.
type Request struct {
	NPix        int
	GMST        float64
	TDOA        []tdoa.Detector
	Amplitude   []amplitude.Detector
	LatticeCfg  amplitude.LatticeConfig
	MinDistance float64
	MaxDistance float64
	Prior       radial.Prior
	Logger      *slog.Logger
}

// Result is the outcome of a successful evaluation.
type Result struct {
	Map    []float64
	Pruned int
}

// Run executes the full pipeline: TDOA pass, top-K pixel selection,
// parallel amplitude phase, combination, and normalization.
func Run(ctx context.Context, req Request) (Result, skyerr.Status) {
	logger := req.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(discardWriter{}, nil))
	}
	start := time.Now()

	n, st := pixelgrid.ResolutionFromNpix(req.NPix)
	if !st.IsOK() {
		return Result{}, st
	}
	if req.Prior != radial.UniformInLogDistance && req.Prior != radial.UniformInVolume {
		return Result{}, skyerr.Newf(skyerr.UnrecognizedPrior, "prior value %d is outside the documented enum", req.Prior)
	}

	dirs := pixelgrid.Directions(n)
	logP := tdoa.LogPosteriorParallel(dirs, req.GMST, req.TDOA, runtime.GOMAXPROCS(0))

	perm := logsumexp.SortDescending(logP)
	k := topKByMass(logP, perm, TopMassFraction)
	pruned := len(logP) - k

	if len(req.Amplitude) > 0 {
		bounds := amplitude.Bounds{MinDistance: req.MinDistance, MaxDistance: req.MaxDistance, Prior: req.Prior}
		statuses := runAmplitudePhase(dirs, req.GMST, req.Amplitude, req.LatticeCfg, bounds, perm[:k], logP)

		if s := skyerr.First(statuses); !s.IsOK() {
			return Result{}, s
		}
	}

	for _, idx := range perm[k:] {
		logP[idx] = math.Inf(-1)
	}

	perm = logsumexp.SortDescending(logP)
	if est := logsumexp.ExpNormalize(logP, perm); !est.IsOK() {
		return Result{}, est
	}

	metrics.RecordEvaluation(entryPointLabel(len(req.Amplitude) > 0), time.Since(start), pruned)
	logger.Info("sky-map evaluation complete",
		"npix", req.NPix, "resolution", n, "pruned", pruned, "amplitude_evaluated", k)

	return Result{Map: logP, Pruned: pruned}, skyerr.Success
}

// runAmplitudePhase evaluates the amplitude log-posterior for the top-K
// pixels in parallel and adds each contribution into logP in place.
// One goroutine runs per pixel, bounded by a semaphore to GOMAXPROCS,
// each owning a private quadrature.Workspace checked out of a pool and
// writing into its own unique slot.
func runAmplitudePhase(dirs []pixelgrid.Direction, gmst float64, dets []amplitude.Detector, cfg amplitude.LatticeConfig, bounds amplitude.Bounds, topK []int, logP []float64) []skyerr.Status {
	statuses := make([]skyerr.Status, len(topK))
	sem := make(chan struct{}, runtime.GOMAXPROCS(0))
	var wg sync.WaitGroup

	workspaces := make(chan *quadrature.Workspace, runtime.GOMAXPROCS(0))
	for i := 0; i < runtime.GOMAXPROCS(0); i++ {
		workspaces <- quadrature.NewWorkspace(quadrature.DefaultMaxIntervals)
	}

	for rank, idx := range topK {
		wg.Add(1)
		sem <- struct{}{}
		go func(rank, idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			ws := <-workspaces
			defer func() { workspaces <- ws }()

			contribution, skipped, st := amplitude.LogPosterior(dirs[idx], gmst, dets, cfg, bounds, ws)
			statuses[rank] = st
			metrics.RecordLatticePointsSkipped(skipped)
			if !st.IsOK() {
				metrics.RecordPixelFailure(st.Kind.String())
				return
			}
			logP[idx] += contribution
		}(rank, idx)
	}

	wg.Wait()
	return statuses
}

// topKByMass scans perm (a descending-value permutation of logP) in
// order, accumulating exp(logP) relative to the total over all pixels, and
// returns the number of leading pixels whose cumulative mass reaches
// fraction of the total.
func topKByMass(logP []float64, perm []int, fraction float64) int {
	if len(perm) == 0 {
		return 0
	}
	total := logsumexp.Reduce(logP)

	var running float64
	for k, idx := range perm {
		running += math.Exp(logP[idx] - total)
		if running >= fraction {
			return k + 1
		}
	}
	return len(perm)
}

func entryPointLabel(hasAmplitude bool) string {
	if hasAmplitude {
		return "tdoa_snr"
	}
	return "tdoa"
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
