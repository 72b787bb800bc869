package amplitude

import (
	"math"
	"testing"

	"github.com/bayestar/skymap/internal/pixelgrid"
	"github.com/bayestar/skymap/internal/quadrature"
	"github.com/bayestar/skymap/internal/radial"
	"github.com/bayestar/skymap/internal/skyerr"
)

func identityResponse() [3][3]float32 {
	return [3][3]float32{
		{1, 0, 0},
		{0, -1, 0},
		{0, 0, 0},
	}
}

func threeDetectors() []Detector {
	sites := [3][3]float64{
		{-2161414.9, -3834695.2, 4600350.2},
		{-74276.0, -5496283.7, 3224257.2},
		{4546374.1, 842989.7, 4378576.9},
	}
	dets := make([]Detector, 3)
	for j := range dets {
		dets[j] = Detector{
			Response: identityResponse(),
			Location: sites[j],
			Horizon:  1.0,
			SNR:      complex(10, 0),
		}
	}
	return dets
}

func TestLogPosteriorRejectsUnrecognizedPrior(t *testing.T) {
	dets := threeDetectors()
	ws := quadrature.NewWorkspace(quadrature.DefaultMaxIntervals)
	bounds := Bounds{MinDistance: 0.001, MaxDistance: 1, Prior: radial.Prior(99)}

	_, _, st := LogPosterior(pixelgrid.Direction{Theta: 1, Phi: 1}, 0, dets, DefaultLatticeConfig, bounds, ws)
	if st.Kind != skyerr.UnrecognizedPrior {
		t.Errorf("status kind = %v, want UnrecognizedPrior", st.Kind)
	}
}

func TestLogPosteriorRejectsInvalidDistanceBounds(t *testing.T) {
	dets := threeDetectors()
	ws := quadrature.NewWorkspace(quadrature.DefaultMaxIntervals)
	bounds := Bounds{MinDistance: 1, MaxDistance: 0.5, Prior: radial.UniformInLogDistance}

	_, _, st := LogPosterior(pixelgrid.Direction{Theta: 1, Phi: 1}, 0, dets, DefaultLatticeConfig, bounds, ws)
	if st.Kind != skyerr.Shape {
		t.Errorf("status kind = %v, want Shape", st.Kind)
	}
}

func TestLogPosteriorFiniteForOrdinaryPixel(t *testing.T) {
	dets := threeDetectors()
	ws := quadrature.NewWorkspace(quadrature.DefaultMaxIntervals)
	bounds := Bounds{MinDistance: 0.001, MaxDistance: 1, Prior: radial.UniformInLogDistance}

	logP, skipped, st := LogPosterior(pixelgrid.Direction{Theta: 1.0, Phi: 2.0}, 0.5, dets, DefaultLatticeConfig, bounds, ws)
	if !st.IsOK() {
		t.Fatalf("LogPosterior failed: %v", st)
	}
	if math.IsInf(logP, -1) || math.IsNaN(logP) {
		t.Errorf("LogPosterior = %v, want a finite value", logP)
	}
	if skipped == (DefaultLatticeConfig.NU+1)*DefaultLatticeConfig.NPsi {
		t.Errorf("every lattice point was skipped")
	}
}

func TestLogPosteriorBothPriorsAgreeWhenBoundsCollapse(t *testing.T) {
	dets := threeDetectors()
	ws := quadrature.NewWorkspace(quadrature.DefaultMaxIntervals)
	dir := pixelgrid.Direction{Theta: 1.0, Phi: 2.0}

	d := 0.5
	eps := 1e-6
	boundsLog := Bounds{MinDistance: d, MaxDistance: d + eps, Prior: radial.UniformInLogDistance}
	boundsVol := Bounds{MinDistance: d, MaxDistance: d + eps, Prior: radial.UniformInVolume}

	pLog, _, stLog := LogPosterior(dir, 0.5, dets, DefaultLatticeConfig, boundsLog, ws)
	pVol, _, stVol := LogPosterior(dir, 0.5, dets, DefaultLatticeConfig, boundsVol, ws)
	if !stLog.IsOK() || !stVol.IsOK() {
		t.Fatalf("LogPosterior failed: %v %v", stLog, stVol)
	}

	// Over a collapsed range the uniform-in-volume Jacobian exp(3x) is the
	// constant d^3, so the two priors differ only by 3*ln(d) at every
	// pixel, an offset that normalization of the sky map removes.
	if diff := pVol - pLog; math.Abs(diff-3*math.Log(d)) > 1e-2 {
		t.Errorf("uniform-in-volume - uniform-in-log-distance = %v - %v = %v, want 3*ln(%v) = %v for a collapsed distance range", pVol, pLog, diff, d, 3*math.Log(d))
	}
}

func TestLogPosteriorAllLatticePointsSkippedReturnsNegInf(t *testing.T) {
	// Zero response tensors drive rho2r2 to zero and A to zero for every
	// lattice point, which the boundary policy treats as a skip.
	dets := []Detector{
		{Response: [3][3]float32{}, Location: [3]float64{1, 0, 0}, Horizon: 1.0, SNR: complex(10, 0)},
	}
	ws := quadrature.NewWorkspace(quadrature.DefaultMaxIntervals)
	bounds := Bounds{MinDistance: 0.001, MaxDistance: 1, Prior: radial.UniformInLogDistance}

	logP, skipped, st := LogPosterior(pixelgrid.Direction{Theta: 1.0, Phi: 2.0}, 0, dets, DefaultLatticeConfig, bounds, ws)
	if !st.IsOK() {
		t.Fatalf("LogPosterior failed: %v", st)
	}
	if !math.IsInf(logP, -1) {
		t.Errorf("LogPosterior = %v, want -Inf when every lattice point is skipped", logP)
	}
	if skipped != (DefaultLatticeConfig.NU+1)*DefaultLatticeConfig.NPsi {
		t.Errorf("skipped = %d, want all lattice points skipped", skipped)
	}
}
