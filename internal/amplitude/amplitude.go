// Package amplitude implements the per-pixel time-delay + amplitude
// log-posterior contribution, marginalizing distance, inclination, and
// polarization.
package amplitude

import (
	"math"
	"math/cmplx"

	"github.com/bayestar/skymap/internal/geometry"
	"github.com/bayestar/skymap/internal/logsumexp"
	"github.com/bayestar/skymap/internal/pixelgrid"
	"github.com/bayestar/skymap/internal/quadrature"
	"github.com/bayestar/skymap/internal/radial"
	"github.com/bayestar/skymap/internal/skyerr"
)

// Detector is the subset of per-detector metadata needed by the
// amplitude phase: a single-precision response tensor, geocentric
// location, horizon distance (already rescaled by the caller so the
// largest horizon in the event is 1), and the complex matched-filter
// SNR (only its magnitude is currently used; the phase is accepted and
// preserved).
type Detector struct {
	Response [3][3]float32
	Location [3]float64
	Horizon  float64
	SNR      complex128
}

// LatticeConfig sizes the (u, 2*psi) marginalization lattice.
type LatticeConfig struct {
	NU   int
	NPsi int
}

// DefaultLatticeConfig is the tuned default density, nu = npsi = 16, not
// derived from first principles.
var DefaultLatticeConfig = LatticeConfig{NU: 16, NPsi: 16}

// Bounds carries the distance-integration limits and prior selection
// for one evaluation.
type Bounds struct {
	MinDistance float64
	MaxDistance float64
	Prior       radial.Prior
}

// LogPosterior evaluates the amplitude log-posterior contribution at
// one pixel: builds rescaled antenna factors per detector, sweeps the
// (u, 2*psi) lattice, and accumulates each lattice point's quadrature
// result via log-sum-exp. ws is a caller-owned scratch workspace; each
// worker allocates its own, and it is reused across lattice points and
// across pixels, never shared between concurrent callers.
//
// skipped counts lattice points abandoned per the boundary policy
// (A >= 0, the quadrature failed to converge, or the integral came out
// non-positive). The first non-success
// status recorded from a failing quadrature call at any lattice point
// is returned alongside the pixel's value, so the first recorded
// failure across the pixel grid can be surfaced by the caller; a pixel
// whose every lattice point is skipped without any quadrature failure
// (e.g. every point has A >= 0) still returns -Inf with a success
// status — "all lattice points skipped" is a valid numeric outcome, not
// a setup error.
func LogPosterior(dir pixelgrid.Direction, gmst float64, dets []Detector, cfg LatticeConfig, bounds Bounds, ws *quadrature.Workspace) (float64, int, skyerr.Status) {
	if bounds.Prior != radial.UniformInLogDistance && bounds.Prior != radial.UniformInVolume {
		return 0, 0, skyerr.Newf(skyerr.UnrecognizedPrior, "prior value %d is outside the documented enum", bounds.Prior)
	}
	if bounds.MinDistance <= 0 || bounds.MaxDistance <= bounds.MinDistance {
		return 0, 0, skyerr.Newf(skyerr.Shape, "distance bounds [%v, %v] are invalid", bounds.MinDistance, bounds.MaxDistance)
	}

	alpha := dir.RightAscension()
	delta := dir.Declination()

	fPlus := make([]float64, len(dets))
	fCross := make([]float64, len(dets))
	rho := make([]float64, len(dets))
	for j, d := range dets {
		fp, fc := geometry.AntennaResponse(d.Response, alpha, delta, 0, gmst)
		fPlus[j] = fp * d.Horizon
		fCross[j] = fc * d.Horizon
		rho[j] = cmplx.Abs(d.SNR)
	}

	xMin := math.Log(bounds.MinDistance)
	xMax := math.Log(bounds.MaxDistance)

	nu, npsi := cfg.NU, cfg.NPsi
	if nu <= 0 {
		nu = DefaultLatticeConfig.NU
	}
	if npsi <= 0 {
		npsi = DefaultLatticeConfig.NPsi
	}

	contributions := make([]float64, 0, (nu+1)*npsi)
	var skipped int
	firstFailure := skyerr.Success

	for iu := 0; iu <= nu; iu++ {
		u := float64(iu) / float64(nu)
		u2 := u * u
		oneMinusU2 := 1 - u2
		polyEven := 1 + 6*u2 + u2*u2

		for ipsi := 0; ipsi < npsi; ipsi++ {
			twoPsi := 2 * math.Pi * float64(ipsi) / float64(npsi)
			sin2psi, cos2psi := math.Sincos(twoPsi)

			var a, b float64
			for j := range dets {
				fp2 := fPlus[j] * fPlus[j]
				fc2 := fCross[j] * fCross[j]
				cross := 2 * fPlus[j] * fCross[j]

				rho2r2 := 0.125 * (fp2+fc2)*polyEven
				rho2r2 += 0.125 * oneMinusU2 * oneMinusU2 * ((fp2-fc2)*cos2psi + cross*sin2psi)

				if rho2r2 < 0 {
					rho2r2 = 0
				}
				rhor := math.Sqrt(rho2r2)

				a -= 0.5 * rho2r2
				b += rhor * rho[j]
			}

			if a >= 0 {
				skipped++
				continue
			}

			logOffset := radial.LogOffset(a, b)
			breakpoints := radial.Breakpoints(a, b, xMin, xMax)

			integrand := func(x float64) float64 {
				return radial.Integrand(bounds.Prior, a, b, logOffset, x)
			}

			integral, st := quadrature.Integrate(ws, integrand, breakpoints, quadrature.DefaultRelTol, quadrature.DefaultAbsTol, quadrature.DefaultMaxIntervals)
			if !st.IsOK() {
				skipped++
				if firstFailure.IsOK() {
					firstFailure = st
				}
				continue
			}
			if integral <= 0 {
				skipped++
				continue
			}

			contributions = append(contributions, math.Log(integral)+logOffset)
		}
	}

	if len(contributions) == 0 {
		return math.Inf(-1), skipped, firstFailure
	}
	return logsumexp.Reduce(contributions), skipped, firstFailure
}
