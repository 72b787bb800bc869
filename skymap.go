// Package skymap is the client-facing facade of a rapid Bayesian
// sky-localization core for gravitational-wave compact-binary triggers:
// given detector times of arrival, and optionally complex matched-filter
// amplitudes and sensitivity metadata, it produces a normalized
// posterior probability map over a ring-ordered, equal-area pixelization
// of the sky.
package skymap

import (
	"context"
	"log/slog"

	"github.com/bayestar/skymap/internal/amplitude"
	"github.com/bayestar/skymap/internal/posterior"
	"github.com/bayestar/skymap/internal/radial"
	"github.com/bayestar/skymap/internal/skyerr"
	"github.com/bayestar/skymap/internal/tdoa"
)

// Map is a ring-ordered sky map of length npix. On success it is
// nonnegative and sums to 1.
type Map []float64

// Status and Kind mirror internal/skyerr's status values, re-exported
// here so callers never need to import an internal package.
type (
	Status = skyerr.Status
	Kind   = skyerr.Kind
)

const (
	OK                = skyerr.OK
	Shape             = skyerr.Shape
	Memory            = skyerr.Memory
	Convergence       = skyerr.Convergence
	UnrecognizedPrior = skyerr.UnrecognizedPrior
)

// Prior selects the luminosity-distance prior used by SkyMapTDOASNR.
type Prior = radial.Prior

const (
	UniformInLogDistance = radial.UniformInLogDistance
	UniformInVolume      = radial.UniformInVolume
)

// Detector is one interferometer's per-event metadata. Not every field
// is used by every entry point: SkyMapTDOA reads only Location, TOA, and
// VarianceTOA; SkyMapTDOASNR reads all of them.
type Detector struct {
	Response    [3][3]float32 // detector response tensor, single precision
	Location    [3]float64    // geocentric, meters
	Horizon     float64       // distance at which this detector sees SNR=1, any consistent unit
	TOA         float64       // seconds, any epoch
	SNR         complex128    // matched-filter amplitude; phase accepted but unused
	VarianceTOA float64       // seconds^2
}

// TDOARequest holds the inputs to the time-delay-only entry point.
type TDOARequest struct {
	NPix      int
	GMST      float64
	Detectors []Detector
	Logger    *slog.Logger
}

// TDOASNRRequest holds the inputs to the full time-delay + amplitude
// entry point.
type TDOASNRRequest struct {
	NPix        int
	GMST        float64
	Detectors   []Detector
	MinDistance float64
	MaxDistance float64
	Prior       Prior
	Logger      *slog.Logger
}

// SkyMapTDOA computes a normalized sky map from times of arrival alone.
// It is the fast prefilter entry point: no antenna response, horizon, or
// distance information is consulted.
func SkyMapTDOA(req TDOARequest) (Map, Status) {
	dets := make([]tdoa.Detector, len(req.Detectors))
	for i, d := range req.Detectors {
		dets[i] = tdoa.Detector{Location: d.Location, TOA: d.TOA, VarianceTOA: d.VarianceTOA}
	}

	res, st := posterior.Run(context.Background(), posterior.Request{
		NPix:   req.NPix,
		GMST:   req.GMST,
		TDOA:   dets,
		Prior:  UniformInLogDistance,
		Logger: req.Logger,
	})
	if !st.IsOK() {
		return nil, st
	}
	return Map(res.Map), skyerr.Success
}

// SkyMapTDOASNR computes a normalized sky map from times of arrival and
// matched-filter amplitudes, the primary product of this module.
// Horizons and distance bounds are internally rescaled so the largest
// horizon in the event is 1; the caller supplies them in any consistent
// unit.
//
// The first detector's TOA is treated as the zero point; the caller
// need not re-shift arrival times.
func SkyMapTDOASNR(req TDOASNRRequest) (Map, Status) {
	if req.Prior != UniformInLogDistance && req.Prior != UniformInVolume {
		return nil, skyerr.Newf(skyerr.UnrecognizedPrior, "prior value %d is outside the documented enum", req.Prior)
	}

	maxHorizon, st := maxPositiveHorizon(req.Detectors)
	if !st.IsOK() {
		return nil, st
	}
	scale := 1 / maxHorizon

	tdoaDets := make([]tdoa.Detector, len(req.Detectors))
	ampDets := make([]amplitude.Detector, len(req.Detectors))
	for i, d := range req.Detectors {
		tdoaDets[i] = tdoa.Detector{Location: d.Location, TOA: d.TOA, VarianceTOA: d.VarianceTOA}
		ampDets[i] = amplitude.Detector{
			Response: d.Response,
			Location: d.Location,
			Horizon:  d.Horizon * scale,
			SNR:      d.SNR,
		}
	}

	res, st := posterior.Run(context.Background(), posterior.Request{
		NPix:        req.NPix,
		GMST:        req.GMST,
		TDOA:        tdoaDets,
		Amplitude:   ampDets,
		MinDistance: req.MinDistance * scale,
		MaxDistance: req.MaxDistance * scale,
		Prior:       req.Prior,
		Logger:      req.Logger,
	})
	if !st.IsOK() {
		return nil, st
	}
	return Map(res.Map), skyerr.Success
}

func maxPositiveHorizon(dets []Detector) (float64, skyerr.Status) {
	var max float64
	for _, d := range dets {
		if d.Horizon <= 0 {
			return 0, skyerr.Newf(skyerr.Shape, "detector horizon %v is not positive", d.Horizon)
		}
		if d.Horizon > max {
			max = d.Horizon
		}
	}
	if max == 0 {
		return 0, skyerr.New(skyerr.Shape, "no detectors supplied")
	}
	return max, skyerr.Success
}
