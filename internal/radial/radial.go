// Package radial implements the one-dimensional radial integrand and its
// analytic breakpoints used by the amplitude evaluator's inner
// quadrature.
package radial

import (
	"math"
	"sort"
)

// Prior is a closed sum type selecting the luminosity-distance prior.
// The set is small and closed, so it is dispatched with a switch rather
// than an interface.
type Prior int

const (
	// UniformInLogDistance is the prior p(r) proportional to 1/r.
	UniformInLogDistance Prior = iota
	// UniformInVolume is the prior p(r) proportional to r^2 (a uniform
	// density in volume), applied as an extra r^3 Jacobian in x=ln(r).
	UniformInVolume
)

func (p Prior) String() string {
	switch p {
	case UniformInLogDistance:
		return "uniform_in_log_distance"
	case UniformInVolume:
		return "uniform_in_volume"
	default:
		return "unrecognized"
	}
}

// Eta is a tuning constant, not derived from first principles, used to
// decide how far from the peak of the quadratic in 1/r the breakpoints
// are placed.
const Eta = 0.01

// LogOffset returns L = -B^2/(4A), the stabilizing log-offset that makes
// the peak of the quadratic A*y^2 + B*y (y = 1/r) equal to zero after
// subtraction.
func LogOffset(a, b float64) float64 {
	return -b * b / (4 * a)
}

// Integrand evaluates the stabilized one-dimensional integrand in
// x = ln(r), i.e. y = exp(-x) = 1/r:
//
//	integrand(x) = exp(A*y^2 + B*y - L)
//
// multiplied by exp(3x), the Jacobian for a uniform-in-volume prior, when
// prior is UniformInVolume.
func Integrand(prior Prior, a, b, logOffset, x float64) float64 {
	y := math.Exp(-x)
	v := math.Exp(a*y*y + b*y - logOffset)
	if prior == UniformInVolume {
		v *= math.Exp(3 * x)
	}
	return v
}

// Breakpoints returns up to five sorted breakpoints in x = ln(r),
// enclosing the peak of the integrand, keeping only those strictly
// inside (xMin, xMax): xMin, xMax, and up to three interior points
// derived from the quadratic A*y^2 + B*y in y = 1/r — its vertex
// 1/r* = -B/(2A), and the two roots of
//
//	A*y^2 + B*y - (-B^2/(4A)) = ln(Eta)
//
// which bracket the region where the integrand has fallen by a factor
// Eta from its peak.
func Breakpoints(a, b, xMin, xMax float64) []float64 {
	pts := make([]float64, 0, 5)
	pts = append(pts, xMin)

	if a < 0 {
		if yPeak := -b / (2 * a); yPeak > 0 {
			if xp := math.Log(1 / yPeak); xp > xMin && xp < xMax {
				pts = append(pts, xp)
			}
		}

		// A*y^2 + B*y + B^2/(4A) = ln(Eta)  =>  y = (-B +/- sqrt(4*A*ln(Eta))) / (2A)
		disc := 4 * a * math.Log(Eta)
		if disc >= 0 {
			sq := math.Sqrt(disc)
			for _, y := range [2]float64{(-b + sq) / (2 * a), (-b - sq) / (2 * a)} {
				if y > 0 {
					if xp := math.Log(1 / y); xp > xMin && xp < xMax {
						pts = append(pts, xp)
					}
				}
			}
		}
	}

	pts = append(pts, xMax)
	sort.Float64s(pts)
	return pts
}
