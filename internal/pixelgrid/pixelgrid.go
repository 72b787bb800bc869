// Package pixelgrid implements the equal-area, isolatitude, ring-indexed
// spherical pixelization used as the discretization for the sky-map
// posterior. Pixels are ordered by increasing co-latitude theta and,
// within a ring, by increasing longitude phi; this ordering is an
// external contract and must never be changed.
package pixelgrid

import (
	"math"

	"github.com/bayestar/skymap/internal/skyerr"
)

// Direction is a point on the unit sphere, in radians: Theta is
// co-latitude in [0, pi], Phi is longitude in [0, 2*pi).
type Direction struct {
	Theta float64
	Phi   float64
}

// RightAscension returns the celestial right ascension corresponding to
// this direction's longitude.
func (d Direction) RightAscension() float64 {
	return d.Phi
}

// Declination returns the celestial declination corresponding to this
// direction's co-latitude.
func (d Direction) Declination() float64 {
	return math.Pi/2 - d.Theta
}

// ResolutionFromNpix returns N such that npix = 12*N^2, or a Shape
// status if npix is not of that form.
func ResolutionFromNpix(npix int) (int, skyerr.Status) {
	if npix <= 0 || npix%12 != 0 {
		return 0, skyerr.Newf(skyerr.Shape, "npix=%d is not a positive multiple of 12", npix)
	}
	sq := npix / 12
	n := int(math.Sqrt(float64(sq)) + 0.5)
	if n <= 0 || n*n != sq {
		return 0, skyerr.Newf(skyerr.Shape, "npix=%d is not of the form 12*N^2", npix)
	}
	return n, skyerr.Success
}

// IndexToAngle maps a ring-ordered pixel index i in [0, 12*n^2) to its
// center direction, using the standard hierarchical equal-area ring
// pixelization formulas: an equatorial belt of rings at constant
// co-latitude sandwiched between two polar caps, each ring subdivided
// into equal-longitude pixels.
//
// i is assumed to already be validated against n (i.e. 0 <= i <
// 12*n*n); IndexToAngle does not check it. Callers iterating a full grid
// should use Directions, which visits exactly that index range.
func IndexToAngle(n, i int) Direction {
	nside := float64(n)
	npix := 12 * n * n
	ncap := 2 * n * (n - 1)

	var z, phi float64

	switch {
	case i < ncap:
		// North polar cap.
		iring := int((1 + isqrt(1+2*i)) / 2)
		iphi := (i + 1) - 2*iring*(iring-1)
		z = 1 - float64(iring*iring)/(3*nside*nside)
		phi = (float64(iphi) - 0.5) * (math.Pi / 2) / float64(iring)

	case i < npix-ncap:
		// Equatorial belt.
		ip := i - ncap
		iring := ip/(4*n) + n
		iphi := ip%(4*n) + 1
		fodd := 0.5
		if (iring+n)%2 != 0 {
			fodd = 1
		}
		z = float64(2*n-iring) * 2 / (3 * nside)
		phi = (float64(iphi) - fodd) * math.Pi / (2 * nside)

	default:
		// South polar cap.
		ip := npix - i
		iring := int((1 + isqrt(2*ip-1)) / 2)
		iphi := (4*iring + 1) - (ip - 2*iring*(iring-1))
		z = -1 + float64(iring*iring)/(3*nside*nside)
		phi = (float64(iphi) - 0.5) * (math.Pi / 2) / float64(iring)
	}

	theta := math.Acos(clamp(z, -1, 1))
	if phi < 0 {
		phi += 2 * math.Pi
	}
	return Direction{Theta: theta, Phi: phi}
}

// Directions returns the center direction of every pixel of an
// N-resolution grid, in ring order.
func Directions(n int) []Direction {
	npix := 12 * n * n
	dirs := make([]Direction, npix)
	for i := range dirs {
		dirs[i] = IndexToAngle(n, i)
	}
	return dirs
}

// isqrt returns floor(sqrt(x)) for a non-negative integer x, computed
// via float64 with a correction step to guard against rounding at the
// pixel counts this package deals with (up to ~10^6).
func isqrt(x int) int {
	if x < 0 {
		return 0
	}
	r := int(math.Sqrt(float64(x)))
	for r*r > x {
		r--
	}
	for (r+1)*(r+1) <= x {
		r++
	}
	return r
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
