// Package geometry implements the detector antenna pattern and
// light-propagation delay used by the sky-map evaluators.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/bayestar/skymap/internal/pixelgrid"
)

// SpeedOfLight is the exact SI value, in meters per second.
const SpeedOfLight = 299792458.0

// UnitVector returns the Earth-fixed unit vector pointing toward sky
// direction dir at Greenwich mean sidereal time gmst, radians:
// n_hat = (sin(theta)cos(phi-gmst), sin(theta)sin(phi-gmst), cos(theta)).
func UnitVector(dir pixelgrid.Direction, gmst float64) [3]float64 {
	lon := dir.Phi - gmst
	sinT, cosT := math.Sincos(dir.Theta)
	sinL, cosL := math.Sincos(lon)
	return [3]float64{sinT * cosL, sinT * sinL, cosT}
}

// LightTravelDelay returns dot(n_hat, location)/c, in seconds, for a
// detector at the given Earth-fixed location (meters) and a plane wave
// arriving from sky direction dir at sidereal time gmst: the time by which
// the wave reaches the detector before it reaches the geocenter (negative
// when the detector is reached later). A signal from dir therefore arrives
// at the detector at t_geocenter - LightTravelDelay(...).
func LightTravelDelay(location [3]float64, dir pixelgrid.Direction, gmst float64) float64 {
	n := UnitVector(dir, gmst)
	return Dot(n, location) / SpeedOfLight
}

// Dot is the Euclidean inner product of two 3-vectors.
func Dot(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// AntennaResponse evaluates the long-wavelength plane-wave antenna
// pattern (F+, Fx) of a detector with 3x3 response tensor r, for a
// source at right ascension alpha, declination delta, polarization angle
// psi, at sidereal time gmst. The core always calls this with psi=0 and
// folds polarization analytically elsewhere.
func AntennaResponse(r [3][3]float32, alpha, delta, psi, gmst float64) (fPlus, fCross float64) {
	gha := gmst - alpha
	sinGha, cosGha := math.Sincos(gha)
	sinPsi, cosPsi := math.Sincos(psi)
	sinDelta, cosDelta := math.Sincos(delta)

	x := mat.NewVecDense(3, []float64{
		-sinGha*cosPsi - cosGha*sinPsi*sinDelta,
		-cosGha*cosPsi + sinGha*sinPsi*sinDelta,
		sinPsi * cosDelta,
	})
	y := mat.NewVecDense(3, []float64{
		sinGha*sinPsi - cosGha*cosPsi*sinDelta,
		cosGha*sinPsi + sinGha*cosPsi*sinDelta,
		cosPsi * cosDelta,
	})

	rd := denseFromTensor(r)

	rx := mat.NewVecDense(3, nil)
	rx.MulVec(rd, x)
	ry := mat.NewVecDense(3, nil)
	ry.MulVec(rd, y)

	fPlus = mat.Dot(x, rx) - mat.Dot(y, ry)
	fCross = mat.Dot(x, ry) + mat.Dot(y, rx)
	return
}

func denseFromTensor(r [3][3]float32) *mat.Dense {
	data := make([]float64, 9)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			data[i*3+j] = float64(r[i][j])
		}
	}
	return mat.NewDense(3, 3, data)
}
