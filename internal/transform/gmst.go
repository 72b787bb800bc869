// Package transform converts a wall-clock time into the Greenwich mean
// sidereal time used throughout the sky-map core to rotate between the
// celestial and Earth-fixed frames. Callers of skymap supply gmst
// directly; this package exists for callers that only have a trigger
// timestamp.
package transform

import (
	"math"
	"time"
)

// unixEpochJD is the Julian Date of the Unix epoch (1970-01-01T00:00:00 UTC).
const unixEpochJD = 2440587.5

// j2000JD is the Julian Date of the J2000.0 epoch (2000-01-01T12:00:00 TT),
// the reference point for the GMST polynomial below.
const j2000JD = 2451545.0

// julianCentury is the number of days in one Julian century, the unit the
// GMST polynomial's T is expressed in.
const julianCentury = 36525.0

// JulianDate converts t to its Julian Date: the count of days, including
// the fractional part, since noon UT on January 1, 4713 BC (proleptic
// Julian calendar). It reads the day count off t's Unix time rather than
// re-deriving the Gregorian calendar arithmetic time.Time already carries.
func JulianDate(t time.Time) float64 {
	unixDays := float64(t.Unix())/86400.0 + float64(t.Nanosecond())/86400e9
	return unixEpochJD + unixDays
}

// GMST returns the Greenwich Mean Sidereal Time, in radians on [0, 2*pi),
// for the given instant. t is treated as UT1 (the same approximation the
// underlying IAU-82 model itself makes when fed UTC).
//
// Uses the Meeus "Astronomical Algorithms" low-precision GMST polynomial,
// a degrees-and-days-since-J2000 reformulation of the IAU-82 model:
//
//	theta_GMST = 280.46061837 + 360.98564736629*d + 0.000387933*T^2 - T^3/38710000
//
// where d is the number of days since J2000.0 and T = d/36525 is the same
// interval measured in Julian centuries.
func GMST(t time.Time) float64 {
	d := JulianDate(t.UTC()) - j2000JD
	century := d / julianCentury

	gmstDeg := 280.46061837 +
		360.98564736629*d +
		0.000387933*century*century -
		century*century*century/38710000.0

	gmstDeg = math.Mod(gmstDeg, 360.0)
	if gmstDeg < 0 {
		gmstDeg += 360.0
	}

	return gmstDeg * math.Pi / 180.0
}
