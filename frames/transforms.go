// Package frames converts positions between the Earth-centred inertial
// frame, the Earth-fixed frame and WGS84 geodetic coordinates.
//
// Earth rotation is modelled by GMST alone: no polar motion, precession or
// nutation. That is adequate for visualisation and ground tracks, not for
// precise orbit determination.
package frames

import (
	"math"
	"time"

	"github.com/signalsfoundry/orbit-frames/physics"
)

const (
	deg2rad = math.Pi / 180.0
	rad2deg = 180.0 / math.Pi

	// geodeticIterations is fixed so results are reproducible bit for bit;
	// there is no convergence test.
	geodeticIterations = 5
)

// Geodetic is a WGS84 position. Latitude is in [-90, 90], longitude in
// (-180, 180]. Altitude is above the ellipsoid and negative below it.
type Geodetic struct {
	LatitudeDeg  float64 `json:"lat_deg"`
	LongitudeDeg float64 `json:"lng_deg"`
	AltitudeKm   float64 `json:"alt_km"`
}

// GMST returns Greenwich Mean Sidereal Time in radians, in [0, 2π), for a
// Unix timestamp in seconds.
func GMST(unixSeconds float64) float64 {
	jd := unixSeconds/physics.SecondsPerDay + physics.UnixEpochJulianDate
	d := jd - physics.J2000JulianDate
	t := d / physics.DaysPerJulianCentury

	gmst := 280.46061837 + 360.98564736629*d + 0.000387933*t*t - t*t*t/38710000

	gmst = math.Mod(gmst, 360)
	if gmst < 0 {
		gmst += 360
	}
	return gmst * deg2rad
}

// GMSTAt is GMST for a time.Time, keeping sub-second precision.
func GMSTAt(t time.Time) float64 {
	return GMST(UnixSeconds(t))
}

// UnixSeconds converts t to fractional Unix seconds.
func UnixSeconds(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/1e9
}

// ECIToECEF rotates an inertial position into the Earth-fixed frame at the
// given Unix time. The rotation is about the spin axis by -GMST, so Z is
// unchanged.
func ECIToECEF(eci Vec3, unixSeconds float64) Vec3 {
	gmst := GMST(unixSeconds)
	cosG := math.Cos(gmst)
	sinG := math.Sin(gmst)

	return Vec3{
		X: cosG*eci.X + sinG*eci.Y,
		Y: -sinG*eci.X + cosG*eci.Y,
		Z: eci.Z,
	}
}

// ECEFToGeodetic converts an Earth-fixed position in metres to WGS84
// latitude, longitude and altitude (km).
//
// Points on the polar axis (x = y = 0) have longitude 0 and latitude ±90
// following the sign of z, with altitude measured from the pole. The
// Earth's centre maps to latitude 0, longitude 0, altitude -WGS84A.
func ECEFToGeodetic(ecef Vec3) Geodetic {
	x, y, z := ecef.X, ecef.Y, ecef.Z
	p := math.Sqrt(x*x + y*y)

	if p == 0 {
		return polarGeodetic(z)
	}

	lng := math.Atan2(y, x)
	if lng <= -math.Pi {
		lng = math.Pi
	}

	e2 := physics.WGS84E2
	lat := math.Atan2(z, p*(1-e2))
	for i := 0; i < geodeticIterations; i++ {
		n := primeVerticalRadius(lat)
		h := p/math.Cos(lat) - n
		lat = math.Atan2(z, p*(1-e2*n/(n+h)))
	}

	n := primeVerticalRadius(lat)
	h := p/math.Cos(lat) - n

	return Geodetic{
		LatitudeDeg:  lat * rad2deg,
		LongitudeDeg: lng * rad2deg,
		AltitudeKm:   h / 1000.0,
	}
}

// primeVerticalRadius is the ellipsoid's radius of curvature N at lat.
func primeVerticalRadius(lat float64) float64 {
	s := math.Sin(lat)
	return physics.WGS84A / math.Sqrt(1-physics.WGS84E2*s*s)
}

func polarGeodetic(z float64) Geodetic {
	switch {
	case z > 0:
		return Geodetic{LatitudeDeg: 90, AltitudeKm: (z - physics.WGS84B) / 1000.0}
	case z < 0:
		return Geodetic{LatitudeDeg: -90, AltitudeKm: (-z - physics.WGS84B) / 1000.0}
	default:
		return Geodetic{AltitudeKm: -physics.WGS84A / 1000.0}
	}
}

// ECIToGeodetic chains ECIToECEF and ECEFToGeodetic. eci is in metres.
func ECIToGeodetic(eci Vec3, unixSeconds float64) Geodetic {
	return ECEFToGeodetic(ECIToECEF(eci, unixSeconds))
}
