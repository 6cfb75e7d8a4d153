// Package physics holds the physical and geodetic constants shared by the
// TLE decoder and the coordinate transforms. Everything here is read-only.
package physics

// Gravitational and Earth-shape constants, SI units unless noted.
const (
	// MU is Earth's gravitational parameter (m^3/s^2).
	MU = 3.986004418e14
	// J2 is the second zonal harmonic. Only the value is provided; no
	// perturbation model consumes it here.
	J2 = 1.08262668e-3

	// EarthRadius is the equatorial radius in metres.
	EarthRadius = 6.378137e6
	// EarthRadiusKm is the mean radius in kilometres.
	EarthRadiusKm = 6371.0

	// WGS84A is the WGS84 semi-major axis in metres.
	WGS84A = 6378137.0
	// WGS84F is the WGS84 flattening.
	WGS84F = 1.0 / 298.257223563
)

// Time constants.
const (
	SecondsPerDay        = 86400.0
	UnixEpochJulianDate  = 2440587.5
	J2000JulianDate      = 2451545.0
	DaysPerJulianCentury = 36525.0
)

// Derived WGS84 values. They are computed once from WGS84A and WGS84F;
// callers must read these rather than re-derive them.
var (
	// WGS84B is the semi-minor axis in metres.
	WGS84B = WGS84A * (1 - WGS84F)
	// WGS84E2 is the first eccentricity squared.
	WGS84E2 = 1 - (WGS84B/WGS84A)*(WGS84B/WGS84A)
)
