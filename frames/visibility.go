package frames

import (
	"math"

	"github.com/signalsfoundry/orbit-frames/physics"
)

// Look is a target's direction and distance as seen by a ground observer.
type Look struct {
	AzimuthDeg   float64 `json:"az_deg"` // clockwise from north, [0, 360)
	ElevationDeg float64 `json:"el_deg"` // 0 at the horizon, 90 overhead
	RangeKm      float64 `json:"range_km"`
}

// GeodeticToECEF places a WGS84 position in the Earth-fixed frame, in
// metres. It is the closed-form inverse of ECEFToGeodetic.
func GeodeticToECEF(g Geodetic) Vec3 {
	lat := g.LatitudeDeg * deg2rad
	lng := g.LongitudeDeg * deg2rad
	h := g.AltitudeKm * 1000.0
	n := primeVerticalRadius(lat)

	return Vec3{
		X: (n + h) * math.Cos(lat) * math.Cos(lng),
		Y: (n + h) * math.Cos(lat) * math.Sin(lng),
		Z: (n*(1-physics.WGS84E2) + h) * math.Sin(lat),
	}
}

// LookAngles returns the azimuth, elevation and range of target (ECEF,
// metres) from observer. Elevation is measured against the ellipsoid
// normal, not the geocentric radius.
func LookAngles(observer Geodetic, target Vec3) Look {
	lat := observer.LatitudeDeg * deg2rad
	lng := observer.LongitudeDeg * deg2rad
	d := target.Sub(GeodeticToECEF(observer))

	sinLat, cosLat := math.Sin(lat), math.Cos(lat)
	sinLng, cosLng := math.Sin(lng), math.Cos(lng)

	east := -sinLng*d.X + cosLng*d.Y
	north := -sinLat*cosLng*d.X - sinLat*sinLng*d.Y + cosLat*d.Z
	up := cosLat*cosLng*d.X + cosLat*sinLng*d.Y + sinLat*d.Z

	rng := d.Norm()
	if rng == 0 {
		return Look{ElevationDeg: 90}
	}

	el := math.Asin(clamp(up/rng, -1, 1)) * rad2deg
	az := math.Atan2(east, north) * rad2deg
	if az < 0 {
		az += 360
	}
	return Look{AzimuthDeg: az, ElevationDeg: el, RangeKm: rng / 1000.0}
}

// HasLineOfSight reports whether the segment between two ECEF points (in
// metres) clears a sphere of radius WGS84A.
func HasLineOfSight(p1, p2 Vec3) bool {
	r2 := physics.WGS84A * physics.WGS84A
	v := p2.Sub(p1)
	a := v.Dot(v)
	if a == 0 {
		return p1.Dot(p1) > r2
	}

	// Closest point of the segment to the origin.
	t := clamp(-p1.Dot(v)/a, 0, 1)
	closest := p1.Add(v.Scale(t))
	return closest.Dot(closest) > r2
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
