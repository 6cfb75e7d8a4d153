package frames

import (
	"math"
	"testing"

	"github.com/signalsfoundry/orbit-frames/physics"
)

func TestGeodeticToECEFRoundTrip(t *testing.T) {
	points := []Geodetic{
		{LatitudeDeg: 0, LongitudeDeg: 0, AltitudeKm: 0},
		{LatitudeDeg: 51.4779, LongitudeDeg: -0.0015, AltitudeKm: 0.046},
		{LatitudeDeg: -33.8688, LongitudeDeg: 151.2093, AltitudeKm: 420},
		{LatitudeDeg: 78.2232, LongitudeDeg: 15.6267, AltitudeKm: 35786},
	}
	for _, g := range points {
		got := ECEFToGeodetic(GeodeticToECEF(g))
		if math.Abs(got.LatitudeDeg-g.LatitudeDeg) > 1e-7 ||
			math.Abs(got.LongitudeDeg-g.LongitudeDeg) > 1e-9 ||
			math.Abs(got.AltitudeKm-g.AltitudeKm) > 1e-6 {
			t.Fatalf("round trip of %+v gave %+v", g, got)
		}
	}
}

func TestGeodeticToECEFEquatorAndPole(t *testing.T) {
	eq := GeodeticToECEF(Geodetic{})
	if math.Abs(eq.X-physics.WGS84A) > 1e-6 || eq.Y != 0 || eq.Z != 0 {
		t.Fatalf("equator = %+v", eq)
	}
	pole := GeodeticToECEF(Geodetic{LatitudeDeg: 90})
	if math.Abs(pole.Z-physics.WGS84B) > 1e-6 {
		t.Fatalf("pole z = %f, want %f", pole.Z, physics.WGS84B)
	}
}

func TestLookAnglesOverheadAndHorizon(t *testing.T) {
	observer := Geodetic{LatitudeDeg: 10, LongitudeDeg: 20}

	overhead := GeodeticToECEF(Geodetic{LatitudeDeg: 10, LongitudeDeg: 20, AltitudeKm: 500})
	look := LookAngles(observer, overhead)
	if math.Abs(look.ElevationDeg-90) > 1e-4 {
		t.Fatalf("overhead elevation = %f, want 90", look.ElevationDeg)
	}
	if math.Abs(look.RangeKm-500) > 1e-6 {
		t.Fatalf("overhead range = %f km, want 500", look.RangeKm)
	}

	// A target on the far side of the planet is below the horizon.
	below := LookAngles(observer, GeodeticToECEF(Geodetic{LatitudeDeg: -10, LongitudeDeg: -160, AltitudeKm: 500}))
	if below.ElevationDeg >= 0 {
		t.Fatalf("antipodal elevation = %f, want negative", below.ElevationDeg)
	}
}

func TestLookAnglesAzimuth(t *testing.T) {
	observer := Geodetic{}
	cases := []struct {
		name   string
		target Geodetic
		az     float64
	}{
		{"north", Geodetic{LatitudeDeg: 1, AltitudeKm: 400}, 0},
		{"east", Geodetic{LongitudeDeg: 1, AltitudeKm: 400}, 90},
		{"south", Geodetic{LatitudeDeg: -1, AltitudeKm: 400}, 180},
		{"west", Geodetic{LongitudeDeg: -1, AltitudeKm: 400}, 270},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			look := LookAngles(observer, GeodeticToECEF(tc.target))
			if math.Abs(look.AzimuthDeg-tc.az) > 0.5 {
				t.Fatalf("azimuth = %f, want %f", look.AzimuthDeg, tc.az)
			}
			if look.ElevationDeg <= 0 {
				t.Fatalf("elevation = %f, want above horizon", look.ElevationDeg)
			}
		})
	}
}

func TestLookAnglesSamePoint(t *testing.T) {
	g := Geodetic{LatitudeDeg: 45, LongitudeDeg: 45}
	if look := LookAngles(g, GeodeticToECEF(g)); look.ElevationDeg != 90 || look.RangeKm != 0 {
		t.Fatalf("look at self = %+v", look)
	}
}

func TestHasLineOfSight(t *testing.T) {
	// Two satellites on the same side of the Earth.
	a := Vec3{X: 8e6}
	b := Vec3{X: 8e6, Y: 1e6}
	if !HasLineOfSight(a, b) {
		t.Fatalf("expected line of sight between neighbouring satellites")
	}

	// Opposite sides: the chord passes through the Earth.
	if HasLineOfSight(Vec3{X: 7e6}, Vec3{X: -7e6}) {
		t.Fatalf("expected the Earth to block the link")
	}

	// Degenerate segment.
	if !HasLineOfSight(a, a) {
		t.Fatalf("a point outside the Earth sees itself")
	}
	if HasLineOfSight(Vec3{}, Vec3{}) {
		t.Fatalf("the origin is inside the Earth")
	}
}
