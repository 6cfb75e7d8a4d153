package physics

import (
	"math"
	"testing"
)

func TestDerivedWGS84(t *testing.T) {
	// Published WGS84 values.
	if math.Abs(WGS84B-6356752.314245) > 1e-6 {
		t.Fatalf("WGS84B = %.6f, want 6356752.314245", WGS84B)
	}
	if math.Abs(WGS84E2-6.69437999014e-3) > 1e-14 {
		t.Fatalf("WGS84E2 = %.15g, want 6.69437999014e-3", WGS84E2)
	}
}

func TestEccentricitySquaredMatchesFlattening(t *testing.T) {
	// e^2 = f(2-f) is the closed form of the same quantity.
	want := WGS84F * (2 - WGS84F)
	if math.Abs(WGS84E2-want) > 1e-15 {
		t.Fatalf("WGS84E2 = %.17g, f(2-f) = %.17g", WGS84E2, want)
	}
}
