package track

import (
	"testing"
	"time"

	"github.com/signalsfoundry/orbit-frames/frames"
)

func TestPassesFindsVisibilityWindows(t *testing.T) {
	observer := frames.Geodetic{}
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	// Longitudes sweep past the observer twice with a gap on the far side.
	lngs := []float64{-90, -10, -5, 0, 5, 10, 90, 180, -170, -2, 3, 120}
	samples := make([]Sample, len(lngs))
	for i, lng := range lngs {
		samples[i] = Sample{
			Time: start.Add(time.Duration(i) * time.Minute),
			ECEF: frames.GeodeticToECEF(frames.Geodetic{LongitudeDeg: lng, AltitudeKm: 500}),
		}
	}

	passes := Passes(samples, observer, 10)
	if len(passes) != 2 {
		t.Fatalf("passes = %d, want 2: %+v", len(passes), passes)
	}

	first := passes[0]
	if !first.Start.Equal(samples[1].Time) || !first.End.Equal(samples[5].Time) {
		t.Fatalf("first pass %s..%s", first.Start, first.End)
	}
	if first.MaxElevationDeg < 89.9 {
		t.Fatalf("first pass culminates at %.2f, want overhead", first.MaxElevationDeg)
	}
	if first.Culmination.ElevationDeg != first.MaxElevationDeg {
		t.Fatalf("culmination look does not match max elevation")
	}

	second := passes[1]
	if !second.Start.Equal(samples[9].Time) || !second.End.Equal(samples[10].Time) {
		t.Fatalf("second pass %s..%s", second.Start, second.End)
	}
}

func TestPassesOpenAtEndOfTrack(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	samples := []Sample{
		{Time: start, ECEF: frames.GeodeticToECEF(frames.Geodetic{LongitudeDeg: 100, AltitudeKm: 500})},
		{Time: start.Add(time.Minute), ECEF: frames.GeodeticToECEF(frames.Geodetic{AltitudeKm: 500})},
	}
	passes := Passes(samples, frames.Geodetic{}, 0)
	if len(passes) != 1 || !passes[0].Start.Equal(passes[0].End) {
		t.Fatalf("passes = %+v, want one single-sample pass", passes)
	}
}

func TestPassesEmpty(t *testing.T) {
	if got := Passes(nil, frames.Geodetic{}, 0); got != nil {
		t.Fatalf("Passes(nil) = %+v, want nil", got)
	}
}
