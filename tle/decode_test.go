package tle

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/signalsfoundry/orbit-frames/physics"
)

func TestParseLinesISS(t *testing.T) {
	rec, err := ParseLines("ISS (ZARYA)", issLine1, issLine2)
	if err != nil {
		t.Fatalf("ParseLines: %v", err)
	}

	if rec.Name != "ISS (ZARYA)" || rec.Format != FormatTLE {
		t.Fatalf("unexpected identity: %+v", rec)
	}
	if math.Abs(rec.Inclination-51.6459*deg2rad) > 1e-12 {
		t.Fatalf("inclination = %v", rec.Inclination)
	}
	if math.Abs(rec.RAAN-115.9059*deg2rad) > 1e-12 {
		t.Fatalf("raan = %v", rec.RAAN)
	}
	if rec.Eccentricity != 0.0001817 {
		t.Fatalf("eccentricity = %v, want 0.0001817", rec.Eccentricity)
	}
	if math.Abs(rec.ArgPerigee-61.3028*deg2rad) > 1e-12 {
		t.Fatalf("argp = %v", rec.ArgPerigee)
	}
	if math.Abs(rec.MeanAnomaly-35.9198*deg2rad) > 1e-12 {
		t.Fatalf("mean anomaly = %v", rec.MeanAnomaly)
	}

	// 2021 day 275.59097222 = 2021-10-02T14:10:59.99981Z
	wantEpoch := float64(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC).Unix()) + 274.59097222*86400
	if math.Abs(rec.Epoch-wantEpoch) > 1e-6 {
		t.Fatalf("epoch = %v, want %v", rec.Epoch, wantEpoch)
	}
	if got := rec.EpochTime(); got.Year() != 2021 || got.YearDay() != 275 || got.Hour() != 14 {
		t.Fatalf("EpochTime = %s", got)
	}
	if rec.Line1 != issLine1 || rec.Line2 != issLine2 {
		t.Fatalf("source lines not retained")
	}
}

func TestSemiMajorAxisFromMeanMotion(t *testing.T) {
	rec, err := ParseLines("ISS-like", line1(25544, 21, 275.5), line2(25544, 51.6, 115.9, "0001817", 61.3, 35.9, 15.50))
	if err != nil {
		t.Fatalf("ParseLines: %v", err)
	}
	n := 15.50 * 2 * math.Pi / 86400
	want := math.Pow(physics.MU/(n*n), 1.0/3.0)
	if rel := math.Abs(rec.SemiMajorAxis-want) / want; rel > 1e-6 {
		t.Fatalf("a = %v, want %v (rel err %g)", rec.SemiMajorAxis, want, rel)
	}
	if math.Abs(rec.MeanMotion-n) > 1e-15 {
		t.Fatalf("n = %v, want %v", rec.MeanMotion, n)
	}
	if p := rec.Period(); p < 92*time.Minute || p > 93*time.Minute {
		t.Fatalf("period = %s, want ~92.9m", p)
	}
}

func TestEpochYearPivot(t *testing.T) {
	cases := []struct {
		yy   int
		want int
	}{
		{0, 2000},
		{56, 2056},
		{57, 1957},
		{99, 1999},
	}
	for _, tc := range cases {
		rec, err := ParseLines("pivot", line1(1, tc.yy, 1.0), validLine2(1))
		if err != nil {
			t.Fatalf("yy=%02d: %v", tc.yy, err)
		}
		want := time.Date(tc.want, 1, 1, 0, 0, 0, 0, time.UTC)
		if got := rec.EpochTime(); !got.Equal(want) {
			t.Fatalf("yy=%02d: epoch %s, want %s", tc.yy, got, want)
		}
	}
}

func TestEpochFractionalDay(t *testing.T) {
	rec, err := ParseLines("frac", line1(1, 24, 60.75), validLine2(1))
	if err != nil {
		t.Fatalf("ParseLines: %v", err)
	}
	// 2024 is a leap year: day 60 is Feb 29th.
	want := time.Date(2024, 2, 29, 18, 0, 0, 0, time.UTC)
	if got := rec.EpochTime(); !got.Equal(want) {
		t.Fatalf("epoch %s, want %s", got, want)
	}
}

func TestAnglesNormalized(t *testing.T) {
	rec, err := ParseLines("wrap", line1(1, 24, 1.5), line2(1, 98.2, 360.0, "0010000", 359.9999, 0, 14.2))
	if err != nil {
		t.Fatalf("ParseLines: %v", err)
	}
	for name, v := range map[string]float64{"raan": rec.RAAN, "argp": rec.ArgPerigee, "M0": rec.MeanAnomaly} {
		if v < 0 || v >= 2*math.Pi {
			t.Fatalf("%s = %v outside [0, 2π)", name, v)
		}
	}
	if rec.RAAN != 0 {
		t.Fatalf("raan of 360° should wrap to 0, got %v", rec.RAAN)
	}
}

func TestParseLinesFieldFailures(t *testing.T) {
	cases := []struct {
		name  string
		l1    string
		l2    string
		field string
	}{
		{"non-numeric eccentricity", issLine1, line2(1, 51.6, 10, "00A1817", 1, 1, 15.5), "eccentricity"},
		{"signed eccentricity", issLine1, line2(1, 51.6, 10, "-001817", 1, 1, 15.5), "eccentricity"},
		{"non-numeric inclination", issLine1, issLine2[:8] + "  abc.de" + issLine2[16:], "inclination"},
		{"bad epoch year", "1 25544U 98067A   x1275.59097222  .00000204  00000-0  10270-4 0  9990", issLine2, "epoch year"},
		{"bad epoch day", "1 25544U 98067A   21275.5909x222  .00000204  00000-0  10270-4 0  9990", issLine2, "epoch day"},
		{"day zero", line1(1, 21, 0.5), issLine2, "epoch day"},
		{"day past year end", line1(1, 21, 366.5), issLine2, "epoch day"},
		{"truncated line 2", issLine1, issLine2[:40], "argument of perigee"},
		{"truncated line 1", issLine1[:25], issLine2, "epoch day"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseLines("SAT", tc.l1, tc.l2)
			if !errors.Is(err, ErrFieldParse) {
				t.Fatalf("error = %v, want ErrFieldParse", err)
			}
			var fe *FieldError
			if !errors.As(err, &fe) {
				t.Fatalf("error %T is not a *FieldError", err)
			}
			if fe.Field != tc.field {
				t.Fatalf("field = %q, want %q", fe.Field, tc.field)
			}
		})
	}
}

func TestParseLinesInvalidElements(t *testing.T) {
	cases := []struct {
		name string
		l2   string
	}{
		{"zero mean motion", line2(1, 51.6, 10, "0001000", 1, 1, 0)},
		{"inclination above 180", line2(1, 181, 10, "0001000", 1, 1, 15.5)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseLines("SAT", issLine1, tc.l2)
			if !errors.Is(err, ErrInvalidElements) {
				t.Fatalf("error = %v, want ErrInvalidElements", err)
			}
			if errors.Is(err, ErrFieldParse) {
				t.Fatalf("range failure should not be a field parse failure: %v", err)
			}
		})
	}
}

func TestParseLinesRequiresName(t *testing.T) {
	if _, err := ParseLines("  ", issLine1, issLine2); !errors.Is(err, ErrInvalidElements) {
		t.Fatalf("error = %v, want ErrInvalidElements", err)
	}
}
