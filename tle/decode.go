package tle

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/signalsfoundry/orbit-frames/physics"
)

const (
	twoPi   = 2 * math.Pi
	deg2rad = math.Pi / 180.0

	// Two-digit epoch years below the pivot belong to the 2000s.
	epochYearPivot = 57
)

// column is a fixed-width field, 0-indexed and half-open.
type column struct {
	field      string
	start, end int
}

var (
	colEpochYear    = column{"epoch year", 18, 20}
	colEpochDay     = column{"epoch day", 20, 32}
	colInclination  = column{"inclination", 8, 16}
	colRAAN         = column{"right ascension", 17, 25}
	colEccentricity = column{"eccentricity", 26, 33}
	colArgPerigee   = column{"argument of perigee", 34, 42}
	colMeanAnomaly  = column{"mean anomaly", 43, 51}
	colMeanMotion   = column{"mean motion", 52, 63}
)

func (c column) fail(value string, err error) error {
	return &FieldError{Field: c.field, Start: c.start, End: c.end, Value: value, Err: err}
}

func (c column) text(line string) (string, error) {
	if len(line) < c.end {
		return "", c.fail("", errTruncated)
	}
	return strings.TrimSpace(line[c.start:c.end]), nil
}

func (c column) float(line string) (float64, error) {
	raw, err := c.text(line)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, c.fail(raw, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, c.fail(raw, errNotFinite)
	}
	return v, nil
}

func (c column) integer(line string) (int, error) {
	raw, err := c.text(line)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, c.fail(raw, err)
	}
	return v, nil
}

// ParseLines decodes a single named record from its two data lines.
func ParseLines(name, line1, line2 string) (OrbitalElementSet, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return OrbitalElementSet{}, fmt.Errorf("%w: empty name", ErrInvalidElements)
	}
	rec, err := decode(line1, line2)
	if err != nil {
		return OrbitalElementSet{}, err
	}
	rec.Name = name
	return rec, nil
}

// decode reads every field of the record except its name.
func decode(line1, line2 string) (OrbitalElementSet, error) {
	line1 = strings.TrimSpace(line1)
	line2 = strings.TrimSpace(line2)

	epoch, err := decodeEpoch(line1)
	if err != nil {
		return OrbitalElementSet{}, err
	}

	incDeg, err := colInclination.float(line2)
	if err != nil {
		return OrbitalElementSet{}, err
	}
	raanDeg, err := colRAAN.float(line2)
	if err != nil {
		return OrbitalElementSet{}, err
	}
	ecc, err := decodeEccentricity(line2)
	if err != nil {
		return OrbitalElementSet{}, err
	}
	argpDeg, err := colArgPerigee.float(line2)
	if err != nil {
		return OrbitalElementSet{}, err
	}
	maDeg, err := colMeanAnomaly.float(line2)
	if err != nil {
		return OrbitalElementSet{}, err
	}
	revsPerDay, err := colMeanMotion.float(line2)
	if err != nil {
		return OrbitalElementSet{}, err
	}

	n := revsPerDay * twoPi / physics.SecondsPerDay
	rec := OrbitalElementSet{
		SemiMajorAxis: math.Cbrt(physics.MU / (n * n)),
		Eccentricity:  ecc,
		Inclination:   incDeg * deg2rad,
		RAAN:          normalizeAngle(raanDeg * deg2rad),
		ArgPerigee:    normalizeAngle(argpDeg * deg2rad),
		MeanAnomaly:   normalizeAngle(maDeg * deg2rad),
		MeanMotion:    n,
		Epoch:         epoch,
		Format:        FormatTLE,
		Line1:         line1,
		Line2:         line2,
	}
	if err := validate(rec); err != nil {
		return OrbitalElementSet{}, err
	}
	return rec, nil
}

// decodeEpoch turns the YYDDD.DDDDDDDD epoch of line 1 into Unix seconds.
// Day 1.0 is January 1st, 00:00 UTC.
func decodeEpoch(line1 string) (float64, error) {
	yy, err := colEpochYear.integer(line1)
	if err != nil {
		return 0, err
	}
	if yy < 0 || yy > 99 {
		return 0, colEpochYear.fail(strconv.Itoa(yy), fmt.Errorf("two-digit year out of range"))
	}
	year := 1900 + yy
	if yy < epochYearPivot {
		year = 2000 + yy
	}

	day, err := colEpochDay.float(line1)
	if err != nil {
		return 0, err
	}
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	daysInYear := float64(jan1.AddDate(1, 0, 0).Sub(jan1) / (24 * time.Hour))
	if day < 1 || day >= daysInYear+1 {
		return 0, colEpochDay.fail(strconv.FormatFloat(day, 'f', -1, 64),
			fmt.Errorf("day of year outside [1, %d)", int(daysInYear)+1))
	}
	return float64(jan1.Unix()) + (day-1)*physics.SecondsPerDay, nil
}

// decodeEccentricity reads the eccentricity digits, which carry an
// implicit leading "0.".
func decodeEccentricity(line2 string) (float64, error) {
	raw, err := colEccentricity.text(line2)
	if err != nil {
		return 0, err
	}
	if raw == "" || strings.TrimLeft(raw, "0123456789") != "" {
		return 0, colEccentricity.fail(raw, errNotDigits)
	}
	v, err := strconv.ParseFloat("0."+raw, 64)
	if err != nil {
		return 0, colEccentricity.fail(raw, err)
	}
	return v, nil
}

func normalizeAngle(rad float64) float64 {
	rad = math.Mod(rad, twoPi)
	if rad < 0 {
		rad += twoPi
	}
	if rad >= twoPi {
		rad = 0
	}
	return rad
}

func validate(rec OrbitalElementSet) error {
	for _, v := range []float64{
		rec.SemiMajorAxis, rec.Eccentricity, rec.Inclination, rec.RAAN,
		rec.ArgPerigee, rec.MeanAnomaly, rec.MeanMotion, rec.Epoch,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite element", ErrInvalidElements)
		}
	}
	switch {
	case rec.MeanMotion <= 0:
		return fmt.Errorf("%w: mean motion %g rad/s must be positive", ErrInvalidElements, rec.MeanMotion)
	case rec.SemiMajorAxis <= 0:
		return fmt.Errorf("%w: semi-major axis %g m must be positive", ErrInvalidElements, rec.SemiMajorAxis)
	case rec.Eccentricity < 0 || rec.Eccentricity >= 1:
		return fmt.Errorf("%w: eccentricity %g outside [0, 1)", ErrInvalidElements, rec.Eccentricity)
	case rec.Inclination < 0 || rec.Inclination > math.Pi:
		return fmt.Errorf("%w: inclination %g rad outside [0, π]", ErrInvalidElements, rec.Inclination)
	}
	return nil
}
