// Package track feeds decoded element sets through an external SGP4
// propagator and the frames transforms to produce Earth-fixed and
// geodetic positions.
package track

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/signalsfoundry/orbit-frames/frames"
	"github.com/signalsfoundry/orbit-frames/tle"
)

// ErrPropagation is returned when the propagator yields no usable position,
// typically because the orbit has decayed at the requested time.
var ErrPropagation = errors.New("track: propagation failed")

// Propagator yields an inertial position in metres at a given time.
type Propagator interface {
	PositionECI(t time.Time) (frames.Vec3, error)
}

// StaticPropagator always reports the same inertial position.
type StaticPropagator struct {
	Position frames.Vec3
}

// PositionECI returns the fixed position.
func (s StaticPropagator) PositionECI(time.Time) (frames.Vec3, error) {
	return s.Position, nil
}

// SGP4Propagator propagates an element set with go-satellite. The library
// works in kilometres and whole seconds; positions are returned in metres.
type SGP4Propagator struct {
	name string
	sat  satellite.Satellite
}

// NewSGP4Propagator builds a propagator from the source lines of rec,
// using the WGS72 gravity model that TLEs are fitted against.
func NewSGP4Propagator(rec tle.OrbitalElementSet) (*SGP4Propagator, error) {
	if err := checkLibraryFields(rec.Line1, rec.Line2); err != nil {
		return nil, fmt.Errorf("track: %s: %w", rec.Name, err)
	}
	return &SGP4Propagator{
		name: rec.Name,
		sat:  satellite.TLEToSat(rec.Line1, rec.Line2, satellite.GravityWGS72),
	}, nil
}

// PositionECI propagates to t.
func (p *SGP4Propagator) PositionECI(t time.Time) (frames.Vec3, error) {
	t = t.UTC()
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	pos, _ := satellite.Propagate(p.sat, year, int(month), day, hour, min, sec)
	if !finite(pos.X, pos.Y, pos.Z) || (pos.X == 0 && pos.Y == 0 && pos.Z == 0) {
		return frames.Vec3{}, fmt.Errorf("%w: %s at %s", ErrPropagation, p.name, t.Format(time.RFC3339))
	}

	const kmToM = 1000.0
	return frames.Vec3{X: pos.X * kmToM, Y: pos.Y * kmToM, Z: pos.Z * kmToM}, nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// checkLibraryFields verifies the line-1 and line-2 fields that go-satellite
// decodes but tle does not. The library terminates the process on a bad
// field, so they are checked here using the same slicing it applies.
func checkLibraryFields(line1, line2 string) error {
	if len(line1) < 61 {
		return fmt.Errorf("line 1 has %d columns, need at least 61", len(line1))
	}
	if len(line2) < 63 {
		return fmt.Errorf("line 2 has %d columns, need at least 63", len(line2))
	}

	ints := map[string]string{
		"satellite number": strings.TrimSpace(line1[2:7]),
		"epoch year":       line1[18:20],
	}
	for field, raw := range ints {
		if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
			return fmt.Errorf("%s %q: %w", field, raw, err)
		}
	}

	squeeze := func(s string) string { return strings.Replace(s, " ", "", 2) }
	floats := []struct {
		field, raw string
	}{
		{"epoch day", line1[20:32]},
		{"mean motion derivative", squeeze(line1[33:43])},
		{"mean motion second derivative", squeeze(line1[44:45] + "." + line1[45:50] + "e" + line1[50:52])},
		{"bstar", squeeze(line1[53:54] + "." + line1[54:59] + "e" + line1[59:61])},
		{"inclination", squeeze(line2[8:16])},
		{"right ascension", squeeze(line2[17:25])},
		{"eccentricity", "." + line2[26:33]},
		{"argument of perigee", squeeze(line2[34:42])},
		{"mean anomaly", squeeze(line2[43:51])},
		{"mean motion", squeeze(line2[52:63])},
	}
	for _, f := range floats {
		if _, err := strconv.ParseFloat(f.raw, 64); err != nil {
			return fmt.Errorf("%s %q: %w", f.field, f.raw, err)
		}
	}
	return nil
}
