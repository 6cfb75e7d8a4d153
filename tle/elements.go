// Package tle decodes Two-Line Element text into orbital element sets.
//
// Decoding is best effort: a malformed line or record is dropped and
// reported as a Failure, and the rest of the batch is still decoded.
package tle

import (
	"math"
	"time"
)

// SourceFormat identifies the text format a record was decoded from.
type SourceFormat string

// FormatTLE is the only format this package produces.
const FormatTLE SourceFormat = "TLE"

// OrbitalElementSet is one satellite's mean elements at epoch. Angles are
// radians; RAAN, ArgPerigee and MeanAnomaly are normalised to [0, 2π).
type OrbitalElementSet struct {
	Name          string       `json:"name"`
	SemiMajorAxis float64      `json:"a"` // metres
	Eccentricity  float64      `json:"e"`
	Inclination   float64      `json:"i"`
	RAAN          float64      `json:"raan"`
	ArgPerigee    float64      `json:"argp"`
	MeanAnomaly   float64      `json:"M0"`
	MeanMotion    float64      `json:"n"`     // rad/s
	Epoch         float64      `json:"epoch"` // Unix seconds
	Format        SourceFormat `json:"type"`

	// Line1 and Line2 are the data lines the record was decoded from.
	Line1 string `json:"line1"`
	Line2 string `json:"line2"`
}

// EpochTime returns the epoch as a UTC time, rounded to the nanosecond.
func (o OrbitalElementSet) EpochTime() time.Time {
	sec, frac := math.Modf(o.Epoch)
	return time.Unix(int64(sec), int64(math.Round(frac*1e9))).UTC()
}

// Period returns the orbital period implied by the mean motion.
func (o OrbitalElementSet) Period() time.Duration {
	if o.MeanMotion <= 0 {
		return 0
	}
	return time.Duration(2 * math.Pi / o.MeanMotion * float64(time.Second))
}

// Result is the outcome of decoding a batch. Records keep input order.
// Failures are ordered by line number.
type Result struct {
	Records  []OrbitalElementSet
	Failures []Failure
}
