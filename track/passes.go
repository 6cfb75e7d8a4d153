package track

import (
	"time"

	"github.com/signalsfoundry/orbit-frames/frames"
)

// Pass is a contiguous run of samples in which the satellite stays at or
// above the minimum elevation for an observer. Start and End are sample
// times, so their accuracy is bounded by the track step.
type Pass struct {
	Start           time.Time   `json:"start"`
	End             time.Time   `json:"end"`
	MaxElevationDeg float64     `json:"max_el_deg"`
	Culmination     frames.Look `json:"culmination"`
}

// Passes scans a ground track for visibility windows from observer.
// samples must be in time order, as GroundTrack returns them.
func Passes(samples []Sample, observer frames.Geodetic, minElevationDeg float64) []Pass {
	var (
		passes []Pass
		cur    *Pass
	)
	for _, s := range samples {
		look := frames.LookAngles(observer, s.ECEF)
		if look.ElevationDeg < minElevationDeg {
			if cur != nil {
				passes = append(passes, *cur)
				cur = nil
			}
			continue
		}
		if cur == nil {
			cur = &Pass{Start: s.Time, MaxElevationDeg: look.ElevationDeg, Culmination: look}
		}
		cur.End = s.Time
		if look.ElevationDeg > cur.MaxElevationDeg {
			cur.MaxElevationDeg = look.ElevationDeg
			cur.Culmination = look
		}
	}
	if cur != nil {
		passes = append(passes, *cur)
	}
	return passes
}
