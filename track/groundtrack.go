package track

import (
	"context"
	"errors"
	"time"

	"github.com/signalsfoundry/orbit-frames/frames"
	"github.com/signalsfoundry/orbit-frames/timectrl"
)

// Sample is one propagated position in every frame.
type Sample struct {
	Time     time.Time       `json:"time"`
	ECI      frames.Vec3     `json:"eci_m"`
	ECEF     frames.Vec3     `json:"ecef_m"`
	Geodetic frames.Geodetic `json:"geodetic"`
}

// At propagates p to t and converts the result to ECEF and geodetic.
// t is truncated to the whole second first, the resolution of the SGP4
// library, so the position and the frame rotation refer to the same
// instant as Sample.Time.
func At(p Propagator, t time.Time) (Sample, error) {
	t = t.Truncate(time.Second)
	eci, err := p.PositionECI(t)
	if err != nil {
		return Sample{}, err
	}
	ecef := frames.ECIToECEF(eci, frames.UnixSeconds(t))
	return Sample{
		Time:     t,
		ECI:      eci,
		ECEF:     ecef,
		Geodetic: frames.ECEFToGeodetic(ecef),
	}, nil
}

// GroundTrack samples p at start and then every step until duration has
// elapsed. The last sample is at start+duration even when duration is not
// a multiple of step. Samples are in time order. The first propagation
// error stops the track and is returned with the samples collected so far.
func GroundTrack(ctx context.Context, p Propagator, start time.Time, step, duration time.Duration) ([]Sample, error) {
	first, err := At(p, start)
	if err != nil {
		return nil, err
	}
	samples := []Sample{first}
	if duration <= 0 {
		return samples, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var sampleErr error
	tc := timectrl.NewTimeController(start, step, timectrl.Accelerated)
	tc.AddListener(func(t time.Time) {
		if sampleErr != nil {
			return
		}
		s, err := At(p, t)
		if err != nil {
			sampleErr = err
			cancel()
			return
		}
		samples = append(samples, s)
	})

	if err := tc.Run(ctx, duration); err != nil && !errors.Is(err, context.Canceled) {
		return samples, err
	}
	if sampleErr != nil {
		return samples, sampleErr
	}
	// The caller's context may have been cancelled rather than ours.
	return samples, ctx.Err()
}
