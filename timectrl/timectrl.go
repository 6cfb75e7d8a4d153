// Package timectrl steps simulation time and notifies listeners on every
// tick, either paced by the wall clock or as fast as listeners return.
package timectrl

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrInvalidTick is returned when the tick is not positive.
var ErrInvalidTick = errors.New("timectrl: tick must be positive")

// Clock gives read access to the current simulation time.
type Clock interface {
	Now() time.Time
}

// Mode describes how the TimeController advances simulation time.
type Mode int

const (
	// RealTime advances one tick per tick of wall-clock time.
	RealTime Mode = iota
	// Accelerated advances as quickly as listeners return, still stepping by Tick.
	Accelerated
)

func (m Mode) String() string {
	switch m {
	case RealTime:
		return "realtime"
	case Accelerated:
		return "accelerated"
	default:
		return "unknown"
	}
}

// TimeController drives simulation time and notifies registered listeners.
type TimeController struct {
	mu        sync.RWMutex
	StartTime time.Time
	Tick      time.Duration
	Mode      Mode

	currentTime time.Time
	listeners   []func(time.Time)
}

// NewTimeController constructs a controller.
func NewTimeController(start time.Time, tick time.Duration, mode Mode) *TimeController {
	return &TimeController{
		StartTime:   start,
		Tick:        tick,
		Mode:        mode,
		currentTime: start,
	}
}

// Now returns the current simulation time.
func (tc *TimeController) Now() time.Time {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.currentTime
}

// SetTime moves the current simulation time without notifying listeners.
func (tc *TimeController) SetTime(t time.Time) {
	tc.mu.Lock()
	tc.currentTime = t
	tc.mu.Unlock()
}

// AddListener registers a callback invoked on every tick with the new
// simulation time.
func (tc *TimeController) AddListener(fn func(time.Time)) {
	tc.mu.Lock()
	tc.listeners = append(tc.listeners, fn)
	tc.mu.Unlock()
}

// Start runs the controller for duration in a separate goroutine. It
// returns a channel that is closed when the controller finishes.
func (tc *TimeController) Start(duration time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = tc.Run(context.Background(), duration)
	}()
	return done
}

// Run advances time from StartTime until duration has elapsed in
// simulation time, or forever when duration is zero or negative. When
// duration is not a multiple of Tick the last step is shortened so the
// final tick lands on StartTime+duration. It returns ctx.Err() if ctx is
// cancelled first.
func (tc *TimeController) Run(ctx context.Context, duration time.Duration) error {
	if tc.Tick <= 0 {
		return ErrInvalidTick
	}

	simTime := tc.StartTime
	tc.SetTime(simTime)

	var tick <-chan time.Time
	if tc.Mode == RealTime {
		ticker := time.NewTicker(tc.Tick)
		defer ticker.Stop()
		tick = ticker.C
	}

	for elapsed := time.Duration(0); duration <= 0 || elapsed < duration; {
		step := tc.Tick
		if duration > 0 && duration-elapsed < step {
			step = duration - elapsed
		}
		elapsed += step

		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		simTime = simTime.Add(step)
		tc.SetTime(simTime)

		tc.mu.RLock()
		listeners := tc.listeners
		tc.mu.RUnlock()
		for _, fn := range listeners {
			fn(simTime)
		}
	}
	return nil
}
