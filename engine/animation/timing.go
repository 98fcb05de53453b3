package animation

import (
	"fmt"
	"math"
	"time"

	"github.com/Carmen-Shannon/oxy-blend/common"
)

// Timing holds the playback parameters every timeline shares: when it starts, how fast it
// runs, what happens after its duration, and how it loops within its cycle.
type Timing struct {
	// Delay is the parent-local time at which the timeline starts. May be negative to start
	// part way in.
	Delay time.Duration

	// Speed scales time. 1 is normal speed; 0 freezes the timeline at its start. Must not
	// be negative.
	Speed float32

	FillBehavior FillBehavior
	LoopBehavior LoopBehavior
}

// DefaultTiming returns a Timing with no delay, normal speed, hold fill, and constant loop.
func DefaultTiming() Timing {
	return Timing{Speed: 1}
}

// ValidateSpeed reports whether speed can be used as a timeline speed.
//
// Parameters:
//   - speed: the candidate speed
//
// Returns:
//   - error: ErrInvalidArgument for negative or non-finite values
func ValidateSpeed(speed float32) error {
	if speed < 0 || !common.IsFinite32(speed) {
		return fmt.Errorf("speed %v must be finite and non-negative: %w", speed, ErrInvalidArgument)
	}
	return nil
}

// localTime strips the delay and applies the speed. ok is false while delayed.
func (tm Timing) localTime(t time.Duration) (time.Duration, bool) {
	t -= tm.Delay
	if t < 0 {
		return 0, false
	}
	switch tm.Speed {
	case 1:
		return t, true
	case 0:
		return 0, true
	}
	return common.ScaleDuration(t, float64(tm.Speed)), true
}

// State returns the state at parent-local time t for a timeline with the given duration.
//
// Parameters:
//   - t: the parent-local time
//   - duration: the active duration of the timeline
//
// Returns:
//   - AnimationState: the state at t
func (tm Timing) State(t, duration time.Duration) AnimationState {
	local, ok := tm.localTime(t)
	if !ok {
		return AnimationStateDelayed
	}
	if local > duration {
		if tm.FillBehavior == FillBehaviorStop {
			return AnimationStateStopped
		}
		return AnimationStateFilling
	}
	return AnimationStatePlaying
}

// AnimationTime maps parent-local time t to the animation time of a timeline.
//
// Parameters:
//   - t: the parent-local time
//   - duration: the active duration; the timeline fills or stops after it
//   - cycle: the length of one loop cycle
//
// Returns:
//   - time.Duration: the animation time
//   - bool: false while delayed or once stopped
func (tm Timing) AnimationTime(t, duration, cycle time.Duration) (time.Duration, bool) {
	local, ok := tm.localTime(t)
	if !ok {
		return 0, false
	}
	if local > duration {
		if tm.FillBehavior == FillBehaviorStop {
			return 0, false
		}
		local = duration
	}
	return LoopParameter(local, 0, cycle, tm.LoopBehavior), true
}

// TotalDuration returns the parent-local end time of a timeline with the given duration.
//
// Parameters:
//   - duration: the active duration of the timeline
//
// Returns:
//   - time.Duration: delay plus the speed-scaled duration, or MaxDuration when it never ends
func (tm Timing) TotalDuration(duration time.Duration) time.Duration {
	if tm.Speed == 0 || duration == MaxDuration {
		return MaxDuration
	}
	d := duration
	if tm.Speed != 1 {
		d = common.ScaleDuration(duration, 1/float64(tm.Speed))
	}
	if tm.Delay < 0 {
		return max(d+tm.Delay, 0)
	}
	return common.AddDuration(tm.Delay, d)
}

// LoopParameter maps a time onto a cycle [start, start+duration] according to the loop
// behavior. Cycle wraps around and maps exact positive multiples of the cycle to its end, so
// a clip sampled at the end of its second pass shows its last frame. Oscillate runs the
// cycle backward on every other pass. Constant clamps. A non-positive duration maps
// everything to start.
//
// Parameters:
//   - t: the time to map
//   - start: the start of the cycle
//   - duration: the length of the cycle
//   - behavior: the loop behavior
//
// Returns:
//   - time.Duration: the mapped time
func LoopParameter(t, start, duration time.Duration, behavior LoopBehavior) time.Duration {
	if duration <= 0 {
		return start
	}
	rel := t - start
	switch behavior {
	case LoopBehaviorCycle, LoopBehaviorCycleOffset:
		if rel >= 0 && rel <= duration {
			return t
		}
		m := rel % duration
		if m < 0 {
			m += duration
		}
		if m == 0 && rel > 0 {
			return start + duration
		}
		return start + m
	case LoopBehaviorOscillate:
		if duration > math.MaxInt64/2 {
			return start + min(max(rel, 0), duration)
		}
		period := 2 * duration
		m := rel % period
		if m < 0 {
			m += period
		}
		if m > duration {
			m = period - m
		}
		return start + m
	}
	return start + min(max(rel, 0), duration)
}
