// Package animation contains the timeline framework and the blend-weight synchronization
// engine: blend groups that normalize the weights of several animations, synchronize their
// durations, and fold their values per target property through pluggable value traits.
package animation

import (
	"math"
	"time"
)

// MaxDuration marks a timeline that never ends.
const MaxDuration = time.Duration(math.MaxInt64)

// AnimationState describes where a timeline is at a given time.
type AnimationState int

const (
	// AnimationStateDelayed means the timeline has not started yet.
	AnimationStateDelayed AnimationState = iota
	// AnimationStatePlaying means the timeline is active.
	AnimationStatePlaying
	// AnimationStateFilling means the timeline has ended and holds its last value.
	AnimationStateFilling
	// AnimationStateStopped means the timeline has ended and produces no value.
	AnimationStateStopped
)

func (s AnimationState) String() string {
	switch s {
	case AnimationStateDelayed:
		return "delayed"
	case AnimationStatePlaying:
		return "playing"
	case AnimationStateFilling:
		return "filling"
	case AnimationStateStopped:
		return "stopped"
	}
	return "unknown"
}

// FillBehavior decides what a timeline reports once its duration has elapsed.
type FillBehavior int

const (
	// FillBehaviorHold keeps the final value.
	FillBehaviorHold FillBehavior = iota
	// FillBehaviorStop stops the timeline.
	FillBehaviorStop
)

func (f FillBehavior) String() string {
	if f == FillBehaviorStop {
		return "stop"
	}
	return "hold"
}

// LoopBehavior decides how time is mapped once a cycle completes.
type LoopBehavior int

const (
	// LoopBehaviorConstant clamps time to the cycle.
	LoopBehaviorConstant LoopBehavior = iota
	// LoopBehaviorCycle wraps time back to the cycle start.
	LoopBehaviorCycle
	// LoopBehaviorCycleOffset wraps time and accumulates the value offset of each cycle.
	// Blend groups reject it.
	LoopBehaviorCycleOffset
	// LoopBehaviorOscillate plays the cycle forward, then backward.
	LoopBehaviorOscillate
)

func (l LoopBehavior) String() string {
	switch l {
	case LoopBehaviorConstant:
		return "constant"
	case LoopBehaviorCycle:
		return "cycle"
	case LoopBehaviorCycleOffset:
		return "cycle-offset"
	case LoopBehaviorOscillate:
		return "oscillate"
	}
	return "unknown"
}

// Timeline is anything that can be placed on a time axis.
//
// The time passed to every method is the parent-local time: the time since the parent
// started the timeline, before the timeline's own delay, speed, and loop are applied.
type Timeline interface {
	// GetState returns the state of the timeline at the given time.
	//
	// Parameters:
	//   - t: the parent-local time
	//
	// Returns:
	//   - AnimationState: the state at t
	GetState(t time.Duration) AnimationState

	// GetAnimationTime maps a parent-local time to the timeline's own animation time,
	// applying delay, speed, fill, and loop behavior.
	//
	// Parameters:
	//   - t: the parent-local time
	//
	// Returns:
	//   - time.Duration: the animation time
	//   - bool: false while delayed or once stopped
	GetAnimationTime(t time.Duration) (time.Duration, bool)

	// GetTotalDuration returns the parent-local time at which the timeline ends, including
	// its delay. MaxDuration means it never ends.
	//
	// Returns:
	//   - time.Duration: the total duration
	GetTotalDuration() time.Duration
}

// TimelineGroup is a container of child timelines. Blend groups look one level into a
// TimelineGroup to find the animations it contributes.
type TimelineGroup interface {
	Timeline

	// Timelines returns the child timelines in order.
	//
	// Returns:
	//   - []Timeline: the children
	Timelines() []Timeline
}

// Animation is a timeline that produces values for a named target property.
type Animation interface {
	Timeline

	// TargetProperty returns the name of the animated property. The empty string is a valid
	// name for an untargeted animation.
	//
	// Returns:
	//   - string: the target property name
	TargetProperty() string

	// CreateBlendAnimation returns an empty blend aggregator for this animation's value type.
	// Blend groups call it once per target property when they build their blend table.
	//
	// Returns:
	//   - BlendedAnimation: the aggregator, usually NewBlendAnimation(a.Traits())
	CreateBlendAnimation() BlendedAnimation
}

// TypedAnimation is an Animation with a concrete value type.
type TypedAnimation[T any] interface {
	Animation

	// Traits returns the value traits used to create, copy, and blend values of T.
	//
	// Returns:
	//   - Traits[T]: the traits
	Traits() Traits[T]

	// GetValue writes the animation value at the given parent-local time into result.
	// While the animation is delayed or stopped the default source is copied instead.
	// result may alias defaultSource or defaultTarget.
	//
	// Parameters:
	//   - t: the parent-local time
	//   - defaultSource: the value the property would have without this animation
	//   - defaultTarget: the value relative animations move toward
	//   - result: destination of the value
	GetValue(t time.Duration, defaultSource, defaultTarget, result *T)
}
