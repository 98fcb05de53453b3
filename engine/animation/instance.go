package animation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Instance is the playback state of a timeline: its current time and the target properties
// it writes to. Instances are driven by one goroutine at a time.
type Instance interface {
	// ID returns the unique identifier of this playback.
	ID() uuid.UUID

	// Time returns the current parent-local time.
	//
	// Returns:
	//   - time.Duration: the current time
	//   - bool: false before the first SetTime or AdvanceTime
	Time() (time.Duration, bool)

	// SetTime moves the playback to parent-local time t.
	SetTime(t time.Duration)

	// AdvanceTime moves the playback forward by delta. The first call starts at zero.
	AdvanceTime(delta time.Duration)

	// ResetTime clears the current time.
	ResetTime()

	// State returns the state of the timeline at the current time, or
	// AnimationStateStopped before the first update.
	State() AnimationState

	// Bind connects the instance to the matching properties of a target.
	//
	// Parameters:
	//   - target: the object whose properties are animated
	//
	// Returns:
	//   - int: the number of properties bound
	Bind(target AnimatableObject) int

	// Apply writes the values at the current time into every bound property. Properties are
	// released while the timeline is delayed or stopped.
	//
	// Returns:
	//   - error: a joined error of every property that failed to update
	Apply() error

	// Stop releases every bound property and ends the playback. The instance must not be used
	// afterwards.
	Stop()
}

// Playable is anything that can create playback instances.
type Playable interface {
	// CreateInstance creates a new playback instance.
	//
	// Returns:
	//   - Instance: the instance
	//   - error: when the timeline cannot be played
	CreateInstance() (Instance, error)
}

// AnimationInstance plays a single typed animation into one property.
type AnimationInstance[T any] struct {
	id        uuid.UUID
	animation TypedAnimation[T]
	time      time.Duration
	hasTime   bool
	property  AnimatableProperty[T]
	source    T
	value     T
	created   bool
	stopped   bool
}

var _ Instance = &AnimationInstance[float32]{}

// NewAnimationInstance creates a playback instance for a typed animation.
func NewAnimationInstance[T any](a TypedAnimation[T]) *AnimationInstance[T] {
	if a == nil {
		panic("animation: NewAnimationInstance requires a non-nil animation")
	}
	return &AnimationInstance[T]{
		id:        uuid.New(),
		animation: a,
	}
}

func (inst *AnimationInstance[T]) ID() uuid.UUID {
	return inst.id
}

func (inst *AnimationInstance[T]) Time() (time.Duration, bool) {
	return inst.time, inst.hasTime
}

func (inst *AnimationInstance[T]) SetTime(t time.Duration) {
	inst.time = t
	inst.hasTime = true
}

func (inst *AnimationInstance[T]) AdvanceTime(delta time.Duration) {
	inst.SetTime(inst.time + delta)
}

func (inst *AnimationInstance[T]) ResetTime() {
	inst.time = 0
	inst.hasTime = false
}

func (inst *AnimationInstance[T]) State() AnimationState {
	if !inst.hasTime {
		return AnimationStateStopped
	}
	return inst.animation.GetState(inst.time)
}

func (inst *AnimationInstance[T]) Bind(target AnimatableObject) int {
	p, ok := PropertyOf[T](target, inst.animation.TargetProperty())
	if !ok {
		return 0
	}
	inst.release()
	inst.property = p
	return 1
}

func (inst *AnimationInstance[T]) Apply() error {
	if inst.stopped {
		return fmt.Errorf("apply %q: instance stopped: %w", inst.animation.TargetProperty(), ErrInvalidOperation)
	}
	if inst.property == nil {
		return nil
	}
	if !inst.hasTime {
		inst.property.SetIsAnimated(false)
		return nil
	}
	switch inst.animation.GetState(inst.time) {
	case AnimationStateDelayed, AnimationStateStopped:
		inst.property.SetIsAnimated(false)
		return nil
	}

	traits := inst.animation.Traits()
	inst.source = inst.property.BaseValue()
	if !inst.created {
		traits.Create(&inst.source, &inst.value)
		inst.created = true
	}
	inst.animation.GetValue(inst.time, &inst.source, &inst.source, &inst.value)
	inst.property.SetAnimationValue(inst.value)
	inst.property.SetIsAnimated(true)
	return nil
}

func (inst *AnimationInstance[T]) release() {
	if inst.property != nil {
		inst.property.SetIsAnimated(false)
	}
	if inst.created {
		inst.animation.Traits().Recycle(&inst.value)
		inst.created = false
	}
}

func (inst *AnimationInstance[T]) Stop() {
	if inst.stopped {
		return
	}
	inst.release()
	inst.property = nil
	inst.stopped = true
}
