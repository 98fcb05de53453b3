package animation

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BlendGroupInstance is the playback of a blend group. It keeps the group time and the
// synchronized duration seen at the last update, so looping playback stays in phase when
// the weights and therefore the synchronized duration change.
//
// Instances come from the group's instance pool and go back to it on Stop.
type BlendGroupInstance struct {
	id             uuid.UUID
	group          *BlendGroup
	time           time.Duration
	hasTime        bool
	cachedDuration time.Duration
	bindings       []propertyBinding
}

var _ Instance = &BlendGroupInstance{}

func (inst *BlendGroupInstance) attach(g *BlendGroup) {
	inst.id = uuid.New()
	inst.group = g
	g.activeInstances.Add(1)
}

// reset clears every field for reuse from the pool.
func (inst *BlendGroupInstance) reset() {
	inst.id = uuid.Nil
	inst.group = nil
	inst.time = 0
	inst.hasTime = false
	inst.cachedDuration = 0
	clear(inst.bindings)
	inst.bindings = inst.bindings[:0]
}

func (inst *BlendGroupInstance) ID() uuid.UUID {
	return inst.id
}

// Group returns the blend group being played, or nil once stopped.
func (inst *BlendGroupInstance) Group() *BlendGroup {
	return inst.group
}

func (inst *BlendGroupInstance) Time() (time.Duration, bool) {
	return inst.time, inst.hasTime
}

// SetTime moves the playback to t. The previous time is first rescaled by the group so the
// elapsed delta lands in the same phase of the current synchronized cycle.
func (inst *BlendGroupInstance) SetTime(t time.Duration) {
	if inst.group == nil {
		return
	}
	if !inst.hasTime {
		inst.cachedDuration = 0
		inst.time = t
		inst.hasTime = true
		return
	}
	delta := t - inst.time
	base := inst.group.AdjustTimeline(inst.time, &inst.cachedDuration)
	inst.time = base + delta
}

func (inst *BlendGroupInstance) AdvanceTime(delta time.Duration) {
	if !inst.hasTime {
		inst.SetTime(0)
	}
	inst.SetTime(inst.time + delta)
}

func (inst *BlendGroupInstance) ResetTime() {
	inst.time = 0
	inst.hasTime = false
	inst.cachedDuration = 0
}

func (inst *BlendGroupInstance) State() AnimationState {
	if inst.group == nil || !inst.hasTime {
		return AnimationStateStopped
	}
	return inst.group.GetState(inst.time)
}

func (inst *BlendGroupInstance) Bind(target AnimatableObject) int {
	if inst.group == nil || target == nil {
		return 0
	}
	n := 0
	for _, ba := range inst.group.blendAnimationsSorted() {
		if b, ok := ba.bind(target); ok {
			inst.bindings = append(inst.bindings, b)
			n++
		}
	}
	return n
}

func (inst *BlendGroupInstance) Apply() error {
	if inst.group == nil {
		return fmt.Errorf("apply blend group instance: %w", ErrInvalidOperation)
	}
	if !inst.hasTime {
		inst.releaseBindings()
		return nil
	}
	at, ok := inst.group.GetAnimationTime(inst.time)
	if !ok {
		inst.releaseBindings()
		return nil
	}
	var errs error
	for _, b := range inst.bindings {
		if err := b.update(at); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return errs
}

func (inst *BlendGroupInstance) releaseBindings() {
	for _, b := range inst.bindings {
		b.release()
	}
}

// Stop releases every bound property, detaches from the group, and returns the instance to
// the pool.
func (inst *BlendGroupInstance) Stop() {
	g := inst.group
	if g == nil {
		return
	}
	inst.releaseBindings()
	g.release(inst)
}
