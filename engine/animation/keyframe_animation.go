package animation

import (
	"cmp"
	"fmt"
	"slices"
	"sort"
	"time"
)

// KeyFrame is a value at a point on the animation time axis.
type KeyFrame[T any] struct {
	Time  time.Duration
	Value T
}

// Interpolator writes the value between a (p = 0) and b (p = 1) into result.
type Interpolator[T any] func(a, b *T, p float32, result *T)

// KeyFrameAnimation samples a sorted list of key frames, interpolating between neighbours.
// Its natural duration is the time of the last key frame.
//
// Timing may be changed freely while no playback reads the animation.
type KeyFrameAnimation[T any] struct {
	Timing

	property    string
	traits      Traits[T]
	interpolate Interpolator[T]
	keyFrames   []KeyFrame[T]
	duration    time.Duration
	hasDuration bool
}

var _ TypedAnimation[float32] = &KeyFrameAnimation[float32]{}

// NewKeyFrameAnimation creates a key-frame animation with default timing. The key frames
// are sorted by time.
//
// Parameters:
//   - property: the target property name
//   - traits: the value traits of T
//   - interpolate: the interpolator between neighbouring key frames
//   - keyFrames: the key frames; at least one is required
//
// Returns:
//   - *KeyFrameAnimation[T]: the animation
//   - error: ErrInvalidArgument for missing traits, interpolator, or key frames, or a negative key time
func NewKeyFrameAnimation[T any](property string, traits Traits[T], interpolate Interpolator[T], keyFrames ...KeyFrame[T]) (*KeyFrameAnimation[T], error) {
	if traits == nil || interpolate == nil {
		return nil, fmt.Errorf("key-frame animation %q needs traits and an interpolator: %w", property, ErrInvalidArgument)
	}
	if len(keyFrames) == 0 {
		return nil, fmt.Errorf("key-frame animation %q has no key frames: %w", property, ErrInvalidArgument)
	}
	frames := slices.Clone(keyFrames)
	slices.SortStableFunc(frames, func(a, b KeyFrame[T]) int {
		return cmp.Compare(a.Time, b.Time)
	})
	if frames[0].Time < 0 {
		return nil, fmt.Errorf("key-frame animation %q has a key frame at %v: %w", property, frames[0].Time, ErrInvalidArgument)
	}
	return &KeyFrameAnimation[T]{
		Timing:      DefaultTiming(),
		property:    property,
		traits:      traits,
		interpolate: interpolate,
		keyFrames:   frames,
	}, nil
}

func (a *KeyFrameAnimation[T]) TargetProperty() string {
	return a.property
}

func (a *KeyFrameAnimation[T]) Traits() Traits[T] {
	return a.traits
}

// KeyFrames returns the sorted key frames. The slice must not be modified.
func (a *KeyFrameAnimation[T]) KeyFrames() []KeyFrame[T] {
	return a.keyFrames
}

// NaturalDuration returns the time of the last key frame.
func (a *KeyFrameAnimation[T]) NaturalDuration() time.Duration {
	return a.keyFrames[len(a.keyFrames)-1].Time
}

// SetDuration overrides the active duration. A duration longer than the natural duration
// makes a looping animation repeat.
func (a *KeyFrameAnimation[T]) SetDuration(d time.Duration) {
	a.duration = max(d, 0)
	a.hasDuration = true
}

// ClearDuration restores the natural duration.
func (a *KeyFrameAnimation[T]) ClearDuration() {
	a.duration = 0
	a.hasDuration = false
}

func (a *KeyFrameAnimation[T]) activeDuration() time.Duration {
	if a.hasDuration {
		return a.duration
	}
	return a.NaturalDuration()
}

func (a *KeyFrameAnimation[T]) GetState(t time.Duration) AnimationState {
	return a.Timing.State(t, a.activeDuration())
}

func (a *KeyFrameAnimation[T]) GetAnimationTime(t time.Duration) (time.Duration, bool) {
	return a.Timing.AnimationTime(t, a.activeDuration(), a.NaturalDuration())
}

func (a *KeyFrameAnimation[T]) GetTotalDuration() time.Duration {
	return a.Timing.TotalDuration(a.activeDuration())
}

func (a *KeyFrameAnimation[T]) GetValue(t time.Duration, defaultSource, defaultTarget, result *T) {
	at, ok := a.GetAnimationTime(t)
	if !ok {
		a.traits.Copy(defaultSource, result)
		return
	}
	a.sample(at, result)
}

// sample writes the interpolated key-frame value at animation time at into result.
func (a *KeyFrameAnimation[T]) sample(at time.Duration, result *T) {
	frames := a.keyFrames
	last := len(frames) - 1
	if at <= frames[0].Time {
		a.traits.Copy(&frames[0].Value, result)
		return
	}
	if at >= frames[last].Time {
		a.traits.Copy(&frames[last].Value, result)
		return
	}
	i := sort.Search(len(frames), func(i int) bool { return frames[i].Time > at }) - 1
	k0, k1 := &frames[i], &frames[i+1]
	span := k1.Time - k0.Time
	if span <= 0 {
		a.traits.Copy(&k1.Value, result)
		return
	}
	p := float32(float64(at-k0.Time) / float64(span))
	a.interpolate(&k0.Value, &k1.Value, p, result)
}

func (a *KeyFrameAnimation[T]) CreateBlendAnimation() BlendedAnimation {
	return NewBlendAnimation(a.traits)
}

// CreateInstance creates a playback instance for the animation.
func (a *KeyFrameAnimation[T]) CreateInstance() (Instance, error) {
	return NewAnimationInstance[T](a), nil
}
