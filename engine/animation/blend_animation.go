package animation

import (
	"fmt"
	"time"

	"github.com/Carmen-Shannon/oxy-blend/common"
)

// BlendedAnimation is the type-erased view of a BlendAnimation. Blend groups keep one per
// target property.
type BlendedAnimation interface {
	// TargetProperty returns the property the aggregator writes.
	TargetProperty() string

	attach(group *BlendGroup, property string, slots int)
	setSlot(index int, a Animation) error
	bind(target AnimatableObject) (propertyBinding, bool)
}

// BlendAnimation blends the animations of one target property across the entries of a blend
// group. Slot i holds the animation of entry i, or nil if entry i does not animate the property.
type BlendAnimation[T any] struct {
	group      *BlendGroup
	property   string
	traits     Traits[T]
	animations []TypedAnimation[T]
}

var _ BlendedAnimation = &BlendAnimation[float32]{}

// NewBlendAnimation creates an unattached blend aggregator. It becomes usable once a blend
// group attaches it while building its blend table.
func NewBlendAnimation[T any](traits Traits[T]) *BlendAnimation[T] {
	if traits == nil {
		panic("animation: NewBlendAnimation requires non-nil traits")
	}
	return &BlendAnimation[T]{traits: traits}
}

func (b *BlendAnimation[T]) TargetProperty() string {
	return b.property
}

// Traits returns the value traits of the aggregator.
func (b *BlendAnimation[T]) Traits() Traits[T] {
	return b.traits
}

// Group returns the owning blend group, or nil while unattached.
func (b *BlendAnimation[T]) Group() *BlendGroup {
	return b.group
}

// Len returns the number of slots, equal to the number of group entries.
func (b *BlendAnimation[T]) Len() int {
	return len(b.animations)
}

// Animation returns the animation in slot index, or nil.
func (b *BlendAnimation[T]) Animation(index int) TypedAnimation[T] {
	if index < 0 || index >= len(b.animations) {
		return nil
	}
	return b.animations[index]
}

func (b *BlendAnimation[T]) attach(group *BlendGroup, property string, slots int) {
	b.group = group
	b.property = property
	b.animations = make([]TypedAnimation[T], slots)
}

func (b *BlendAnimation[T]) setSlot(index int, a Animation) error {
	typed, ok := a.(TypedAnimation[T])
	if !ok {
		return fmt.Errorf("animation %T does not produce the value type of property %q: %w", a, b.property, ErrInvalidArgument)
	}
	if index < 0 || index >= len(b.animations) {
		return fmt.Errorf("slot %d of property %q: %w", index, b.property, ErrIndexOutOfRange)
	}
	if b.animations[index] == nil {
		b.animations[index] = typed
	}
	return nil
}

func (b *BlendAnimation[T]) bind(target AnimatableObject) (propertyBinding, bool) {
	p, ok := PropertyOf[T](target, b.property)
	if !ok {
		return nil, false
	}
	return &blendBinding[T]{animation: b, property: p}, true
}

// GetValue blends the slot animations at parent-local time t into result.
//
// Each slot animation is sampled at t scaled by its entry's time normalization factor and
// contributes with its entry's normalized weight. When no slot has a positive weight the
// default source is copied. result may alias defaultSource or defaultTarget.
//
// Parameters:
//   - t: the parent-local time
//   - defaultSource: the value without animation
//   - defaultTarget: the target of relative animations
//   - result: destination of the blended value
//
// Returns:
//   - error: ErrInvalidOperation if the aggregator was never attached to a group
func (b *BlendAnimation[T]) GetValue(t time.Duration, defaultSource, defaultTarget, result *T) error {
	g := b.group
	if g == nil {
		return fmt.Errorf("blend animation not properly attached: %w", ErrInvalidOperation)
	}
	g.Update()

	// Snapshot the weights once so a concurrent recompute cannot change them mid-blend.
	var buf [16]float32
	weights := buf[:0]
	if len(b.animations) > len(buf) {
		weights = make([]float32, 0, len(b.animations))
	}
	var sum float64
	for i, a := range b.animations {
		var w float32
		if a != nil {
			w = g.normalizedWeight(i)
		}
		weights = append(weights, w)
		sum += float64(w)
	}
	if !(sum > 0) {
		b.traits.Copy(defaultSource, result)
		return nil
	}

	var acc, next T
	b.traits.Create(defaultSource, &acc)
	b.traits.Create(defaultSource, &next)
	b.traits.BeginBlend(&acc)
	for i, a := range b.animations {
		w := weights[i]
		if a == nil || w <= 0 {
			continue
		}
		at := common.ScaleDuration(t, g.timeNormalizationFactor(i))
		a.GetValue(at, defaultSource, defaultTarget, &next)
		b.traits.BlendNext(&acc, &next, float32(float64(w)/sum))
	}
	b.traits.EndBlend(&acc)
	b.traits.Copy(&acc, result)
	b.traits.Recycle(&next)
	b.traits.Recycle(&acc)
	return nil
}

// propertyBinding connects one blend aggregator to one target property.
type propertyBinding interface {
	update(t time.Duration) error
	release()
}

type blendBinding[T any] struct {
	animation *BlendAnimation[T]
	property  AnimatableProperty[T]
	source    T
	value     T
	created   bool
}

func (b *blendBinding[T]) update(t time.Duration) error {
	b.source = b.property.BaseValue()
	if !b.created {
		b.animation.traits.Create(&b.source, &b.value)
		b.created = true
	}
	if err := b.animation.GetValue(t, &b.source, &b.source, &b.value); err != nil {
		return fmt.Errorf("property %q: %w", b.animation.property, err)
	}
	b.property.SetAnimationValue(b.value)
	b.property.SetIsAnimated(true)
	return nil
}

func (b *blendBinding[T]) release() {
	b.property.SetIsAnimated(false)
	if b.created {
		b.animation.traits.Recycle(&b.value)
		b.created = false
	}
}
