package animation

import (
	"math"
	"sync/atomic"
)

// BlendWeight is the animatable weight of one blend group entry. It can be set directly
// (base value) or driven by another animation (animation value). Every change of the
// effective value marks the owning group dirty.
//
// All fields are atomic so weights can be written from any goroutine while playback reads
// the group.
type BlendWeight struct {
	owner          atomic.Pointer[BlendGroup]
	baseValue      atomic.Uint32
	animationValue atomic.Uint32
	isAnimated     atomic.Bool
}

var _ AnimatableProperty[float32] = &BlendWeight{}

func newBlendWeight(owner *BlendGroup, value float32) *BlendWeight {
	w := &BlendWeight{}
	w.baseValue.Store(math.Float32bits(value))
	w.owner.Store(owner)
	return w
}

func (w *BlendWeight) notify() {
	if g := w.owner.Load(); g != nil {
		g.invalidate()
	}
}

func (w *BlendWeight) detach() {
	w.owner.Store(nil)
}

func (w *BlendWeight) HasBaseValue() bool {
	return true
}

func (w *BlendWeight) BaseValue() float32 {
	return math.Float32frombits(w.baseValue.Load())
}

// SetBaseValue changes the base weight. The owning group only becomes dirty if the weight is
// not currently animated. Prefer BlendGroup.SetWeight, which validates the value; weights
// that are negative or not finite count as zero.
func (w *BlendWeight) SetBaseValue(value float32) {
	old := w.baseValue.Swap(math.Float32bits(value))
	if old == math.Float32bits(value) {
		return
	}
	if !w.isAnimated.Load() {
		w.notify()
	}
}

func (w *BlendWeight) IsAnimated() bool {
	return w.isAnimated.Load()
}

func (w *BlendWeight) SetIsAnimated(animated bool) {
	if w.isAnimated.Swap(animated) != animated {
		w.notify()
	}
}

func (w *BlendWeight) AnimationValue() float32 {
	return math.Float32frombits(w.animationValue.Load())
}

func (w *BlendWeight) SetAnimationValue(value float32) {
	old := w.animationValue.Swap(math.Float32bits(value))
	if old == math.Float32bits(value) {
		return
	}
	if w.isAnimated.Load() {
		w.notify()
	}
}

// Value returns the effective weight: the animation value while animated, else the base value.
func (w *BlendWeight) Value() float32 {
	if w.isAnimated.Load() {
		return w.AnimationValue()
	}
	return w.BaseValue()
}
