package animation

import (
	"slices"
	"sync"
)

// AnimatableProperty is a value that animations can override.
//
// The effective value of a property is its animation value while it is animated, and its
// base value otherwise.
type AnimatableProperty[T any] interface {
	// HasBaseValue reports whether the property has a base value to blend from.
	HasBaseValue() bool

	// BaseValue returns the value the property has without animation.
	BaseValue() T

	// IsAnimated reports whether the animation value currently overrides the base value.
	IsAnimated() bool

	// SetIsAnimated turns the animation override on or off.
	SetIsAnimated(animated bool)

	// AnimationValue returns the value most recently written by an animation.
	AnimationValue() T

	// SetAnimationValue stores a new animation value.
	SetAnimationValue(value T)
}

// AnimatableObject exposes animatable properties by name. Playback instances bind to the
// properties whose names match the target properties of their animations.
type AnimatableObject interface {
	// GetAnimatableProperty returns the property with the given name, or nil.
	//
	// Parameters:
	//   - name: the property name
	//
	// Returns:
	//   - any: an AnimatableProperty[T] for some T, or nil when there is no such property
	GetAnimatableProperty(name string) any
}

// PropertyOf looks up a property by name and checks its value type.
//
// Parameters:
//   - obj: the object to search
//   - name: the property name
//
// Returns:
//   - AnimatableProperty[T]: the property
//   - bool: false when the object has no such property or its value type is not T
func PropertyOf[T any](obj AnimatableObject, name string) (AnimatableProperty[T], bool) {
	if obj == nil {
		return nil, false
	}
	p, ok := obj.GetAnimatableProperty(name).(AnimatableProperty[T])
	return p, ok && p != nil
}

// Property is a general purpose AnimatableProperty guarded by a read-write mutex.
type Property[T any] struct {
	mu             sync.RWMutex
	baseValue      T
	animationValue T
	isAnimated     bool
}

var _ AnimatableProperty[float32] = &Property[float32]{}

// NewProperty creates a property with the given base value.
func NewProperty[T any](base T) *Property[T] {
	return &Property[T]{baseValue: base}
}

func (p *Property[T]) HasBaseValue() bool {
	return true
}

func (p *Property[T]) BaseValue() T {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.baseValue
}

// SetBaseValue changes the value the property has without animation.
func (p *Property[T]) SetBaseValue(value T) {
	p.mu.Lock()
	p.baseValue = value
	p.mu.Unlock()
}

func (p *Property[T]) IsAnimated() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.isAnimated
}

func (p *Property[T]) SetIsAnimated(animated bool) {
	p.mu.Lock()
	p.isAnimated = animated
	p.mu.Unlock()
}

func (p *Property[T]) AnimationValue() T {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.animationValue
}

func (p *Property[T]) SetAnimationValue(value T) {
	p.mu.Lock()
	p.animationValue = value
	p.mu.Unlock()
}

// Value returns the effective value: the animation value while animated, else the base value.
func (p *Property[T]) Value() T {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.isAnimated {
		return p.animationValue
	}
	return p.baseValue
}

// PropertyMap is an AnimatableObject backed by a name to property map.
type PropertyMap struct {
	mu         sync.RWMutex
	properties map[string]any
}

var _ AnimatableObject = &PropertyMap{}

// NewPropertyMap creates an empty PropertyMap.
func NewPropertyMap() *PropertyMap {
	return &PropertyMap{properties: make(map[string]any)}
}

// Register adds or replaces a property. property should be an AnimatableProperty[T].
//
// Parameters:
//   - name: the property name
//   - property: the property
func (m *PropertyMap) Register(name string, property any) {
	m.mu.Lock()
	m.properties[name] = property
	m.mu.Unlock()
}

// Unregister removes a property.
func (m *PropertyMap) Unregister(name string) {
	m.mu.Lock()
	delete(m.properties, name)
	m.mu.Unlock()
}

func (m *PropertyMap) GetAnimatableProperty(name string) any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.properties[name]
}

// Names returns the registered property names in sorted order.
func (m *PropertyMap) Names() []string {
	m.mu.RLock()
	names := make([]string, 0, len(m.properties))
	for name := range m.properties {
		names = append(names, name)
	}
	m.mu.RUnlock()
	slices.Sort(names)
	return names
}
