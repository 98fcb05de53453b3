package common

import (
	"sync"
	"sync/atomic"
)

// Pool is a typed sync.Pool with an enable switch. While disabled, Get always creates a
// fresh object and Put drops the object.
//
// A Pool is safe for concurrent use. T should be a pointer or reference type.
type Pool[T any] struct {
	pool    sync.Pool
	create  func() T
	reset   func(T)
	enabled atomic.Bool
}

// NewPool creates a new enabled Pool.
//
// Parameters:
//   - create: factory for new objects (must not be nil)
//   - reset: optional hook called on every object handed back via Put, before it is stored
//
// Returns:
//   - *Pool[T]: the new pool
func NewPool[T any](create func() T, reset func(T)) *Pool[T] {
	if create == nil {
		panic("common: NewPool requires a non-nil create function")
	}
	p := &Pool[T]{
		create: create,
		reset:  reset,
	}
	p.enabled.Store(true)
	return p
}

// Get returns a recycled object, or a new one if the pool is empty or disabled.
//
// Returns:
//   - T: the object
func (p *Pool[T]) Get() T {
	if p.enabled.Load() {
		if v, ok := p.pool.Get().(T); ok {
			return v
		}
	}
	return p.create()
}

// Put resets the object and returns it to the pool. No-op while the pool is disabled.
//
// Parameters:
//   - v: the object to recycle; must not be used by the caller afterwards
func (p *Pool[T]) Put(v T) {
	if p.reset != nil {
		p.reset(v)
	}
	if !p.enabled.Load() {
		return
	}
	p.pool.Put(v)
}

// Enabled reports whether the pool recycles objects.
func (p *Pool[T]) Enabled() bool {
	return p.enabled.Load()
}

// SetEnabled turns recycling on or off. Objects already pooled are simply never handed
// out again while the pool is disabled.
//
// Parameters:
//   - enabled: true to recycle objects, false to always allocate
func (p *Pool[T]) SetEnabled(enabled bool) {
	p.enabled.Store(enabled)
}
