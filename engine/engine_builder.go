package engine

import (
	"github.com/Carmen-Shannon/oxy-blend/engine/animator"
	"github.com/Carmen-Shannon/oxy-blend/engine/profiler"
	"go.uber.org/zap"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled.Store(enabled)
	}
}

// WithProfiler replaces the default profiler, e.g. to change its interval.
//
// Parameters:
//   - p: the profiler to tick
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		if p != nil {
			e.profiler = p
		}
	}
}

// WithTickRate sets the engine tick rate in ticks per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.engineTickRate = tickInterval(fps)
	}
}

// WithAnimator registers an animator at the given key during engine construction.
// Animators are advanced in ascending key order each tick.
//
// Parameters:
//   - key: the order key (lower runs first)
//   - a: the Animator to register
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithAnimator(key int, a animator.Animator) EngineBuilderOption {
	return func(e *engine) {
		e.AddAnimator(key, a)
	}
}

// WithTickCallback registers the function called each engine tick.
//
// Parameters:
//   - callback: function to call each tick, receiving the delta time in seconds
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickCallback(callback func(deltaTime float32)) EngineBuilderOption {
	return func(e *engine) {
		e.tickCallback = callback
	}
}

// WithLogger sets the logger for engine lifecycle events and profiler output.
//
// Parameters:
//   - logger: the logger instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) EngineBuilderOption {
	return func(e *engine) {
		e.logger = logger
	}
}
