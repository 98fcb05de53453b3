package engine

import (
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-blend/common"
	"github.com/Carmen-Shannon/oxy-blend/engine/animator"
	"github.com/Carmen-Shannon/oxy-blend/engine/profiler"
	"go.uber.org/zap"
)

// DefaultTickRate is the tick rate used when none or an invalid one is configured.
const DefaultTickRate = 60.0

// engine implements the Engine interface.
// Runs a fixed-rate tick loop that drives the registered animators.
type engine struct {
	mu sync.RWMutex

	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running atomic.Bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)

	animators map[int]animator.Animator
	keys      []int // animator keys in ascending order

	ticks  atomic.Uint64
	logger *zap.Logger
}

// Engine is the main entry point for the engine.
// It runs a headless fixed-rate loop that advances every registered animator each tick.
type Engine interface {
	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in ticks per second.
	// The animators and the tick callback are driven at this rate.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick, after the animators.
	// Use this for game logic such as changing blend weights.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// AddAnimator registers an animator at the given key.
	// Animators are advanced in ascending key order each tick.
	//
	// Parameters:
	//   - key: the order key (lower runs first)
	//   - a: the Animator to register
	AddAnimator(key int, a animator.Animator)

	// RemoveAnimator removes the animator at the given key. The animator is not released.
	//
	// Parameters:
	//   - key: the key of the animator to remove
	RemoveAnimator(key int)

	// Animator retrieves the animator registered at the given key.
	// Returns nil if no animator exists at that key.
	//
	// Parameters:
	//   - key: the key of the animator to retrieve
	//
	// Returns:
	//   - animator.Animator: the animator at the key, or nil if not found
	Animator(key int) animator.Animator

	// Animators returns a copy of all registered animators keyed by order.
	//
	// Returns:
	//   - map[int]animator.Animator: a copy of the animators map
	Animators() map[int]animator.Animator

	// Step runs one tick synchronously with the given delta, outside the loop.
	//
	// Parameters:
	//   - deltaTime: the tick delta in seconds
	Step(deltaTime float32)

	// Ticks returns the number of ticks run so far.
	//
	// Returns:
	//   - uint64: the tick count
	Ticks() uint64

	// Run starts the engine loop and blocks until Quit is called.
	// Returns an error if the engine is already running or has quit.
	//
	// Returns:
	//   - error: error if the engine cannot run
	Run() error

	// Quit signals the engine loop to stop.
	// Safe to call multiple times and from any goroutine; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// Initializes channels and the profiler with sensible defaults.
// Options are applied directly to the engine struct via the option-builder pattern.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		animators:       make(map[int]animator.Animator),
		wg:              sync.WaitGroup{},
		profiler:        profiler.NewProfiler(),
		engineTickRate:  tickInterval(DefaultTickRate),
	}

	for _, opt := range options {
		opt(e)
	}
	if e.logger != nil {
		e.profiler.SetLogger(e.logger)
	}
	return e
}

// tickInterval converts a tick rate to a ticker interval.
func tickInterval(fps float64) time.Duration {
	if fps <= 0 {
		fps = DefaultTickRate
	}
	return max(time.Duration(float64(time.Second)/fps), time.Microsecond)
}

func (e *engine) log() *zap.Logger {
	if e.logger != nil {
		return e.logger
	}
	return common.Logger()
}

func (e *engine) Run() error {
	select {
	case <-e.quitChannel:
		return errors.New("engine has quit")
	default:
	}
	if !e.running.CompareAndSwap(false, true) {
		return errors.New("engine is already running")
	}
	defer e.running.Store(false)

	e.log().Info("engine started", zap.Duration("tick", e.engineTickRate), zap.Int("animators", len(e.Animators())))
	e.handle()
	e.wg.Wait()
	e.log().Info("engine stopped", zap.Uint64("ticks", e.ticks.Load()))
	return nil
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// handle launches the engine and quit goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(2)
	go e.handleEngine()
	go e.handleQuit()
}

// handleEngine runs the fixed-rate engine tick loop in its own goroutine.
// Runs a tick at the configured tick rate and listens for dynamic rate changes
// via tickRateChannel. Exits when the quit channel is closed.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleEngine() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			e.log().Error("engine goroutine recovered from panic", zap.Any("panic", r))
			e.signalQuit()
		}
	}()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now
			e.tick(dt)
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleQuit blocks until the quit channel is closed, then decrements the WaitGroup.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}

// tick advances the animators in ascending key order, then runs the tick callback and the
// profiler.
func (e *engine) tick(dt float32) {
	e.mu.RLock()
	animators := make([]animator.Animator, 0, len(e.keys))
	for _, k := range e.keys {
		animators = append(animators, e.animators[k])
	}
	callback := e.tickCallback
	e.mu.RUnlock()

	instances := 0
	for _, a := range animators {
		a.PrepareFrame(dt)
		instances += a.InstanceCount()
	}

	if callback != nil {
		callback(dt)
	}

	n := e.ticks.Add(1)
	if e.profilingEnabled.Load() && e.profiler != nil {
		e.profiler.Tick(instances)
	}
	if ce := e.log().Check(zap.DebugLevel, "tick"); ce != nil {
		ce.Write(zap.Uint64("tick", n), zap.Float32("dt", dt), zap.Int("instances", instances))
	}
}

func (e *engine) Step(deltaTime float32) {
	e.tick(deltaTime)
}

func (e *engine) Ticks() uint64 {
	return e.ticks.Load()
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

// SetTickRate sets the engine tick rate in ticks per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	newRate := tickInterval(fps)

	if e.running.Load() {
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			select {
			case e.tickRateChannel <- newRate:
			default:
			}
		}
	} else {
		e.engineTickRate = newRate
	}
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickCallback = callback
}

func (e *engine) AddAnimator(key int, a animator.Animator) {
	if a == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.animators[key]; !ok {
		i, _ := slices.BinarySearch(e.keys, key)
		e.keys = slices.Insert(e.keys, i, key)
	}
	e.animators[key] = a
}

func (e *engine) RemoveAnimator(key int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.animators[key]; !ok {
		return
	}
	delete(e.animators, key)
	if i, found := slices.BinarySearch(e.keys, key); found {
		e.keys = slices.Delete(e.keys, i, i+1)
	}
}

func (e *engine) Animator(key int) animator.Animator {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.animators[key]
}

func (e *engine) Animators() map[int]animator.Animator {
	e.mu.RLock()
	defer e.mu.RUnlock()
	cp := make(map[int]animator.Animator, len(e.animators))
	for k, v := range e.animators {
		cp[k] = v
	}
	return cp
}
