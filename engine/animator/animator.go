package animator

import (
	"fmt"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-blend/common"
	"github.com/Carmen-Shannon/oxy-blend/engine/animation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultQueueSize is the task queue length of the worker pool. It accommodates typical
	// playback counts with headroom.
	DefaultQueueSize = 256

	workerIdleTimeout = time.Second
)

// playback is one running instance and the object it animates.
type playback struct {
	instance animation.Instance
	target   animation.AnimatableObject
	bound    int
}

// animator is the implementation of the Animator interface.
type animator struct {
	mu sync.RWMutex

	playbacks map[uuid.UUID]*playback
	order     []uuid.UUID

	pool      worker.DynamicWorkerPool
	workers   int
	queueSize int
	logger    *zap.Logger

	frame    atomic.Uint64
	released bool
}

// Animator defines the public interface for the playback system.
//
// The Animator owns a set of playback instances, each bound to a target object. Every frame
// PrepareFrame advances all instances by the elapsed time and applies them in parallel on a
// persistent worker pool, and returns only once every instance has been applied.
type Animator interface {
	// Play creates a playback instance of playable, binds it to target, and starts it at
	// time zero. The first PrepareFrame moves it to its first delta.
	//
	// Parameters:
	//   - playable: the timeline to play (a blend group, a key-frame animation, a clip)
	//   - target: the object whose properties are animated
	//
	// Returns:
	//   - uuid.UUID: the playback id
	//   - error: when the instance cannot be created or the animator was released
	Play(playable animation.Playable, target animation.AnimatableObject) (uuid.UUID, error)

	// Stop ends a playback and releases its properties.
	//
	// Parameters:
	//   - id: the playback id returned by Play
	//
	// Returns:
	//   - bool: true if the playback existed
	Stop(id uuid.UUID) bool

	// Instance returns the instance of a playback, or nil. The instance is driven by the
	// animator; only read it between frames.
	//
	// Parameters:
	//   - id: the playback id
	//
	// Returns:
	//   - animation.Instance: the instance or nil
	Instance(id uuid.UUID) animation.Instance

	// InstanceCount returns the number of running playbacks.
	//
	// Returns:
	//   - int: the number of playbacks
	InstanceCount() int

	// PrepareFrame advances every playback by deltaTime and applies it to its target.
	// Apply errors are logged and do not stop the frame.
	//
	// Parameters:
	//   - deltaTime: elapsed time since the last frame in seconds
	PrepareFrame(deltaTime float32)

	// Release stops every playback and the worker pool. The animator must not be used
	// afterwards.
	Release()
}

var _ Animator = &animator{}

// NewAnimator creates a new Animator configured using the provided options.
// The worker pool is created after options are applied so WithWorkers and WithQueueSize can
// override the defaults of one worker per spare CPU and DefaultQueueSize.
//
// Parameters:
//   - options: variadic list of AnimatorBuilderOption functions to configure the Animator
//
// Returns:
//   - Animator: a new instance of Animator
func NewAnimator(options ...AnimatorBuilderOption) Animator {
	a := &animator{
		playbacks: make(map[uuid.UUID]*playback),
		workers:   max(runtime.NumCPU()-1, 1),
		queueSize: DefaultQueueSize,
	}
	for _, opt := range options {
		opt(a)
	}
	a.pool = worker.NewDynamicWorkerPool(a.workers, a.queueSize, workerIdleTimeout)
	return a
}

func (a *animator) log() *zap.Logger {
	if a.logger != nil {
		return a.logger
	}
	return common.Logger()
}

func (a *animator) Play(playable animation.Playable, target animation.AnimatableObject) (uuid.UUID, error) {
	if playable == nil || target == nil {
		return uuid.Nil, fmt.Errorf("animator play: nil playable or target: %w", animation.ErrInvalidArgument)
	}
	inst, err := playable.CreateInstance()
	if err != nil {
		return uuid.Nil, fmt.Errorf("animator play: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.released {
		inst.Stop()
		return uuid.Nil, fmt.Errorf("animator play: animator released: %w", animation.ErrInvalidOperation)
	}

	p := &playback{instance: inst, target: target}
	p.bound = inst.Bind(target)
	if p.bound == 0 {
		a.log().Warn("playback bound no properties", zap.Stringer("id", inst.ID()))
	}
	inst.SetTime(0)

	id := inst.ID()
	a.playbacks[id] = p
	a.order = append(a.order, id)
	a.log().Debug("playback started",
		zap.Stringer("id", id),
		zap.Int("properties", p.bound),
		zap.Int("instances", len(a.order)),
	)
	return id, nil
}

func (a *animator) Stop(id uuid.UUID) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, ok := a.playbacks[id]
	if !ok {
		return false
	}
	delete(a.playbacks, id)
	a.order = slices.DeleteFunc(a.order, func(other uuid.UUID) bool { return other == id })
	p.instance.Stop()
	a.log().Debug("playback stopped", zap.Stringer("id", id), zap.Int("instances", len(a.order)))
	return true
}

func (a *animator) Instance(id uuid.UUID) animation.Instance {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if p, ok := a.playbacks[id]; ok {
		return p.instance
	}
	return nil
}

func (a *animator) InstanceCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.order)
}

func (a *animator) PrepareFrame(deltaTime float32) {
	// The read lock is held for the whole frame so Stop cannot recycle an instance while a
	// worker applies it.
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.released || len(a.order) == 0 {
		return
	}

	delta := common.ScaleDuration(time.Second, float64(max(deltaTime, 0)))
	frame := a.frame.Add(1)

	// pool.Wait blocks until workers idle-exit, so a WaitGroup is the per-frame barrier.
	var wg sync.WaitGroup
	for i, id := range a.order {
		p := a.playbacks[id]
		wg.Add(1)
		a.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				p.instance.AdvanceTime(delta)
				if err := p.instance.Apply(); err != nil {
					a.log().Warn("playback apply failed",
						zap.Stringer("id", id),
						zap.Uint64("frame", frame),
						zap.Error(err),
					)
					return nil, err
				}
				return nil, nil
			},
		})
	}
	wg.Wait()
}

func (a *animator) Release() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.released {
		return
	}
	a.released = true
	for _, id := range a.order {
		a.playbacks[id].instance.Stop()
	}
	clear(a.playbacks)
	a.order = nil
	a.pool.Stop()
}
