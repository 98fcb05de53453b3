package engine

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-blend/engine/animation"
	"github.com/Carmen-Shannon/oxy-blend/engine/animation/traits"
	"github.com/Carmen-Shannon/oxy-blend/engine/animator"
	"github.com/Carmen-Shannon/oxy-blend/engine/profiler"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("github.com/Carmen-Shannon/automation/tools/worker.(*worker).Start.func1"),
	)
}

// recordingAnimator records the order in which frames are prepared.
type recordingAnimator struct {
	name string
	log  *[]string
	mu   *sync.Mutex
}

func (r *recordingAnimator) Play(animation.Playable, animation.AnimatableObject) (uuid.UUID, error) {
	return uuid.Nil, nil
}

func (r *recordingAnimator) Stop(uuid.UUID) bool {
	return false
}

func (r *recordingAnimator) Instance(uuid.UUID) animation.Instance {
	return nil
}

func (r *recordingAnimator) InstanceCount() int {
	return 1
}

func (r *recordingAnimator) PrepareFrame(deltaTime float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.log = append(*r.log, fmt.Sprintf("%s:%v", r.name, deltaTime))
}

func (r *recordingAnimator) Release() {}

func TestEngine_StepOrder(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []string
	)
	rec := func(name string) animator.Animator {
		return &recordingAnimator{name: name, log: &calls, mu: &mu}
	}

	e := NewEngine(WithAnimator(5, rec("c")), WithAnimator(-1, rec("a")))
	e.AddAnimator(3, rec("b"))
	e.AddAnimator(7, nil)
	e.SetTickCallback(func(dt float32) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, fmt.Sprintf("callback:%v", dt))
	})

	e.Step(0.5)
	assert.Equal(t, []string{"a:0.5", "b:0.5", "c:0.5", "callback:0.5"}, calls)
	assert.EqualValues(t, 1, e.Ticks())
	assert.Len(t, e.Animators(), 3)
	assert.Nil(t, e.Animator(7))

	e.RemoveAnimator(3)
	e.RemoveAnimator(42)
	e.AddAnimator(5, rec("d"))
	calls = nil
	e.Step(1)
	assert.Equal(t, []string{"a:1", "d:1", "callback:1"}, calls)
}

func TestEngine_RunAndQuit(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	var (
		e       Engine
		ticks   int
		nested  error
		rateSet bool
	)
	e = NewEngine(
		WithTickRate(500),
		WithLogger(zap.New(core)),
		WithTickCallback(func(float32) {
			ticks++
			if ticks == 1 {
				nested = e.Run()
				e.SetTickRate(1000)
				e.SetTickRate(2000)
				rateSet = true
			}
			if ticks == 5 {
				e.Quit()
			}
		}),
	)

	require.NoError(t, e.Run())
	assert.GreaterOrEqual(t, ticks, 5)
	assert.EqualError(t, nested, "engine is already running")
	assert.True(t, rateSet)

	e.Quit()
	assert.EqualError(t, e.Run(), "engine has quit")
	assert.Equal(t, 1, logs.FilterMessage("engine started").Len())
	assert.Equal(t, 1, logs.FilterMessage("engine stopped").Len())
}

func TestEngine_PanicQuits(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	e := NewEngine(
		WithTickRate(1000),
		WithLogger(zap.New(core)),
		WithTickCallback(func(float32) { panic("boom") }),
	)

	done := make(chan error, 1)
	go func() { done <- e.Run() }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		e.Quit()
		t.Fatal("engine did not quit after a panic")
	}
	assert.Equal(t, 1, logs.FilterMessage("engine goroutine recovered from panic").Len())
}

func TestEngine_Profiler(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	p := profiler.NewProfiler()
	p.SetInterval(time.Nanosecond)

	e := NewEngine(WithProfiler(p), WithLogger(zap.New(core)))
	e.Step(0.01)
	assert.Zero(t, logs.FilterMessage("profiler").Len())

	e.EnableProfiler()
	time.Sleep(time.Millisecond)
	e.Step(0.01)
	assert.Equal(t, 1, logs.FilterMessage("profiler").Len())

	e.DisableProfiler()
	time.Sleep(time.Millisecond)
	e.Step(0.01)
	assert.Equal(t, 1, logs.FilterMessage("profiler").Len())
}

func TestEngine_DrivesBlendGroup(t *testing.T) {
	walk, err := animation.NewKeyFrameAnimation[float32]("x", traits.Float32{}, traits.LerpFloat32,
		animation.KeyFrame[float32]{Time: 0, Value: 0},
		animation.KeyFrame[float32]{Time: time.Second, Value: 1},
	)
	require.NoError(t, err)
	g, err := animation.NewBlendGroup(animation.WithTimelines(walk))
	require.NoError(t, err)

	target := animation.NewPropertyMap()
	x := animation.NewProperty[float32](0)
	target.Register("x", x)

	a := animator.NewAnimator(animator.WithWorkers(1))
	defer a.Release()
	_, err = a.Play(g, target)
	require.NoError(t, err)

	e := NewEngine(WithAnimator(0, a))
	for range 4 {
		e.Step(0.125)
	}
	assert.InDelta(t, 0.5, float64(x.Value()), 1e-6)
}
