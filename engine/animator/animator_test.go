package animator

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-blend/engine/animation"
	"github.com/Carmen-Shannon/oxy-blend/engine/animation/traits"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/sync/errgroup"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("github.com/Carmen-Shannon/automation/tools/worker.(*worker).Start.func1"),
	)
}

func keyFrames(t *testing.T, property string, from, to float32, d time.Duration) *animation.KeyFrameAnimation[float32] {
	t.Helper()
	a, err := animation.NewKeyFrameAnimation[float32](property, traits.Float32{}, traits.LerpFloat32,
		animation.KeyFrame[float32]{Time: 0, Value: from},
		animation.KeyFrame[float32]{Time: d, Value: to},
	)
	require.NoError(t, err)
	return a
}

func scalar(t *testing.T, obj animation.AnimatableObject, name string) float32 {
	t.Helper()
	p, ok := animation.PropertyOf[float32](obj, name)
	require.True(t, ok, name)
	if p.IsAnimated() {
		return p.AnimationValue()
	}
	return p.BaseValue()
}

func TestAnimator_PlayAndAdvance(t *testing.T) {
	a := NewAnimator(WithWorkers(2), WithQueueSize(8))
	defer a.Release()

	target := animation.NewPropertyMap()
	target.Register("x", animation.NewProperty[float32](-1))

	id, err := a.Play(keyFrames(t, "x", 0, 1, time.Second), target)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
	assert.Equal(t, 1, a.InstanceCount())

	inst := a.Instance(id)
	require.NotNil(t, inst)
	at, ok := inst.Time()
	require.True(t, ok)
	assert.Zero(t, at)

	a.PrepareFrame(0.25)
	a.PrepareFrame(0.25)
	at, _ = inst.Time()
	assert.Equal(t, 500*time.Millisecond, at)
	assert.InDelta(t, 0.5, float64(scalar(t, target, "x")), 1e-6)

	assert.True(t, a.Stop(id))
	assert.False(t, a.Stop(id))
	assert.Nil(t, a.Instance(id))
	assert.Zero(t, a.InstanceCount())
	assert.Equal(t, float32(-1), scalar(t, target, "x"), "stopped playbacks release their properties")

	// Frames without playbacks are no-ops.
	a.PrepareFrame(1)
}

func TestAnimator_AnimatedBlendWeight(t *testing.T) {
	a := NewAnimator()
	defer a.Release()

	g, err := animation.NewBlendGroup(
		animation.WithWeightedTimeline(keyFrames(t, "x", 1, 1, time.Second), 1),
		animation.WithWeightedTimeline(keyFrames(t, "x", 3, 3, 500*time.Millisecond), 0),
		animation.WithDurationSynchronization(),
	)
	require.NoError(t, err)

	target := animation.NewPropertyMap()
	target.Register("x", animation.NewProperty[float32](0))
	_, err = a.Play(g, target)
	require.NoError(t, err)

	a.PrepareFrame(0.1)
	assert.InDelta(t, 1, float64(scalar(t, target, "x")), 1e-6)

	// A second playback drives the weight of the run entry through the group's
	// "Weight1" property.
	weightID, err := a.Play(keyFrames(t, animation.WeightPropertyPrefix+"1", 1, 1, time.Second), g)
	require.NoError(t, err)
	assert.Equal(t, 2, a.InstanceCount())

	// Playbacks run in parallel, so the weight written in one frame is seen by the next.
	a.PrepareFrame(0.1)
	a.PrepareFrame(0.1)
	w, err := g.GetWeight(1)
	require.NoError(t, err)
	assert.Equal(t, float32(1), w)
	assert.InDelta(t, 2, float64(scalar(t, target, "x")), 1e-6)
	d, ok := g.SynchronizedDuration()
	require.True(t, ok)
	assert.Equal(t, 750*time.Millisecond, d)

	require.True(t, a.Stop(weightID))
	w, _ = g.GetWeight(1)
	assert.Zero(t, w, "the base weight returns once the weight playback stops")
	a.PrepareFrame(0.1)
	assert.InDelta(t, 1, float64(scalar(t, target, "x")), 1e-6)
}

func TestAnimator_ManyPlaybacks(t *testing.T) {
	a := NewAnimator(WithWorkers(4))
	defer a.Release()

	ramp := keyFrames(t, "x", 0, 10, time.Second)
	targets := make([]*animation.PropertyMap, 64)
	for i := range targets {
		targets[i] = animation.NewPropertyMap()
		targets[i].Register("x", animation.NewProperty[float32](0))
		_, err := a.Play(ramp, targets[i])
		require.NoError(t, err)
	}
	for range 3 {
		a.PrepareFrame(0.1)
	}
	for i, target := range targets {
		assert.InDelta(t, 3, float64(scalar(t, target, "x")), 1e-5, fmt.Sprintf("target %d", i))
	}
}

// failingInstance is an Instance whose Apply always fails.
type failingInstance struct {
	id      uuid.UUID
	applies atomic.Int32
	stopped atomic.Bool
}

func (f *failingInstance) ID() uuid.UUID {
	return f.id
}

func (f *failingInstance) Time() (time.Duration, bool) {
	return 0, true
}

func (f *failingInstance) SetTime(time.Duration) {}

func (f *failingInstance) AdvanceTime(time.Duration) {}

func (f *failingInstance) ResetTime() {}

func (f *failingInstance) State() animation.AnimationState {
	return animation.AnimationStatePlaying
}

func (f *failingInstance) Bind(animation.AnimatableObject) int {
	return 0
}

func (f *failingInstance) Stop() {
	f.stopped.Store(true)
}

func (f *failingInstance) CreateInstance() (animation.Instance, error) {
	return f, nil
}

func (f *failingInstance) Apply() error {
	f.applies.Add(1)
	return errors.New("target is gone")
}

type failingPlayable struct{}

func (failingPlayable) CreateInstance() (animation.Instance, error) {
	return nil, errors.New("no timeline")
}

func TestAnimator_Errors(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	a := NewAnimator(WithLogger(zap.New(core)))

	target := animation.NewPropertyMap()
	target.Register("x", animation.NewProperty[float32](0))

	_, err := a.Play(nil, target)
	assert.ErrorIs(t, err, animation.ErrInvalidArgument)
	_, err = a.Play(failingPlayable{}, target)
	assert.ErrorContains(t, err, "no timeline")

	bad := &failingInstance{id: uuid.New()}
	_, err = a.Play(bad, target)
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("playback bound no properties").Len())

	good, err := a.Play(keyFrames(t, "x", 0, 1, time.Second), target)
	require.NoError(t, err)

	a.PrepareFrame(0.5)
	assert.EqualValues(t, 1, bad.applies.Load())
	assert.InDelta(t, 0.5, float64(scalar(t, target, "x")), 1e-6, "a failing playback does not stop the frame")
	failed := logs.FilterMessage("playback apply failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, bad.id.String(), failed[0].ContextMap()["id"])

	a.Release()
	a.Release()
	assert.True(t, bad.stopped.Load())
	assert.Nil(t, a.Instance(good))
	assert.Zero(t, a.InstanceCount())
	assert.Equal(t, float32(0), scalar(t, target, "x"))

	_, err = a.Play(keyFrames(t, "x", 0, 1, time.Second), target)
	assert.ErrorIs(t, err, animation.ErrInvalidOperation)
	a.PrepareFrame(0.5)
}

func TestAnimator_ConcurrentFrames(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	a := NewAnimator(WithWorkers(2), WithLogger(zap.New(core)))
	defer a.Release()

	bad := &failingInstance{id: uuid.New()}
	_, err := a.Play(bad, animation.NewPropertyMap())
	require.NoError(t, err)

	const frames = 8
	var g errgroup.Group
	for range frames {
		g.Go(func() error {
			a.PrepareFrame(0.01)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.EqualValues(t, frames, bad.applies.Load())
	failed := logs.FilterMessage("playback apply failed").All()
	require.Len(t, failed, frames)
	seen := make(map[uint64]bool, frames)
	for _, entry := range failed {
		seen[entry.ContextMap()["frame"].(uint64)] = true
	}
	for f := uint64(1); f <= frames; f++ {
		assert.True(t, seen[f], "frame %d", f)
	}
}
