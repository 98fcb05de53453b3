package loader

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-blend/engine/animation"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/sync/errgroup"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const locomotionPath = "testdata/locomotion.yaml"

func TestLoader_Load(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := NewLoader(BackendTypeYAML, WithLogger(zap.New(core)))

	set, err := l.Load(locomotionPath)
	require.NoError(t, err)
	assert.Equal(t, "locomotion", set.Name)
	assert.Equal(t, []string{"walk", "run"}, set.Clips())
	assert.Equal(t, 1, set.ClipIndex("run"))
	assert.Equal(t, -1, set.ClipIndex("crawl"))
	assert.Nil(t, set.Clip("crawl"))
	require.NotNil(t, set.Skeleton)
	assert.Equal(t, 2, set.Skeleton.BoneCount())

	g := set.Group
	assert.True(t, g.IsSynchronized())
	assert.Equal(t, animation.LoopBehaviorCycle, g.LoopBehavior())
	d, ok := g.SynchronizedDuration()
	require.True(t, ok)
	assert.Equal(t, 750*time.Millisecond, d)
	assert.Equal(t, animation.MaxDuration, g.GetTotalDuration(), "looping groups without a duration play forever")
	assert.Equal(t, []string{"Pose", "Stride"}, g.TargetProperties())

	entries := logs.FilterMessage("blend set loaded").All()
	require.Len(t, entries, 1)
	assert.Equal(t, locomotionPath, entries[0].ContextMap()["key"])

	again, err := l.Load(locomotionPath)
	require.NoError(t, err)
	assert.Same(t, set, again)
	assert.Equal(t, 1, logs.FilterMessage("blend set loaded").Len(), "cached loads are not logged")
}

func TestLoader_Play(t *testing.T) {
	l := NewLoader(BackendTypeYAML)
	set, err := l.Load(locomotionPath)
	require.NoError(t, err)

	target := set.NewTarget()
	stride, ok := target.Scalar("Stride")
	require.True(t, ok)
	assert.Equal(t, float32(0.5), stride)

	inst, err := set.Group.NewInstance()
	require.NoError(t, err)
	require.Equal(t, 2, inst.Bind(target))

	inst.SetTime(375 * time.Millisecond)
	require.NoError(t, inst.Apply())

	foot, ok := target.Pose.BoneTransform("foot")
	require.True(t, ok)
	if diff := cmp.Diff([3]float32{0.5, 0.5, 0}, foot.Translation, cmpopts.EquateApprox(0, 1e-5)); diff != "" {
		t.Errorf("foot translation mismatch (-want +got):\n%s", diff)
	}
	stride, _ = target.Scalar("Stride")
	assert.InDelta(t, 2.75, float64(stride), 1e-5)

	// The cycle wraps: 375ms past one full synchronized cycle samples the same frame.
	inst.SetTime(1125 * time.Millisecond)
	require.NoError(t, inst.Apply())
	foot, _ = target.Pose.BoneTransform("foot")
	if diff := cmp.Diff([3]float32{0.5, 0.5, 0}, foot.Translation, cmpopts.EquateApprox(0, 1e-5)); diff != "" {
		t.Errorf("wrapped foot translation mismatch (-want +got):\n%s", diff)
	}

	inst.Stop()
	stride, _ = target.Scalar("Stride")
	assert.Equal(t, float32(0.5), stride)
	assert.False(t, target.Pose.IsAnimated())
}

func TestBlendSet_SetWeight(t *testing.T) {
	set, err := NewLoader(BackendTypeYAML).Load(locomotionPath)
	require.NoError(t, err)

	require.NoError(t, set.SetWeight("run", 0))
	assert.ErrorIs(t, set.SetWeight("crawl", 1), animation.ErrInvalidArgument)
	assert.ErrorIs(t, set.SetWeight("walk", -1), animation.ErrInvalidArgument)

	d, ok := set.Group.SynchronizedDuration()
	require.True(t, ok)
	assert.Equal(t, time.Second, d)

	target := set.NewTarget()
	inst, err := set.Group.NewInstance()
	require.NoError(t, err)
	defer inst.Stop()
	inst.Bind(target)
	inst.SetTime(250 * time.Millisecond)
	require.NoError(t, inst.Apply())

	foot, _ := target.Pose.BoneTransform("foot")
	if diff := cmp.Diff([3]float32{0.5, 0, 0}, foot.Translation, cmpopts.EquateApprox(0, 1e-5)); diff != "" {
		t.Errorf("walk-only foot translation mismatch (-want +got):\n%s", diff)
	}
	stride, _ := target.Scalar("Stride")
	assert.InDelta(t, 1.5, float64(stride), 1e-6)
}

func TestLoader_LoadReader(t *testing.T) {
	doc := `
clips:
  - name: fade
    tracks:
      - property: Tint
        type: vector3
        keys:
          - { time: 0, value: [0, 0, 0] }
          - { time: 2, value: [1, 0.5, 0] }
group:
  fill: stop
`
	l := NewLoader(BackendTypeYAML)
	set, err := l.LoadReader("tint", strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "tint", set.Name, "name defaults to the cache key")
	assert.Nil(t, set.Skeleton)
	assert.Equal(t, 2*time.Second, set.Group.GetTotalDuration())
	assert.Equal(t, animation.FillBehaviorStop, set.Group.FillBehavior())

	target := set.NewTarget()
	inst, err := set.Group.CreateInstance()
	require.NoError(t, err)
	require.Equal(t, 1, inst.Bind(target))
	inst.SetTime(time.Second)
	require.NoError(t, inst.Apply())
	tint, ok := target.Vector3("Tint")
	require.True(t, ok)
	if diff := cmp.Diff([3]float32{0.5, 0.25, 0}, tint, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("tint mismatch (-want +got):\n%s", diff)
	}

	// Past the end with fill stop, the property falls back to its base value.
	inst.SetTime(3 * time.Second)
	require.NoError(t, inst.Apply())
	tint, _ = target.Vector3("Tint")
	assert.Equal(t, [3]float32{}, tint)
	inst.Stop()

	assert.Same(t, set, l.Get("tint"))
	assert.Len(t, l.BlendSets(), 1)
	assert.True(t, l.Evict("tint"))
	assert.False(t, l.Evict("tint"))
	assert.Nil(t, l.Get("tint"))
}

func TestLoader_InvalidDocuments(t *testing.T) {
	cases := map[string]string{
		"empty":          ``,
		"unknown field":  "clips: []\nspeed: 2\n",
		"no clips":       "name: x\n",
		"unknown loop":   "clips: [{name: a, tracks: [{property: P, keys: [{time: 0, value: [1]}]}]}]\ngroup: {loop: bounce}\n",
		"unknown fill":   "clips: [{name: a, tracks: [{property: P, keys: [{time: 0, value: [1]}]}]}]\ngroup: {fill: forever}\n",
		"duplicate clip": "clips: [{name: a, tracks: [{property: P, keys: [{time: 0, value: [1]}]}]}, {name: a, tracks: [{property: P, keys: [{time: 0, value: [1]}]}]}]\n",
		"unnamed clip":   "clips: [{tracks: [{property: P, keys: [{time: 0, value: [1]}]}]}]\n",
		"empty clip":     "clips: [{name: a}]\n",
		"no skeleton":    "clips: [{name: a, channels: [{bone: hips, position: [{time: 0, value: [0, 0, 0]}]}]}]\n",
		"unknown bone":   "skeleton: {bones: [{name: hips}]}\nclips: [{name: a, channels: [{bone: foot, position: [{time: 0, value: [0, 0, 0]}]}]}]\n",
		"bad parent":     "skeleton: {bones: [{name: foot, parent: hips}, {name: hips}]}\nclips: [{name: a, tracks: [{property: P, keys: [{time: 0, value: [1]}]}]}]\n",
		"bad key":        "clips: [{name: a, tracks: [{property: P, type: vector3, keys: [{time: 0, value: [1]}]}]}]\n",
		"track conflict": "clips: [{name: a, tracks: [{property: P, keys: [{time: 0, value: [1]}]}, {property: P, type: vector3, keys: [{time: 0, value: [1, 1, 1]}]}]}]\n",
		"pose track":     "clips: [{name: a, tracks: [{property: Pose, keys: [{time: 0, value: [1]}]}]}]\n",
		"stray property": "properties: {Q: [1]}\nclips: [{name: a, tracks: [{property: P, keys: [{time: 0, value: [1]}]}]}]\n",
		"negative speed": "clips: [{name: a, tracks: [{property: P, keys: [{time: 0, value: [1]}]}]}]\ngroup: {speed: -1}\n",
		"bad weight":     "clips: [{name: a, weight: -2, tracks: [{property: P, keys: [{time: 0, value: [1]}]}]}]\n",
		"cycle offset":   "clips: [{name: a, tracks: [{property: P, keys: [{time: 0, value: [1]}]}]}]\ngroup: {loop: cycle-offset}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			l := NewLoader(BackendTypeYAML)
			_, err := l.LoadReader(name, strings.NewReader(doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidDocument)
			assert.Nil(t, l.Get(name), "failed loads are not cached")
		})
	}
}

func TestLoader_Errors(t *testing.T) {
	l := NewLoader(BackendTypeYAML)

	_, err := l.Load("testdata/locomotion.json")
	assert.ErrorContains(t, err, "unsupported blend set format")

	_, err = l.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = l.LoadDocument("nil", nil)
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestLoader_Options(t *testing.T) {
	pool := animation.NewInstancePool()
	seed, err := NewLoader(BackendTypeYAML).Load(locomotionPath)
	require.NoError(t, err)

	l := NewLoader(BackendTypeYAML, WithBlendSet("seed", seed), WithInstancePool(pool))
	assert.Same(t, seed, l.Get("seed"))

	doc := &BlendSetDocument{
		Name: "pooled",
		Clips: []ClipDocument{{
			Name:   "a",
			Tracks: []TrackDocument{{Property: "P", Keys: []KeyDocument{{Time: 0, Value: []float32{1}}, {Time: 1, Value: []float32{2}}}}},
		}},
	}
	set, err := l.LoadDocument("pooled", doc)
	require.NoError(t, err)
	assert.Equal(t, time.Second, set.Group.GetTotalDuration())

	inst, err := set.Group.NewInstance()
	require.NoError(t, err)
	assert.Same(t, set.Group, inst.Group())
	assert.Equal(t, 1, set.Group.ActiveInstances())
	inst.Stop()
	assert.Equal(t, 0, set.Group.ActiveInstances())
}

func TestLoader_ConcurrentLoad(t *testing.T) {
	l := NewLoader(BackendTypeYAML)
	sets := make([]*BlendSet, 8)

	var eg errgroup.Group
	for i := range sets {
		eg.Go(func() error {
			set, err := l.Load(locomotionPath)
			sets[i] = set
			return err
		})
	}
	require.NoError(t, eg.Wait())
	for _, s := range sets {
		assert.Same(t, sets[0], s)
	}
}

func TestParseBehaviors(t *testing.T) {
	loops := map[string]animation.LoopBehavior{
		"":             animation.LoopBehaviorConstant,
		"Cycle":        animation.LoopBehaviorCycle,
		"cycle-offset": animation.LoopBehaviorCycleOffset,
		"oscillate":    animation.LoopBehaviorOscillate,
	}
	for s, want := range loops {
		got, err := ParseLoopBehavior(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got, s)
	}
	fill, err := ParseFillBehavior("STOP")
	require.NoError(t, err)
	assert.Equal(t, animation.FillBehaviorStop, fill)
	_, err = ParseFillBehavior("never")
	assert.ErrorIs(t, err, ErrInvalidDocument)
}
