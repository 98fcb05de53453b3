package model

import (
	"math"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-blend/common"
	"github.com/Carmen-Shannon/oxy-blend/engine/animation"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSkeleton(t *testing.T) *Skeleton {
	t.Helper()
	hips := IdentityTransform()
	hips.Translation = [3]float32{0, 1, 0}
	s, err := NewSkeleton([]Bone{
		{Name: "hips", ParentIndex: -1, LocalTransform: hips},
		{Name: "foot", ParentIndex: 0, LocalTransform: IdentityTransform()},
	})
	require.NoError(t, err)
	return s
}

func slideClip(name string, seconds float32, to [3]float32) *AnimationClip {
	return &AnimationClip{
		Name:     name,
		Duration: seconds,
		Channels: []AnimationChannel{{
			BoneIndex: 1,
			PositionKeys: []VectorKeyframe{
				{Time: 0, Value: [3]float32{}},
				{Time: seconds, Value: to},
			},
		}},
	}
}

func TestNewSkeleton(t *testing.T) {
	s := testSkeleton(t)
	assert.Equal(t, 2, s.BoneCount())
	assert.Equal(t, []int32{0}, s.RootBoneIndices)
	i, ok := s.BoneIndex("foot")
	require.True(t, ok)
	assert.Equal(t, int32(1), i)
	_, ok = s.BoneIndex("hand")
	assert.False(t, ok)

	rest := s.RestPose()
	assert.Equal(t, [3]float32{0, 1, 0}, rest.Transforms[0].Translation)

	tests := []struct {
		name  string
		bones []Bone
	}{
		{"empty", nil},
		{"unnamed", []Bone{{ParentIndex: -1}}},
		{"duplicate", []Bone{{Name: "a", ParentIndex: -1}, {Name: "a", ParentIndex: 0}}},
		{"forward parent", []Bone{{Name: "a", ParentIndex: 1}, {Name: "b", ParentIndex: -1}}},
		{"self parent", []Bone{{Name: "a", ParentIndex: 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSkeleton(tt.bones)
			assert.ErrorIs(t, err, ErrInvalidSkeleton)
		})
	}
}

func TestSampleKeys(t *testing.T) {
	vec := []VectorKeyframe{
		{Time: 0, Value: [3]float32{0, 0, 0}},
		{Time: 1, Value: [3]float32{2, 4, 6}},
		{Time: 2, Value: [3]float32{2, 4, 6}},
	}
	assert.Equal(t, [3]float32{1, 2, 3}, SampleVector(vec, 0.5))
	assert.Equal(t, [3]float32{0, 0, 0}, SampleVector(vec, -1))
	assert.Equal(t, [3]float32{2, 4, 6}, SampleVector(vec, 5))

	q90 := common.QuatFromAxisAngle([3]float32{0, 0, 1}, math.Pi/2)
	rot := []QuaternionKeyframe{
		{Time: 0, Value: common.IdentityQuaternion},
		{Time: 1, Value: q90},
	}
	got := SampleQuaternion(rot, 0.5)
	want := common.QuatFromAxisAngle([3]float32{0, 0, 1}, math.Pi/4)
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-5)); diff != "" {
		t.Errorf("slerp mismatch (-want +got):\n%s", diff)
	}
}

func TestPoseTraits(t *testing.T) {
	pt := NewPoseTraits(2)
	pt.Pool().SetEnabled(false)

	var a, b *Pose
	pt.Create(nil, &a)
	pt.Create(nil, &b)
	require.Len(t, a.Transforms, 2)

	a.Transforms[1].Translation = [3]float32{2, 0, 0}
	b.Transforms[1].Translation = [3]float32{0, 2, 0}
	b.Transforms[1].Rotation = common.QuatFromAxisAngle([3]float32{0, 1, 0}, math.Pi/2)

	var acc *Pose
	pt.Create(nil, &acc)
	pt.BeginBlend(&acc)
	pt.BlendNext(&acc, &a, 0.5)
	pt.BlendNext(&acc, &b, 0.5)
	pt.EndBlend(&acc)

	assert.Equal(t, [3]float32{1, 1, 0}, acc.Transforms[1].Translation)
	assert.Equal(t, [3]float32{1, 1, 1}, acc.Transforms[1].Scale)
	want := common.QuatFromAxisAngle([3]float32{0, 1, 0}, math.Pi/4)
	assert.InDelta(t, 1, math.Abs(float64(common.QuatDot(want, acc.Transforms[1].Rotation))), 1e-5)

	var c *Pose
	pt.Copy(&a, &c)
	assert.Equal(t, a.Transforms, c.Transforms)
	assert.NotSame(t, a, c)

	pt.Recycle(&a)
	assert.Nil(t, a)
}

func TestTransformTraits(t *testing.T) {
	tt := TransformTraits{}
	a := IdentityTransform()
	b := IdentityTransform()
	b.Translation = [3]float32{4, 0, 0}

	var mid Transform
	LerpTransform(&a, &b, 0.25, &mid)
	assert.Equal(t, [3]float32{1, 0, 0}, mid.Translation)

	var acc Transform
	tt.BeginBlend(&acc)
	tt.BlendNext(&acc, &a, 0.75)
	tt.BlendNext(&acc, &b, 0.25)
	tt.EndBlend(&acc)
	assert.Equal(t, mid.Translation, acc.Translation)
	assert.Equal(t, common.IdentityQuaternion, acc.Rotation)
}

func TestClipAnimation_Errors(t *testing.T) {
	_, err := NewClipAnimation(nil, NewPoseTraits(2))
	assert.ErrorIs(t, err, animation.ErrInvalidArgument)

	clip := slideClip("bad", 1, [3]float32{1, 0, 0})
	clip.Channels[0].BoneIndex = 5
	_, err = NewClipAnimation(clip, NewPoseTraits(2))
	assert.ErrorIs(t, err, animation.ErrInvalidArgument)
}

func TestClipAnimation_Instance(t *testing.T) {
	s := testSkeleton(t)
	clip, err := NewClipAnimation(slideClip("walk", 1, [3]float32{2, 0, 0}), NewPoseTraits(s.BoneCount()))
	require.NoError(t, err)
	assert.Equal(t, time.Second, clip.GetTotalDuration())

	sp := NewSkeletonPose(s)
	inst, err := clip.CreateInstance()
	require.NoError(t, err)
	require.Equal(t, 1, inst.Bind(sp))

	inst.SetTime(250 * time.Millisecond)
	require.NoError(t, inst.Apply())
	assert.True(t, sp.IsAnimated())
	foot, ok := sp.BoneTransform("foot")
	require.True(t, ok)
	assert.InDelta(t, 0.5, foot.Translation[0], 1e-6)
	hips, ok := sp.BoneTransform("hips")
	require.True(t, ok)
	assert.Equal(t, [3]float32{0, 1, 0}, hips.Translation, "bones without channels keep the rest pose")

	inst.Stop()
	assert.False(t, sp.IsAnimated())
	foot, _ = sp.BoneTransform("foot")
	assert.Equal(t, [3]float32{}, foot.Translation)
	_, ok = sp.BoneTransform("hand")
	assert.False(t, ok)
}

func TestClipAnimation_BlendGroup(t *testing.T) {
	s := testSkeleton(t)
	pt := NewPoseTraits(s.BoneCount())
	walk, err := NewClipAnimation(slideClip("walk", 1, [3]float32{2, 0, 0}), pt)
	require.NoError(t, err)
	run, err := NewClipAnimation(slideClip("run", 0.5, [3]float32{0, 2, 0}), pt)
	require.NoError(t, err)

	g, err := animation.NewBlendGroup(
		animation.WithTimelines(walk, run),
		animation.WithDurationSynchronization(),
	)
	require.NoError(t, err)
	d, ok := g.SynchronizedDuration()
	require.True(t, ok)
	assert.Equal(t, 750*time.Millisecond, d)

	sp := NewSkeletonPose(s)
	inst, err := g.NewInstance()
	require.NoError(t, err)
	defer inst.Stop()
	require.Equal(t, 1, inst.Bind(sp))

	// Half way through the synchronized cycle both clips are half way through their own.
	inst.SetTime(375 * time.Millisecond)
	require.NoError(t, inst.Apply())
	foot, ok := sp.BoneTransform("foot")
	require.True(t, ok)
	if diff := cmp.Diff([3]float32{0.5, 0.5, 0}, foot.Translation, cmpopts.EquateApprox(0, 1e-5)); diff != "" {
		t.Errorf("blended foot translation mismatch (-want +got):\n%s", diff)
	}
	hips, _ := sp.BoneTransform("hips")
	assert.Equal(t, [3]float32{0, 1, 0}, hips.Translation)
	assert.InDelta(t, 1, float64(hips.Rotation[3]), 1e-6)
}
