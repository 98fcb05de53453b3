package model

import (
	"fmt"
	"sort"
	"time"

	"github.com/Carmen-Shannon/oxy-blend/common"
	"github.com/Carmen-Shannon/oxy-blend/engine/animation"
)

// PoseProperty is the property name under which a SkeletonPose exposes its pose.
const PoseProperty = "Pose"

// ClipAnimation plays an AnimationClip as a whole-skeleton pose. Bones without a channel,
// and channels without keys for a component, keep the value of the default source.
type ClipAnimation struct {
	animation.Timing

	clip     *AnimationClip
	traits   *PoseTraits
	property string
}

var _ animation.TypedAnimation[*Pose] = &ClipAnimation{}

// NewClipAnimation creates an animation for the clip targeting PoseProperty.
//
// Parameters:
//   - clip: the clip to play
//   - poseTraits: the pose traits for the clip's skeleton
//
// Returns:
//   - *ClipAnimation: the animation
//   - error: if a channel animates a bone outside the skeleton
func NewClipAnimation(clip *AnimationClip, poseTraits *PoseTraits) (*ClipAnimation, error) {
	if clip == nil || poseTraits == nil {
		return nil, fmt.Errorf("clip animation needs a clip and pose traits: %w", animation.ErrInvalidArgument)
	}
	for _, ch := range clip.Channels {
		if ch.BoneIndex < 0 || int(ch.BoneIndex) >= poseTraits.BoneCount() {
			return nil, fmt.Errorf("clip %q animates bone %d of %d: %w", clip.Name, ch.BoneIndex, poseTraits.BoneCount(), animation.ErrInvalidArgument)
		}
	}
	return &ClipAnimation{
		Timing:   animation.DefaultTiming(),
		clip:     clip,
		traits:   poseTraits,
		property: PoseProperty,
	}, nil
}

// Clip returns the clip being played.
func (a *ClipAnimation) Clip() *AnimationClip {
	return a.clip
}

func (a *ClipAnimation) TargetProperty() string {
	return a.property
}

func (a *ClipAnimation) Traits() animation.Traits[*Pose] {
	return a.traits
}

func (a *ClipAnimation) duration() time.Duration {
	return Seconds(a.clip.Duration)
}

func (a *ClipAnimation) GetState(t time.Duration) animation.AnimationState {
	return a.Timing.State(t, a.duration())
}

func (a *ClipAnimation) GetAnimationTime(t time.Duration) (time.Duration, bool) {
	d := a.duration()
	return a.Timing.AnimationTime(t, d, d)
}

func (a *ClipAnimation) GetTotalDuration() time.Duration {
	return a.Timing.TotalDuration(a.duration())
}

func (a *ClipAnimation) GetValue(t time.Duration, defaultSource, defaultTarget, result **Pose) {
	a.traits.Copy(defaultSource, result)
	at, ok := a.GetAnimationTime(t)
	if !ok {
		return
	}
	a.Sample(at, *result)
}

// Sample overwrites the animated components of pose with the clip at animation time at.
func (a *ClipAnimation) Sample(at time.Duration, pose *Pose) {
	s := float32(at.Seconds())
	for i := range a.clip.Channels {
		ch := &a.clip.Channels[i]
		tr := &pose.Transforms[ch.BoneIndex]
		if len(ch.PositionKeys) > 0 {
			tr.Translation = SampleVector(ch.PositionKeys, s)
		}
		if len(ch.RotationKeys) > 0 {
			tr.Rotation = SampleQuaternion(ch.RotationKeys, s)
		}
		if len(ch.ScaleKeys) > 0 {
			tr.Scale = SampleVector(ch.ScaleKeys, s)
		}
	}
}

func (a *ClipAnimation) CreateBlendAnimation() animation.BlendedAnimation {
	return animation.NewBlendAnimation[*Pose](a.traits)
}

// CreateInstance creates a playback instance for the clip.
func (a *ClipAnimation) CreateInstance() (animation.Instance, error) {
	return animation.NewAnimationInstance[*Pose](a), nil
}

// SampleVector interpolates linearly between the vector keys around time s.
// keys must be sorted and non-empty.
func SampleVector(keys []VectorKeyframe, s float32) [3]float32 {
	i, p := keySpan(keys, s)
	if p == 0 {
		return keys[i].Value
	}
	var out [3]float32
	common.Lerp3(&out, keys[i].Value, keys[i+1].Value, p)
	return out
}

// SampleQuaternion interpolates along the shortest arc between the rotation keys around
// time s. keys must be sorted and non-empty.
func SampleQuaternion(keys []QuaternionKeyframe, s float32) [4]float32 {
	i, p := keySpan(keys, s)
	if p == 0 {
		return keys[i].Value
	}
	var out [4]float32
	common.Slerp(&out, keys[i].Value, keys[i+1].Value, p)
	return out
}

// keySpan returns the key at or before s and the interpolation parameter toward the next key.
func keySpan[V any](keys []Keyframe[V], s float32) (int, float32) {
	n := len(keys)
	if n == 1 || s <= keys[0].Time {
		return 0, 0
	}
	if s >= keys[n-1].Time {
		return n - 1, 0
	}
	i := sort.Search(n, func(i int) bool { return keys[i].Time > s }) - 1
	span := keys[i+1].Time - keys[i].Time
	if span <= 0 {
		return i + 1, 0
	}
	return i, (s - keys[i].Time) / span
}
