package model

import (
	"math"
	"time"

	"github.com/Carmen-Shannon/oxy-blend/common"
)

// --- Transform & Skeleton Types ---

// Transform is a bone's local pose split into the components that blend independently.
type Transform struct {
	// Translation is the offset from the parent bone.
	Translation [3]float32

	// Rotation is a unit quaternion (x, y, z, w).
	Rotation [4]float32

	// Scale is the per-axis scale factor.
	Scale [3]float32
}

// IdentityTransform returns the transform that leaves a bone at its parent's origin.
func IdentityTransform() Transform {
	return Transform{
		Rotation: common.IdentityQuaternion,
		Scale:    [3]float32{1, 1, 1},
	}
}

// Bone is one joint of a Skeleton.
type Bone struct {
	// Name identifies the bone. Clip channels and pose properties are keyed by it.
	Name string

	// ParentIndex is the index of the parent bone, -1 for roots.
	ParentIndex int32

	// LocalTransform is the rest pose relative to the parent.
	LocalTransform Transform
}

// Skeleton is an immutable bone hierarchy shared by every pose built from it.
// Use NewSkeleton to fill the lookup tables.
type Skeleton struct {
	Bones []Bone

	// RootBoneIndices lists the bones without a parent.
	RootBoneIndices []int32

	// BoneNameToIndex resolves a bone name to its index in Bones.
	BoneNameToIndex map[string]int32
}

// --- Clip Types ---

// AnimationClip is one authored motion (walk, run, idle) over a skeleton.
type AnimationClip struct {
	Name string

	// Duration is the clip length in seconds. Channels may end earlier and hold their last key.
	Duration float32

	// Channels holds at most one channel per animated bone.
	Channels []AnimationChannel
}

// AnimationChannel holds the key tracks of a single bone. An empty track leaves that
// component of the pose untouched.
type AnimationChannel struct {
	BoneIndex int32

	PositionKeys []VectorKeyframe
	RotationKeys []QuaternionKeyframe
	ScaleKeys    []VectorKeyframe
}

// Keyframe is a value at a clip time in seconds. Tracks are sorted by Time.
type Keyframe[V any] struct {
	Time  float32
	Value V
}

// VectorKeyframe keys a translation or scale track.
type VectorKeyframe = Keyframe[[3]float32]

// QuaternionKeyframe keys a rotation track (x, y, z, w).
type QuaternionKeyframe = Keyframe[[4]float32]

// Seconds converts a clip time in seconds to a duration.
func Seconds(s float32) time.Duration {
	return time.Duration(math.Round(float64(s) * float64(time.Second)))
}
