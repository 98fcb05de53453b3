package model

import (
	"github.com/Carmen-Shannon/oxy-blend/common"
	"github.com/Carmen-Shannon/oxy-blend/engine/animation"
	"github.com/Carmen-Shannon/oxy-blend/engine/animation/traits"
)

// Pose holds one local transform per bone of a skeleton.
type Pose struct {
	Transforms []Transform
}

// NewPose creates a pose of boneCount identity transforms.
func NewPose(boneCount int) *Pose {
	p := &Pose{Transforms: make([]Transform, boneCount)}
	for i := range p.Transforms {
		p.Transforms[i] = IdentityTransform()
	}
	return p
}

// TransformTraits blends transforms: translation and scale as weighted sums, rotation as a
// hemisphere-aligned weighted sum that is re-normalized at the end.
type TransformTraits struct{}

var _ animation.Traits[Transform] = TransformTraits{}

func (TransformTraits) Create(reference, value *Transform) { *value = IdentityTransform() }
func (TransformTraits) Recycle(value *Transform)           { *value = IdentityTransform() }
func (TransformTraits) Copy(source, target *Transform)     { *target = *source }
func (TransformTraits) BeginBlend(value *Transform)        { *value = Transform{} }

func (TransformTraits) BlendNext(value, next *Transform, normalizedWeight float32) {
	blendTransform(value, next, normalizedWeight)
}

func (TransformTraits) EndBlend(value *Transform) {
	common.QuatNormalize(&value.Rotation)
}

// LerpTransform interpolates between two transforms, using slerp for the rotation.
func LerpTransform(a, b *Transform, p float32, result *Transform) {
	common.Lerp3(&result.Translation, a.Translation, b.Translation, p)
	common.Slerp(&result.Rotation, a.Rotation, b.Rotation, p)
	common.Lerp3(&result.Scale, a.Scale, b.Scale, p)
}

func blendTransform(acc, t *Transform, w float32) {
	for i := range 3 {
		acc.Translation[i] += w * t.Translation[i]
		acc.Scale[i] += w * t.Scale[i]
	}
	traits.BlendQuaternion(&acc.Rotation, &t.Rotation, w)
}

// PoseTraits blends whole poses bone by bone. Poses are taken from and returned to a pool,
// so all poses handled by one PoseTraits must have its bone count.
type PoseTraits struct {
	boneCount int
	pool      *common.Pool[*Pose]
}

var _ animation.Traits[*Pose] = &PoseTraits{}

// NewPoseTraits creates pose traits for skeletons with boneCount bones.
func NewPoseTraits(boneCount int) *PoseTraits {
	return &PoseTraits{
		boneCount: boneCount,
		pool:      common.NewPool(func() *Pose { return NewPose(boneCount) }, nil),
	}
}

// BoneCount returns the bone count of the poses these traits handle.
func (t *PoseTraits) BoneCount() int {
	return t.boneCount
}

// Pool returns the pose pool.
func (t *PoseTraits) Pool() *common.Pool[*Pose] {
	return t.pool
}

func (t *PoseTraits) Create(reference, value **Pose) {
	*value = t.pool.Get()
}

func (t *PoseTraits) Recycle(value **Pose) {
	if *value != nil {
		t.pool.Put(*value)
		*value = nil
	}
}

func (t *PoseTraits) Copy(source, target **Pose) {
	if *target == nil {
		*target = t.pool.Get()
	}
	copy((*target).Transforms, (*source).Transforms)
}

func (t *PoseTraits) BeginBlend(value **Pose) {
	clear((*value).Transforms)
}

func (t *PoseTraits) BlendNext(value, next **Pose, normalizedWeight float32) {
	acc, p := (*value).Transforms, (*next).Transforms
	for i := range min(len(acc), len(p)) {
		blendTransform(&acc[i], &p[i], normalizedWeight)
	}
}

func (t *PoseTraits) EndBlend(value **Pose) {
	for i := range (*value).Transforms {
		common.QuatNormalize(&(*value).Transforms[i].Rotation)
	}
}
