package model

import (
	"github.com/Carmen-Shannon/oxy-blend/engine/animation"
)

// SkeletonPose is the animatable pose of one skeleton instance. It exposes a single
// property, PoseProperty, whose base value is the skeleton's rest pose.
//
// While animated, the pose returned by Current is owned by the playback writing it and is
// rewritten in place every frame; read it between frames.
type SkeletonPose struct {
	skeleton *Skeleton
	pose     *animation.Property[*Pose]
}

var _ animation.AnimatableObject = &SkeletonPose{}

// NewSkeletonPose creates a pose object resting in the skeleton's rest pose.
func NewSkeletonPose(s *Skeleton) *SkeletonPose {
	if s == nil {
		panic("model: NewSkeletonPose requires a non-nil skeleton")
	}
	return &SkeletonPose{
		skeleton: s,
		pose:     animation.NewProperty(s.RestPose()),
	}
}

// Skeleton returns the skeleton being posed.
func (p *SkeletonPose) Skeleton() *Skeleton {
	return p.skeleton
}

func (p *SkeletonPose) GetAnimatableProperty(name string) any {
	if name == PoseProperty {
		return p.pose
	}
	return nil
}

// IsAnimated reports whether a playback currently drives the pose.
func (p *SkeletonPose) IsAnimated() bool {
	return p.pose.IsAnimated()
}

// Current returns the effective pose.
func (p *SkeletonPose) Current() *Pose {
	return p.pose.Value()
}

// BoneTransform returns the effective local transform of a bone.
func (p *SkeletonPose) BoneTransform(name string) (Transform, bool) {
	i, ok := p.skeleton.BoneIndex(name)
	if !ok {
		return Transform{}, false
	}
	pose := p.Current()
	if pose == nil || int(i) >= len(pose.Transforms) {
		return Transform{}, false
	}
	return pose.Transforms[i], true
}
