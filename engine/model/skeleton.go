package model

import (
	"errors"
	"fmt"
)

// ErrInvalidSkeleton is returned for bone hierarchies that cannot be animated.
var ErrInvalidSkeleton = errors.New("invalid skeleton")

// NewSkeleton builds a skeleton from bones listed parents first.
//
// Parameters:
//   - bones: the bones; every ParentIndex must be -1 or the index of an earlier bone
//
// Returns:
//   - *Skeleton: the skeleton with root indices and the name lookup filled in
//   - error: ErrInvalidSkeleton for empty, duplicate, or out-of-order bones
func NewSkeleton(bones []Bone) (*Skeleton, error) {
	if len(bones) == 0 {
		return nil, fmt.Errorf("no bones: %w", ErrInvalidSkeleton)
	}
	s := &Skeleton{
		Bones:           make([]Bone, len(bones)),
		BoneNameToIndex: make(map[string]int32, len(bones)),
	}
	copy(s.Bones, bones)
	for i, b := range s.Bones {
		if b.Name == "" {
			return nil, fmt.Errorf("bone %d has no name: %w", i, ErrInvalidSkeleton)
		}
		if _, dup := s.BoneNameToIndex[b.Name]; dup {
			return nil, fmt.Errorf("duplicate bone %q: %w", b.Name, ErrInvalidSkeleton)
		}
		if b.ParentIndex >= int32(i) || b.ParentIndex < -1 {
			return nil, fmt.Errorf("bone %q has parent %d, want -1 or an earlier bone: %w", b.Name, b.ParentIndex, ErrInvalidSkeleton)
		}
		if b.ParentIndex == -1 {
			s.RootBoneIndices = append(s.RootBoneIndices, int32(i))
		}
		s.BoneNameToIndex[b.Name] = int32(i)
	}
	return s, nil
}

// BoneCount returns the number of bones.
func (s *Skeleton) BoneCount() int {
	return len(s.Bones)
}

// BoneIndex looks a bone up by name.
func (s *Skeleton) BoneIndex(name string) (int32, bool) {
	i, ok := s.BoneNameToIndex[name]
	return i, ok
}

// RestPose returns a new pose holding the local rest transform of every bone.
func (s *Skeleton) RestPose() *Pose {
	p := NewPose(len(s.Bones))
	for i, b := range s.Bones {
		p.Transforms[i] = b.LocalTransform
	}
	return p
}
