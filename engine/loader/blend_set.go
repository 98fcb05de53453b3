package loader

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-blend/common"
	"github.com/Carmen-Shannon/oxy-blend/engine/animation"
	"github.com/Carmen-Shannon/oxy-blend/engine/animation/traits"
	"github.com/Carmen-Shannon/oxy-blend/engine/model"
	"go.uber.org/zap"
)

// ErrInvalidDocument is returned for blend set documents that cannot be built.
var ErrInvalidDocument = errors.New("invalid blend set document")

const (
	trackScalar  = "scalar"
	trackVector3 = "vector3"
)

// BlendSet is a loaded blend set: the skeleton, one timeline per clip, and the blend group
// that mixes the clips. Clip i is entry i of the group.
type BlendSet struct {
	Name       string
	Skeleton   *model.Skeleton
	PoseTraits *model.PoseTraits
	Group      *animation.BlendGroup

	clips      []*animation.AnimationGroup
	clipNames  []string
	properties map[string]curveProperty
}

// curveProperty is the declared type and base value of a curve property.
type curveProperty struct {
	kind  string
	value []float32
}

// Clips returns the clip names in entry order.
func (s *BlendSet) Clips() []string {
	return slices.Clone(s.clipNames)
}

// Clip returns the timeline of a clip by name, or nil.
func (s *BlendSet) Clip(name string) *animation.AnimationGroup {
	if i := s.ClipIndex(name); i >= 0 {
		return s.clips[i]
	}
	return nil
}

// ClipIndex returns the blend group entry index of a clip, or -1.
func (s *BlendSet) ClipIndex(name string) int {
	return slices.Index(s.clipNames, name)
}

// SetWeight sets the blend weight of a clip by name.
//
// Returns:
//   - error: animation.ErrInvalidArgument for unknown clips or invalid weights
func (s *BlendSet) SetWeight(clip string, weight float32) error {
	i := s.ClipIndex(clip)
	if i < 0 {
		return fmt.Errorf("blend set %q has no clip %q: %w", s.Name, clip, animation.ErrInvalidArgument)
	}
	return s.Group.SetWeight(i, weight)
}

// Target is the animatable object a blend set plays into: a skeleton pose plus the curve
// properties its tracks animate.
type Target struct {
	Pose       *model.SkeletonPose
	Properties *animation.PropertyMap
}

var _ animation.AnimatableObject = &Target{}

func (t *Target) GetAnimatableProperty(name string) any {
	if t.Pose != nil {
		if p := t.Pose.GetAnimatableProperty(name); p != nil {
			return p
		}
	}
	return t.Properties.GetAnimatableProperty(name)
}

// Scalar returns the effective value of a scalar curve property.
func (t *Target) Scalar(name string) (float32, bool) {
	p, ok := animation.PropertyOf[float32](t.Properties, name)
	if !ok {
		return 0, false
	}
	if p.IsAnimated() {
		return p.AnimationValue(), true
	}
	return p.BaseValue(), true
}

// Vector3 returns the effective value of a vector curve property.
func (t *Target) Vector3(name string) ([3]float32, bool) {
	p, ok := animation.PropertyOf[[3]float32](t.Properties, name)
	if !ok {
		return [3]float32{}, false
	}
	if p.IsAnimated() {
		return p.AnimationValue(), true
	}
	return p.BaseValue(), true
}

// NewTarget creates a fresh target at rest: the skeleton's rest pose and every curve
// property at its declared base value.
func (s *BlendSet) NewTarget() *Target {
	t := &Target{Properties: animation.NewPropertyMap()}
	if s.Skeleton != nil {
		t.Pose = model.NewSkeletonPose(s.Skeleton)
	}
	for name, cp := range s.properties {
		switch cp.kind {
		case trackVector3:
			var v [3]float32
			copy(v[:], cp.value)
			t.Properties.Register(name, animation.NewProperty(v))
		default:
			var v float32
			if len(cp.value) > 0 {
				v = cp.value[0]
			}
			t.Properties.Register(name, animation.NewProperty(v))
		}
	}
	return t
}

// ParseLoopBehavior parses "constant", "cycle", "cycle-offset", or "oscillate". The empty
// string is constant.
func ParseLoopBehavior(s string) (animation.LoopBehavior, error) {
	switch strings.ToLower(s) {
	case "", "constant":
		return animation.LoopBehaviorConstant, nil
	case "cycle":
		return animation.LoopBehaviorCycle, nil
	case "cycle-offset":
		return animation.LoopBehaviorCycleOffset, nil
	case "oscillate":
		return animation.LoopBehaviorOscillate, nil
	}
	return 0, fmt.Errorf("unknown loop behavior %q: %w", s, ErrInvalidDocument)
}

// ParseFillBehavior parses "hold" or "stop". The empty string is hold.
func ParseFillBehavior(s string) (animation.FillBehavior, error) {
	switch strings.ToLower(s) {
	case "", "hold":
		return animation.FillBehaviorHold, nil
	case "stop":
		return animation.FillBehaviorStop, nil
	}
	return 0, fmt.Errorf("unknown fill behavior %q: %w", s, ErrInvalidDocument)
}

// buildOptions carries loader settings into blend set construction.
type buildOptions struct {
	logger       *zap.Logger
	instancePool *common.Pool[*animation.BlendGroupInstance]
}

// buildBlendSet converts a decoded document into a playable blend set.
func buildBlendSet(name string, doc *BlendSetDocument, opts buildOptions) (*BlendSet, error) {
	set := &BlendSet{
		Name:       common.Coalesce(doc.Name, name),
		properties: make(map[string]curveProperty),
	}

	if doc.Skeleton != nil {
		s, err := buildSkeleton(doc.Skeleton)
		if err != nil {
			return nil, err
		}
		set.Skeleton = s
		set.PoseTraits = model.NewPoseTraits(s.BoneCount())
	}

	if len(doc.Clips) == 0 {
		return nil, fmt.Errorf("no clips: %w", ErrInvalidDocument)
	}
	groupOptions := []animation.BlendGroupBuilderOption{animation.WithLogger(opts.logger)}
	if opts.instancePool != nil {
		groupOptions = append(groupOptions, animation.WithInstancePool(opts.instancePool))
	}
	for i := range doc.Clips {
		cd := &doc.Clips[i]
		clip, err := set.buildClip(cd)
		if err != nil {
			return nil, fmt.Errorf("clip %d %q: %w", i, cd.Name, err)
		}
		set.clips = append(set.clips, clip)
		set.clipNames = append(set.clipNames, cd.Name)
		weight := float32(1)
		if cd.Weight != nil {
			weight = *cd.Weight
		}
		groupOptions = append(groupOptions, animation.WithWeightedTimeline(clip, weight))
	}
	for prop, value := range doc.Properties {
		cp, ok := set.properties[prop]
		if !ok {
			return nil, fmt.Errorf("property %q is not animated by any track: %w", prop, ErrInvalidDocument)
		}
		if want := componentCount(cp.kind); len(value) != want {
			return nil, fmt.Errorf("property %q: %d components, want %d: %w", prop, len(value), want, ErrInvalidDocument)
		}
		cp.value = value
		set.properties[prop] = cp
	}

	g := doc.Group
	loop, err := ParseLoopBehavior(g.Loop)
	if err != nil {
		return nil, fmt.Errorf("group: %w", err)
	}
	fill, err := ParseFillBehavior(g.Fill)
	if err != nil {
		return nil, fmt.Errorf("group: %w", err)
	}
	groupOptions = append(groupOptions,
		animation.WithLoopBehavior(loop),
		animation.WithFillBehavior(fill),
		animation.WithDelay(model.Seconds(g.Delay)),
	)
	if g.Speed != nil {
		groupOptions = append(groupOptions, animation.WithSpeed(*g.Speed))
	}
	switch {
	case g.Duration != nil:
		groupOptions = append(groupOptions, animation.WithDuration(model.Seconds(*g.Duration)))
	case loop != animation.LoopBehaviorConstant:
		groupOptions = append(groupOptions, animation.WithDuration(animation.MaxDuration))
	}
	if g.Synchronize {
		groupOptions = append(groupOptions, animation.WithDurationSynchronization())
	}

	group, err := animation.NewBlendGroup(groupOptions...)
	if err != nil {
		return nil, fmt.Errorf("%w: group: %w", ErrInvalidDocument, err)
	}
	set.Group = group
	return set, nil
}

func buildSkeleton(doc *SkeletonDocument) (*model.Skeleton, error) {
	index := make(map[string]int32, len(doc.Bones))
	bones := make([]model.Bone, len(doc.Bones))
	for i, bd := range doc.Bones {
		parent := int32(-1)
		if bd.Parent != "" {
			p, ok := index[bd.Parent]
			if !ok {
				return nil, fmt.Errorf("bone %q: parent %q must be listed before it: %w", bd.Name, bd.Parent, ErrInvalidDocument)
			}
			parent = p
		}
		tr := model.IdentityTransform()
		if err := fill3(&tr.Translation, bd.Translation); err != nil {
			return nil, fmt.Errorf("bone %q translation: %w", bd.Name, err)
		}
		if err := fill4(&tr.Rotation, bd.Rotation); err != nil {
			return nil, fmt.Errorf("bone %q rotation: %w", bd.Name, err)
		}
		common.QuatNormalize(&tr.Rotation)
		if err := fill3(&tr.Scale, bd.Scale); err != nil {
			return nil, fmt.Errorf("bone %q scale: %w", bd.Name, err)
		}
		bones[i] = model.Bone{Name: bd.Name, ParentIndex: parent, LocalTransform: tr}
		index[bd.Name] = int32(i)
	}
	s, err := model.NewSkeleton(bones)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return s, nil
}

func (s *BlendSet) buildClip(cd *ClipDocument) (*animation.AnimationGroup, error) {
	if cd.Name == "" {
		return nil, fmt.Errorf("missing name: %w", ErrInvalidDocument)
	}
	if slices.Contains(s.clipNames, cd.Name) {
		return nil, fmt.Errorf("duplicate clip: %w", ErrInvalidDocument)
	}
	if cd.Duration < 0 {
		return nil, fmt.Errorf("negative duration: %w", ErrInvalidDocument)
	}
	if len(cd.Channels) == 0 && len(cd.Tracks) == 0 {
		return nil, fmt.Errorf("no channels or tracks: %w", ErrInvalidDocument)
	}
	loop, err := ParseLoopBehavior(cd.Loop)
	if err != nil {
		return nil, err
	}

	duration := cd.Duration
	if duration == 0 {
		duration = lastKeyTime(cd)
	}

	group := animation.NewAnimationGroup()
	if len(cd.Channels) > 0 {
		ca, err := s.buildClipAnimation(cd, duration)
		if err != nil {
			return nil, err
		}
		ca.LoopBehavior = loop
		if err := group.Add(ca); err != nil {
			return nil, err
		}
	}
	for i := range cd.Tracks {
		td := &cd.Tracks[i]
		tl, err := s.buildTrack(td, loop, model.Seconds(duration))
		if err != nil {
			return nil, fmt.Errorf("track %q: %w", td.Property, err)
		}
		if err := group.Add(tl); err != nil {
			return nil, err
		}
	}
	return group, nil
}

func (s *BlendSet) buildClipAnimation(cd *ClipDocument, duration float32) (*model.ClipAnimation, error) {
	if s.Skeleton == nil {
		return nil, fmt.Errorf("bone channels need a skeleton: %w", ErrInvalidDocument)
	}
	clip := &model.AnimationClip{Name: cd.Name, Duration: duration}
	for _, chd := range cd.Channels {
		bone, ok := s.Skeleton.BoneIndex(chd.Bone)
		if !ok {
			return nil, fmt.Errorf("unknown bone %q: %w", chd.Bone, ErrInvalidDocument)
		}
		ch := model.AnimationChannel{BoneIndex: bone}
		var err error
		if ch.PositionKeys, err = vectorKeys(chd.Position); err != nil {
			return nil, fmt.Errorf("bone %q position: %w", chd.Bone, err)
		}
		if ch.RotationKeys, err = quaternionKeys(chd.Rotation); err != nil {
			return nil, fmt.Errorf("bone %q rotation: %w", chd.Bone, err)
		}
		if ch.ScaleKeys, err = vectorKeys(chd.Scale); err != nil {
			return nil, fmt.Errorf("bone %q scale: %w", chd.Bone, err)
		}
		clip.Channels = append(clip.Channels, ch)
	}
	return model.NewClipAnimation(clip, s.PoseTraits)
}

func (s *BlendSet) buildTrack(td *TrackDocument, loop animation.LoopBehavior, duration time.Duration) (animation.Timeline, error) {
	if td.Property == "" || td.Property == model.PoseProperty {
		return nil, fmt.Errorf("invalid property name: %w", ErrInvalidDocument)
	}
	if len(td.Keys) == 0 {
		return nil, fmt.Errorf("no keys: %w", ErrInvalidDocument)
	}
	kind := strings.ToLower(common.Coalesce(td.Type, trackScalar))
	if prev, ok := s.properties[td.Property]; ok && prev.kind != kind {
		return nil, fmt.Errorf("type %s conflicts with %s used by another track: %w", kind, prev.kind, ErrInvalidDocument)
	}
	want := componentCount(kind)
	if want == 0 {
		return nil, fmt.Errorf("unknown track type %q: %w", td.Type, ErrInvalidDocument)
	}
	for _, k := range td.Keys {
		if len(k.Value) != want || k.Time < 0 {
			return nil, fmt.Errorf("key at %vs: want %d components at a non-negative time: %w", k.Time, want, ErrInvalidDocument)
		}
	}
	s.properties[td.Property] = curveProperty{kind: kind}

	switch kind {
	case trackVector3:
		frames := make([]animation.KeyFrame[[3]float32], len(td.Keys))
		for i, k := range td.Keys {
			frames[i] = animation.KeyFrame[[3]float32]{Time: model.Seconds(k.Time), Value: [3]float32(k.Value)}
		}
		a, err := animation.NewKeyFrameAnimation[[3]float32](td.Property, traits.Vector3{}, traits.LerpVector3, frames...)
		if err != nil {
			return nil, err
		}
		a.LoopBehavior = loop
		a.SetDuration(max(duration, a.NaturalDuration()))
		return a, nil
	default:
		frames := make([]animation.KeyFrame[float32], len(td.Keys))
		for i, k := range td.Keys {
			frames[i] = animation.KeyFrame[float32]{Time: model.Seconds(k.Time), Value: k.Value[0]}
		}
		a, err := animation.NewKeyFrameAnimation[float32](td.Property, traits.Float32{}, traits.LerpFloat32, frames...)
		if err != nil {
			return nil, err
		}
		a.LoopBehavior = loop
		a.SetDuration(max(duration, a.NaturalDuration()))
		return a, nil
	}
}

func componentCount(kind string) int {
	switch kind {
	case trackScalar:
		return 1
	case trackVector3:
		return 3
	}
	return 0
}

func lastKeyTime(cd *ClipDocument) float32 {
	var last float32
	for _, ch := range cd.Channels {
		for _, keys := range [][]KeyDocument{ch.Position, ch.Rotation, ch.Scale} {
			for _, k := range keys {
				last = max(last, k.Time)
			}
		}
	}
	for _, tr := range cd.Tracks {
		for _, k := range tr.Keys {
			last = max(last, k.Time)
		}
	}
	return last
}

func vectorKeys(keys []KeyDocument) ([]model.VectorKeyframe, error) {
	out := make([]model.VectorKeyframe, 0, len(keys))
	for _, k := range keys {
		var v [3]float32
		if err := fill3(&v, k.Value); err != nil || len(k.Value) == 0 {
			return nil, fmt.Errorf("key at %vs: want 3 components: %w", k.Time, ErrInvalidDocument)
		}
		out = append(out, model.VectorKeyframe{Time: k.Time, Value: v})
	}
	slices.SortStableFunc(out, func(a, b model.VectorKeyframe) int {
		return cmp.Compare(a.Time, b.Time)
	})
	return out, nil
}

func quaternionKeys(keys []KeyDocument) ([]model.QuaternionKeyframe, error) {
	out := make([]model.QuaternionKeyframe, 0, len(keys))
	for _, k := range keys {
		var q [4]float32
		if err := fill4(&q, k.Value); err != nil || len(k.Value) == 0 {
			return nil, fmt.Errorf("key at %vs: want 4 components: %w", k.Time, ErrInvalidDocument)
		}
		common.QuatNormalize(&q)
		out = append(out, model.QuaternionKeyframe{Time: k.Time, Value: q})
	}
	slices.SortStableFunc(out, func(a, b model.QuaternionKeyframe) int {
		return cmp.Compare(a.Time, b.Time)
	})
	return out, nil
}

// fill3 copies an optional 3-component value; empty leaves dst unchanged.
func fill3(dst *[3]float32, src []float32) error {
	switch len(src) {
	case 0:
		return nil
	case 3:
		*dst = [3]float32(src)
		return nil
	}
	return fmt.Errorf("%d components, want 3: %w", len(src), ErrInvalidDocument)
}

// fill4 copies an optional 4-component value; empty leaves dst unchanged.
func fill4(dst *[4]float32, src []float32) error {
	switch len(src) {
	case 0:
		return nil
	case 4:
		*dst = [4]float32(src)
		return nil
	}
	return fmt.Errorf("%d components, want 4: %w", len(src), ErrInvalidDocument)
}
