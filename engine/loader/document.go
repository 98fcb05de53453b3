package loader

// BlendSetDocument is the serialized form of a blend set: a skeleton, a list of clips, and
// the blend group that mixes them.
type BlendSetDocument struct {
	// Name is the blend set identifier. Defaults to the cache key when empty.
	Name string `yaml:"name"`

	// Skeleton is optional; clips with bone channels require it.
	Skeleton *SkeletonDocument `yaml:"skeleton,omitempty"`

	// Properties declares the base values of curve properties. Tracks whose property is not
	// declared start from zero.
	Properties map[string][]float32 `yaml:"properties,omitempty"`

	// Clips become the blend group entries, in order.
	Clips []ClipDocument `yaml:"clips"`

	Group GroupDocument `yaml:"group"`
}

// SkeletonDocument lists bones parents first.
type SkeletonDocument struct {
	Bones []BoneDocument `yaml:"bones"`
}

// BoneDocument is one bone and its rest transform. Missing rotation and scale default to
// identity.
type BoneDocument struct {
	Name        string    `yaml:"name"`
	Parent      string    `yaml:"parent,omitempty"`
	Translation []float32 `yaml:"translation,omitempty"`
	Rotation    []float32 `yaml:"rotation,omitempty"`
	Scale       []float32 `yaml:"scale,omitempty"`
}

// ClipDocument is one entry of the blend group. Times are in seconds.
type ClipDocument struct {
	Name     string            `yaml:"name"`
	Duration float32           `yaml:"duration"`
	Weight   *float32          `yaml:"weight,omitempty"`
	Loop     string            `yaml:"loop,omitempty"`
	Channels []ChannelDocument `yaml:"channels,omitempty"`
	Tracks   []TrackDocument   `yaml:"tracks,omitempty"`
}

// ChannelDocument animates one bone.
type ChannelDocument struct {
	Bone     string        `yaml:"bone"`
	Position []KeyDocument `yaml:"position,omitempty"`
	Rotation []KeyDocument `yaml:"rotation,omitempty"`
	Scale    []KeyDocument `yaml:"scale,omitempty"`
}

// TrackDocument animates one curve property. Type is "scalar" (the default) or "vector3".
type TrackDocument struct {
	Property string        `yaml:"property"`
	Type     string        `yaml:"type,omitempty"`
	Keys     []KeyDocument `yaml:"keys"`
}

// KeyDocument is a key at Time seconds. Value holds 1, 3, or 4 components depending on
// what is animated.
type KeyDocument struct {
	Time  float32   `yaml:"time"`
	Value []float32 `yaml:"value"`
}

// GroupDocument configures the blend group.
type GroupDocument struct {
	Synchronize bool     `yaml:"synchronize"`
	Loop        string   `yaml:"loop,omitempty"`
	Fill        string   `yaml:"fill,omitempty"`
	Speed       *float32 `yaml:"speed,omitempty"`
	Delay       float32  `yaml:"delay,omitempty"`

	// Duration in seconds. Omitted means one cycle, or forever for looping groups.
	Duration *float32 `yaml:"duration,omitempty"`
}
