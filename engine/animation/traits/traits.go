// Package traits provides animation value traits and interpolators for the scalar, vector,
// and rotation types used by the engine. Every traits type is a stateless value; use the
// zero value directly.
package traits

import "github.com/Carmen-Shannon/oxy-blend/common"

// Float32 blends float32 values as a weighted sum.
type Float32 struct{}

func (Float32) Create(reference, value *float32) { *value = 0 }
func (Float32) Recycle(value *float32)           { *value = 0 }
func (Float32) Copy(source, target *float32)     { *target = *source }
func (Float32) BeginBlend(value *float32)        { *value = 0 }
func (Float32) EndBlend(value *float32)          {}

func (Float32) BlendNext(value, next *float32, normalizedWeight float32) {
	*value += normalizedWeight * *next
}

// Float64 blends float64 values as a weighted sum.
type Float64 struct{}

func (Float64) Create(reference, value *float64) { *value = 0 }
func (Float64) Recycle(value *float64)           { *value = 0 }
func (Float64) Copy(source, target *float64)     { *target = *source }
func (Float64) BeginBlend(value *float64)        { *value = 0 }
func (Float64) EndBlend(value *float64)          {}

func (Float64) BlendNext(value, next *float64, normalizedWeight float32) {
	*value += float64(normalizedWeight) * *next
}

// Vector3 blends 3D vectors component-wise.
type Vector3 struct{}

func (Vector3) Create(reference, value *[3]float32) { *value = [3]float32{} }
func (Vector3) Recycle(value *[3]float32)           { *value = [3]float32{} }
func (Vector3) Copy(source, target *[3]float32)     { *target = *source }
func (Vector3) BeginBlend(value *[3]float32)        { *value = [3]float32{} }
func (Vector3) EndBlend(value *[3]float32)          {}

func (Vector3) BlendNext(value, next *[3]float32, normalizedWeight float32) {
	value[0] += normalizedWeight * next[0]
	value[1] += normalizedWeight * next[1]
	value[2] += normalizedWeight * next[2]
}

// Quaternion blends unit rotations (x, y, z, w) by a normalized weighted sum. Each
// contribution is flipped into the hemisphere of the accumulator so opposite-sign encodings
// of the same rotation do not cancel out.
type Quaternion struct{}

func (Quaternion) Create(reference, value *[4]float32) { *value = common.IdentityQuaternion }
func (Quaternion) Recycle(value *[4]float32)           { *value = common.IdentityQuaternion }
func (Quaternion) Copy(source, target *[4]float32)     { *target = *source }
func (Quaternion) BeginBlend(value *[4]float32)        { *value = [4]float32{} }

func (Quaternion) BlendNext(value, next *[4]float32, normalizedWeight float32) {
	BlendQuaternion(value, next, normalizedWeight)
}

func (Quaternion) EndBlend(value *[4]float32) {
	common.QuatNormalize(value)
}

// BlendQuaternion adds a weighted rotation to an accumulator, aligning hemispheres.
//
// Parameters:
//   - acc: the accumulator
//   - q: the rotation to add
//   - w: its weight
func BlendQuaternion(acc, q *[4]float32, w float32) {
	if common.QuatDot(*acc, *q) < 0 {
		w = -w
	}
	acc[0] += w * q[0]
	acc[1] += w * q[1]
	acc[2] += w * q[2]
	acc[3] += w * q[3]
}

// LerpFloat32 interpolates linearly between two float32 values.
func LerpFloat32(a, b *float32, p float32, result *float32) {
	*result = *a + (*b-*a)*p
}

// LerpFloat64 interpolates linearly between two float64 values.
func LerpFloat64(a, b *float64, p float32, result *float64) {
	*result = *a + (*b-*a)*float64(p)
}

// LerpVector3 interpolates linearly between two vectors.
func LerpVector3(a, b *[3]float32, p float32, result *[3]float32) {
	common.Lerp3(result, *a, *b, p)
}

// SlerpQuaternion interpolates along the shortest arc between two rotations.
func SlerpQuaternion(a, b *[4]float32, p float32, result *[4]float32) {
	common.Slerp(result, *a, *b, p)
}
