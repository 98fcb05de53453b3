package common

import (
	"math"
	"time"
)

// IdentityQuaternion is the rotation quaternion (x, y, z, w) that applies no rotation.
var IdentityQuaternion = [4]float32{0, 0, 0, 1}

// Lerp3 linearly interpolates between two 3D vectors and stores the result in out.
//
// Parameters:
//   - out: destination vector
//   - a: the start vector (p = 0)
//   - b: the end vector (p = 1)
//   - p: the interpolation parameter
func Lerp3(out *[3]float32, a, b [3]float32, p float32) {
	out[0] = a[0] + (b[0]-a[0])*p
	out[1] = a[1] + (b[1]-a[1])*p
	out[2] = a[2] + (b[2]-a[2])*p
}

// QuatDot returns the 4D dot product of two quaternions.
//
// Parameters:
//   - a: the first quaternion (x, y, z, w)
//   - b: the second quaternion (x, y, z, w)
//
// Returns:
//   - float32: the dot product
func QuatDot(a, b [4]float32) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] + a[3]*b[3]
}

// QuatNormalize scales the quaternion in place to unit length.
// A zero-length quaternion is reset to the identity rotation.
//
// Parameters:
//   - q: the quaternion to normalize
func QuatNormalize(q *[4]float32) {
	lenSq := float64(QuatDot(*q, *q))
	if lenSq == 0 || math.IsNaN(lenSq) {
		*q = IdentityQuaternion
		return
	}
	inv := float32(1.0 / math.Sqrt(lenSq))
	q[0] *= inv
	q[1] *= inv
	q[2] *= inv
	q[3] *= inv
}

// Slerp performs shortest-path spherical linear interpolation between two unit quaternions.
// Nearly parallel inputs fall back to a normalized linear interpolation.
//
// Parameters:
//   - out: destination quaternion
//   - a: the start rotation (p = 0)
//   - b: the end rotation (p = 1)
//   - p: the interpolation parameter
func Slerp(out *[4]float32, a, b [4]float32, p float32) {
	cos := float64(QuatDot(a, b))
	if cos < 0 {
		cos = -cos
		b = [4]float32{-b[0], -b[1], -b[2], -b[3]}
	}

	var wa, wb float64
	if cos > 0.9995 {
		wa = 1 - float64(p)
		wb = float64(p)
	} else {
		theta := math.Acos(cos)
		sin := math.Sin(theta)
		wa = math.Sin((1-float64(p))*theta) / sin
		wb = math.Sin(float64(p)*theta) / sin
	}

	for i := range out {
		out[i] = float32(wa)*a[i] + float32(wb)*b[i]
	}
	QuatNormalize(out)
}

// QuatFromAxisAngle builds a unit quaternion rotating by angle radians around axis.
//
// Parameters:
//   - axis: the rotation axis (need not be normalized)
//   - angle: rotation angle in radians
//
// Returns:
//   - [4]float32: the rotation quaternion (x, y, z, w)
func QuatFromAxisAngle(axis [3]float32, angle float32) [4]float32 {
	l := float32(math.Sqrt(float64(axis[0]*axis[0] + axis[1]*axis[1] + axis[2]*axis[2])))
	if l == 0 {
		return IdentityQuaternion
	}
	s := float32(math.Sin(float64(angle)/2)) / l
	return [4]float32{axis[0] * s, axis[1] * s, axis[2] * s, float32(math.Cos(float64(angle) / 2))}
}

// ScaleDuration multiplies a duration by a factor, rounding to the nearest tick and
// saturating at the int64 range instead of overflowing.
//
// Parameters:
//   - d: the duration to scale
//   - factor: the scale factor
//
// Returns:
//   - time.Duration: the scaled duration
func ScaleDuration(d time.Duration, factor float64) time.Duration {
	v := math.Round(float64(d) * factor)
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt64:
		return time.Duration(math.MaxInt64)
	case v <= math.MinInt64:
		return time.Duration(math.MinInt64)
	}
	return time.Duration(v)
}

// AddDuration adds two non-negative durations, saturating at the maximum duration.
//
// Parameters:
//   - a: the first duration
//   - b: the second duration
//
// Returns:
//   - time.Duration: a + b, or the maximum duration on overflow
func AddDuration(a, b time.Duration) time.Duration {
	if a > 0 && b > time.Duration(math.MaxInt64)-a {
		return time.Duration(math.MaxInt64)
	}
	return a + b
}
