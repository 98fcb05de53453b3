package traits_test

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-blend/common"
	"github.com/Carmen-Shannon/oxy-blend/engine/animation"
	"github.com/Carmen-Shannon/oxy-blend/engine/animation/traits"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
)

var (
	_ animation.Traits[float32]    = traits.Float32{}
	_ animation.Traits[float64]    = traits.Float64{}
	_ animation.Traits[[3]float32] = traits.Vector3{}
	_ animation.Traits[[4]float32] = traits.Quaternion{}

	_ animation.Interpolator[float32]    = traits.LerpFloat32
	_ animation.Interpolator[float64]    = traits.LerpFloat64
	_ animation.Interpolator[[3]float32] = traits.LerpVector3
	_ animation.Interpolator[[4]float32] = traits.SlerpQuaternion
)

// blend folds values with weights through tr.
func blend[T any](tr animation.Traits[T], values []T, weights []float32) T {
	var acc T
	tr.Create(&values[0], &acc)
	tr.BeginBlend(&acc)
	for i := range values {
		tr.BlendNext(&acc, &values[i], weights[i])
	}
	tr.EndBlend(&acc)
	return acc
}

func TestScalarAndVectorBlend(t *testing.T) {
	assert.InDelta(t, 2.75, float64(blend[float32](traits.Float32{}, []float32{1, 3, 4}, []float32{0.25, 0.5, 0.25})), 1e-6)
	assert.InDelta(t, 1.75, blend[float64](traits.Float64{}, []float64{1, 2}, []float32{0.25, 0.75}), 1e-9)

	got := blend[[3]float32](traits.Vector3{}, [][3]float32{{2, 0, 0}, {0, 2, 4}}, []float32{0.5, 0.5})
	assert.Equal(t, [3]float32{1, 1, 2}, got)
}

func TestQuaternionBlend(t *testing.T) {
	q := common.QuatFromAxisAngle([3]float32{0, 1, 0}, math.Pi/2)
	neg := [4]float32{-q[0], -q[1], -q[2], -q[3]}

	// Both encodings of the same rotation blend to that rotation instead of cancelling.
	got := blend[[4]float32](traits.Quaternion{}, [][4]float32{q, neg}, []float32{0.5, 0.5})
	if diff := cmp.Diff(q, got, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("hemisphere blend mismatch (-want +got):\n%s", diff)
	}

	// Half way between identity and a quarter turn is an eighth turn.
	got = blend[[4]float32](traits.Quaternion{}, [][4]float32{common.IdentityQuaternion, q}, []float32{0.5, 0.5})
	want := common.QuatFromAxisAngle([3]float32{0, 1, 0}, math.Pi/4)
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-5)); diff != "" {
		t.Errorf("half turn blend mismatch (-want +got):\n%s", diff)
	}
	assert.InDelta(t, 1, float64(common.QuatDot(got, got)), 1e-6)
}

func TestCreateAndRecycle(t *testing.T) {
	var q [4]float32
	traits.Quaternion{}.Create(nil, &q)
	assert.Equal(t, common.IdentityQuaternion, q)
	q = [4]float32{1, 2, 3, 4}
	traits.Quaternion{}.Recycle(&q)
	assert.Equal(t, common.IdentityQuaternion, q)

	v := [3]float32{1, 2, 3}
	var c [3]float32
	traits.Vector3{}.Copy(&v, &c)
	assert.Equal(t, v, c)
	traits.Vector3{}.Recycle(&c)
	assert.Equal(t, [3]float32{}, c)
}

func TestInterpolators(t *testing.T) {
	a, b := float32(2), float32(4)
	var f float32
	traits.LerpFloat32(&a, &b, 0.25, &f)
	assert.Equal(t, float32(2.5), f)

	x, y := 1.0, 3.0
	var d float64
	traits.LerpFloat64(&x, &y, 0.5, &d)
	assert.Equal(t, 2.0, d)

	va, vb := [3]float32{0, 0, 0}, [3]float32{2, 4, 8}
	var v [3]float32
	traits.LerpVector3(&va, &vb, 0.5, &v)
	assert.Equal(t, [3]float32{1, 2, 4}, v)

	qa := common.IdentityQuaternion
	qb := common.QuatFromAxisAngle([3]float32{1, 0, 0}, math.Pi*2/3)
	var q [4]float32
	traits.SlerpQuaternion(&qa, &qb, 0.5, &q)
	want := common.QuatFromAxisAngle([3]float32{1, 0, 0}, math.Pi/3)
	if diff := cmp.Diff(want, q, cmpopts.EquateApprox(0, 1e-5)); diff != "" {
		t.Errorf("slerp mismatch (-want +got):\n%s", diff)
	}
}
