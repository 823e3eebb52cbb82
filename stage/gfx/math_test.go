package gfx

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertVec(t *testing.T, want, got Vec3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-4, "x")
	assert.InDelta(t, want.Y, got.Y, 1e-4, "y")
	assert.InDelta(t, want.Z, got.Z, 1e-4, "z")
}

func TestMat4MulIdentity(t *testing.T) {
	a := Mat4Identity()
	b := Mat4Translate(V3(1, 2, 3))
	require.Equal(t, b, Mat4Mul(a, b), "identity*a")
	require.Equal(t, b, Mat4Mul(b, a), "a*identity")
}

func TestLookAtNotIdentity(t *testing.T) {
	m := Mat4LookAt(V3(0, 0, 3), V3(0, 0, 0), V3(0, 1, 0))
	assert.NotEqual(t, Mat4Identity(), m)
}

func TestLookAtMapsTargetOntoNegativeZ(t *testing.T) {
	m := Mat4LookAt(V3(3, 4, 5), V3(0, 0, 0), V3(0, 1, 0))
	p := Mat4MulPoint(m, V3(0, 0, 0))
	assertVec(t, V3(0, 0, -Len(V3(3, 4, 5))), p)
}

func TestLookAtAlongUpStaysFinite(t *testing.T) {
	m := Mat4LookAt(V3(0, 5, 0), V3(0, 0, 0), V3(0, 1, 0))
	for i, v := range m {
		require.False(t, math32.IsNaN(v), "m[%d] is NaN", i)
	}
}

func TestNormalizeZero(t *testing.T) {
	assert.Equal(t, Vec3{}, Normalize(Vec3{}))
	assertVec(t, V3(0, 0, 1), Normalize(V3(0, 0, 10)))
}

func TestEulerRotatesXThenY(t *testing.T) {
	// Rotating +Z by 90° around Y gives +X; X rotation is applied afterwards.
	r := Mat4Euler(V3(0, math32.Pi/2, 0))
	assertVec(t, V3(1, 0, 0), Mat4MulDir(r, V3(0, 0, 1)))

	r = Mat4Euler(V3(math32.Pi/2, 0, 0))
	assertVec(t, V3(0, -1, 0), Mat4MulDir(r, V3(0, 0, 1)))
}

func TestQuatMatchesAxisRotation(t *testing.T) {
	half := math32.Pi / 4 // 90° about Y
	q := Mat4Quat(0, math32.Sin(half), 0, math32.Cos(half))
	want := Mat4RotateY(math32.Pi / 2)
	for i := range q {
		assert.InDelta(t, want[i], q[i], 1e-5, "m[%d]", i)
	}
}

func TestPerspectiveProjectsCenterToOrigin(t *testing.T) {
	p := Mat4Perspective(Radians(75), 2, 0.1, 100)
	v := Mat4MulV4(p, Vec4{X: 0, Y: 0, Z: -10, W: 1})
	require.Greater(t, v.W, float32(0))
	assert.InDelta(t, 0, v.X/v.W, 1e-6)
	assert.InDelta(t, 0, v.Y/v.W, 1e-6)
}

func TestRadiansDegreesRoundTrip(t *testing.T) {
	assert.InDelta(t, math32.Pi, Radians(180), 1e-6)
	assert.InDelta(t, 75, Degrees(Radians(75)), 1e-4)
}
