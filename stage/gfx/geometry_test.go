package gfx

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkIndices(t *testing.T, m Mesh) {
	t.Helper()
	require.Zero(t, len(m.Indices)%3, "triangle list")
	for i, idx := range m.Indices {
		require.Less(t, int(idx), len(m.Vertices), "index %d out of range", i)
	}
}

func TestBoxGeometry(t *testing.T) {
	m := Box(1, 2, 3)
	assert.Len(t, m.Vertices, 24)
	assert.Len(t, m.Indices, 36)
	checkIndices(t, m)

	b := m.LocalBounds()
	assertVec(t, V3(1, 2, 3), b.Size())
	assertVec(t, V3(0, 0, 0), b.Center())
}

func TestBoxFacesPointOutward(t *testing.T) {
	m := Box(1, 1, 1)
	for i := 0; i < len(m.Indices); i += 3 {
		a := m.Vertices[m.Indices[i]]
		b := m.Vertices[m.Indices[i+1]]
		c := m.Vertices[m.Indices[i+2]]
		n := triangleNormal(a.Pos, b.Pos, c.Pos)
		assert.InDelta(t, 1, Dot(n, a.Normal), 1e-5, "triangle %d", i/3)
	}
}

func TestSphereGeometry(t *testing.T) {
	m := Sphere(5, 32, 16)
	assert.Len(t, m.Vertices, 33*17)
	checkIndices(t, m)
	for _, v := range m.Vertices {
		assert.InDelta(t, 5, Len(v.Pos), 1e-4)
	}
	assertVec(t, V3(10, 10, 10), m.LocalBounds().Size())
}

func TestPlaneGeometry(t *testing.T) {
	m := Plane(50, 50, 100, 100)
	assert.Len(t, m.Vertices, 101*101)
	assert.Len(t, m.Indices, 100*100*6)
	checkIndices(t, m)
	assertVec(t, V3(50, 50, 0), m.LocalBounds().Size())
}

func TestDisplaceUsesLuminance(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 1))
	img.SetGray(0, 0, color.Gray{Y: 0})
	img.SetGray(1, 0, color.Gray{Y: 255})
	hm := NewTexture(img)

	m := Plane(2, 2, 1, 1)
	Displace(&m, hm, 5)
	for _, v := range m.Vertices {
		if v.UV.X < 0.5 {
			assert.InDelta(t, 0, v.Pos.Z, 1e-5)
		} else {
			assert.InDelta(t, 5, v.Pos.Z, 1e-5)
		}
	}

	Displace(nil, hm, 5)
	before := m.Vertices[0].Pos
	Displace(&m, nil, 5)
	assert.Equal(t, before, m.Vertices[0].Pos)
}

func TestTextureSampleClampsToEdge(t *testing.T) {
	tex := Checker(2, RGB(0, 0, 0), RGB(255, 255, 255))
	assert.Equal(t, tex.Sample(1, 1), tex.Sample(1.5, 3))
	assert.Equal(t, tex.Sample(0, 0.1), tex.Sample(-0.9, 0.1))
	assert.NotEqual(t, tex.Sample(0.1, 0.1), tex.Sample(0.9, 0.1))

	var nilTex *Texture
	assert.Equal(t, RGB(0xFF, 0, 0xFF), nilTex.Sample(0, 0))
}
