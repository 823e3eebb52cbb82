package gfx

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyBox(t *testing.T) {
	b := EmptyBox()
	require.True(t, b.Empty())
	assert.Equal(t, Vec3{}, b.Size())
	assert.Equal(t, Vec3{}, b.Center())

	b = b.ExpandByPoint(V3(1, 2, 3))
	require.False(t, b.Empty())
	assert.Equal(t, Vec3{}, b.Size())
	assert.Equal(t, V3(1, 2, 3), b.Center())
}

func TestBoxUnionAndTransform(t *testing.T) {
	a := EmptyBox().ExpandByPoint(V3(-1, -1, -1)).ExpandByPoint(V3(1, 1, 1))
	b := EmptyBox().ExpandByPoint(V3(2, 0, 0))
	u := a.Union(b).Union(EmptyBox())
	assert.Equal(t, V3(3, 2, 2), u.Size())

	moved := a.Transform(Mat4Translate(V3(10, 0, 0)))
	assertVec(t, V3(10, 0, 0), moved.Center())
	assertVec(t, V3(2, 2, 2), moved.Size())
}

func TestSceneAddRemove(t *testing.T) {
	s := CreateScene(2)
	a := s.AddMesh(Box(1, 1, 1))
	b := s.AddMesh(Box(1, 1, 1))
	require.Equal(t, 0, a)
	require.Equal(t, 1, b)
	assert.Equal(t, -1, s.AddMesh(Box(1, 1, 1)), "scene full")
	assert.Equal(t, 2, s.Len())

	s.RemoveMesh(a)
	assert.Nil(t, s.Mesh(a))
	assert.Equal(t, 0, s.AddMesh(Box(1, 1, 1)), "slot reused")
}

func TestSceneDefaultsScaleAndColor(t *testing.T) {
	s := CreateScene(1)
	id := s.AddMesh(Mesh{})
	m := s.Mesh(id)
	require.NotNil(t, m)
	assert.Equal(t, V3(1, 1, 1), m.Scale)
	assert.Equal(t, uint8(0xFF), m.Material.Opacity)
}

func TestSetRotationXYKeepsZ(t *testing.T) {
	s := CreateScene(1)
	id := s.AddMesh(Mesh{Rotation: V3(0, 0, 0.5)})
	s.SetRotationXY(id, 1, 2)
	assert.Equal(t, V3(1, 2, 0.5), s.Mesh(id).Rotation)

	// Unknown ids are ignored.
	s.SetRotationXY(7, 1, 2)
}

func TestSceneBoundsFollowsTransform(t *testing.T) {
	s := CreateScene(2)
	m := Box(2, 2, 2)
	m.Position = V3(5, 0, 0)
	a := s.AddMesh(m)
	m = Box(2, 2, 2)
	m.Position = V3(-5, 0, 0)
	b := s.AddMesh(m)

	box := s.Bounds(a, b)
	assertVec(t, V3(0, 0, 0), box.Center())
	assertVec(t, V3(12, 2, 2), box.Size())

	s.Mesh(a).Rotation = V3(0, math32.Pi/4, 0)
	rotated := s.Bounds(a)
	assert.Greater(t, rotated.Size().X, float32(2.5))
}

func TestShadeBasicIgnoresLight(t *testing.T) {
	mat := Material{Shading: ShadeBasic, BaseColor: RGB(10, 20, 30)}
	got := shade(mat, Light{Intensity: 3, Position: V3(0, 0, 1)}, V3(0, 0, -1), V3(0, 0, 1), mat.BaseColor)
	assert.Equal(t, RGB(10, 20, 30), got)
}

func TestShadeLambertFacesLight(t *testing.T) {
	mat := Material{Shading: ShadeLambert, BaseColor: RGB(200, 200, 200)}
	l := Light{Color: RGB(0xFF, 0xFF, 0xFF), Intensity: 3, Position: V3(0, 0, 1), Ambient: 0.1}
	lit := shade(mat, l, V3(0, 0, 1), V3(0, 0, 1), mat.BaseColor)
	dark := shade(mat, l, V3(0, 0, -1), V3(0, 0, 1), mat.BaseColor)
	assert.Greater(t, lit.R, dark.R)
	assert.Equal(t, uint8(200), lit.R)
}

func TestShadeToonBands(t *testing.T) {
	mat := Material{Shading: ShadeToon, BaseColor: RGB(0, 255, 0)}
	l := Light{Intensity: 3, Position: V3(0, 0, 1)}
	a := shade(mat, l, Normalize(V3(0, 0.1, 1)), V3(0, 0, 1), mat.BaseColor)
	b := shade(mat, l, Normalize(V3(0, 0.2, 1)), V3(0, 0, 1), mat.BaseColor)
	assert.Equal(t, a, b, "nearby normals fall into the same band")
}

func TestShadePhongAddsHighlight(t *testing.T) {
	l := Light{Color: RGB(0xFF, 0xFF, 0xFF), Intensity: 2, Position: V3(0, 0, 1), Ambient: 0.1}
	lambert := Material{Shading: ShadeLambert, BaseColor: RGB(100, 100, 100)}
	phong := Material{Shading: ShadePhong, BaseColor: RGB(100, 100, 100), Specular: RGB(0x80, 0x80, 0x80)}
	n := V3(0, 0, 1)

	diffuse := shade(lambert, l, n, n, lambert.BaseColor)
	facing := shade(phong, l, n, n, phong.BaseColor)
	assert.Greater(t, facing.R, diffuse.R, "highlight when the eye mirrors the light")

	away := shade(phong, l, n, Normalize(V3(1, 0, -1)), phong.BaseColor)
	assert.Equal(t, diffuse, away, "no highlight facing away from the half vector")

	unlit := shade(phong, l, V3(0, 0, -1), n, phong.BaseColor)
	assert.Equal(t, shade(lambert, l, V3(0, 0, -1), n, lambert.BaseColor), unlit)
}
