package gfx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCamera() Camera {
	cam := NewCamera(75, 1, 0.1, 100)
	cam.Position = V3(0, 0, 5)
	cam.LookAt(V3(0, 0, 0))
	return cam
}

func TestRenderDrawsCenteredCube(t *testing.T) {
	s := CreateScene(1)
	s.Background = RGB(1, 2, 3)
	m := Box(1, 1, 1)
	m.Material = Material{Shading: ShadeBasic, BaseColor: RGB(0, 255, 0)}
	s.AddMesh(m)

	target := NewImageTarget(64, 64)
	r := NewRenderer(64, 64, true)
	cam := testCamera()
	r.Render(target, s, &cam)

	assert.Equal(t, RGBA(0, 255, 0, 255), target.At(32, 32))
	assert.Equal(t, RGBA(1, 2, 3, 255), target.At(0, 0))
	assert.Equal(t, uint64(1), r.Frames())
}

func TestRenderSkipsHiddenMeshes(t *testing.T) {
	s := CreateScene(1)
	m := Box(1, 1, 1)
	m.Visible = false
	m.Material = Material{Shading: ShadeBasic, BaseColor: RGB(255, 0, 0)}
	s.AddMesh(m)

	target := NewImageTarget(32, 32)
	cam := testCamera()
	NewRenderer(32, 32, true).Render(target, s, &cam)
	assert.Equal(t, RGBA(0, 0, 0, 255), target.At(16, 16))
}

func TestRenderDepthKeepsNearest(t *testing.T) {
	s := CreateScene(2)
	far := Box(2, 2, 2)
	far.Position = V3(0, 0, -3)
	far.Material = Material{Shading: ShadeBasic, BaseColor: RGB(255, 0, 0)}
	near := Box(1, 1, 1)
	near.Material = Material{Shading: ShadeBasic, BaseColor: RGB(0, 0, 255)}
	// Add the near box first so the far one would overwrite it without depth.
	s.AddMesh(near)
	s.AddMesh(far)

	target := NewImageTarget(48, 48)
	cam := testCamera()
	NewRenderer(48, 48, true).Render(target, s, &cam)
	assert.Equal(t, RGBA(0, 0, 255, 255), target.At(24, 24))
}

func TestRenderBehindCameraIsDropped(t *testing.T) {
	s := CreateScene(1)
	m := Box(1, 1, 1)
	m.Position = V3(0, 0, 10)
	m.Material = Material{Shading: ShadeBasic, BaseColor: RGB(255, 255, 255)}
	s.AddMesh(m)

	target := NewImageTarget(32, 32)
	cam := testCamera()
	NewRenderer(32, 32, true).Render(target, s, &cam)
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			require.Equal(t, RGBA(0, 0, 0, 255), target.At(x, y), "pixel %d,%d", x, y)
		}
	}
}

func TestRenderTracksTargetAspect(t *testing.T) {
	s := CreateScene(0)
	target := NewImageTarget(80, 40)
	cam := testCamera()
	NewRenderer(80, 40, false).Render(target, s, &cam)
	assert.Equal(t, Scalar(2), cam.Aspect)
}

func TestRenderTexturedBackground(t *testing.T) {
	s := CreateScene(0)
	s.BackgroundMap = Checker(1, RGB(9, 9, 9), RGB(9, 9, 9))
	target := NewImageTarget(16, 16)
	cam := testCamera()
	NewRenderer(16, 16, false).Render(target, s, &cam)
	assert.Equal(t, RGBA(9, 9, 9, 255), target.At(3, 12))
}

func TestRGB565TargetClipsAndPacks(t *testing.T) {
	tgt := &RGB565Target{Buf: make([]byte, 4*2*2), Stride: 4 * 2, W: 4, H: 2}
	tgt.SetPixel(-1, 0, RGB(255, 255, 255))
	tgt.SetPixel(4, 0, RGB(255, 255, 255))
	for _, b := range tgt.Buf {
		require.Zero(t, b)
	}

	tgt.SetPixel(1, 1, RGB(255, 0, 0))
	off := 1*tgt.Stride + 2
	assert.Equal(t, uint16(0xF800), uint16(tgt.Buf[off])|uint16(tgt.Buf[off+1])<<8)
}
