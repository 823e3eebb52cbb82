package framing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frost/stage/gfx"
)

func demoCamera() gfx.Camera {
	cam := gfx.NewCamera(75, 1, 0.1, 100)
	cam.Position = gfx.V3(0, 0, 10)
	return cam
}

func TestFrameAreaDemoScenario(t *testing.T) {
	cam := demoCamera()
	f, err := FrameArea(12, 10, gfx.V3(0, 0, 0), &cam)
	require.NoError(t, err)

	want := 6 / math.Tan(37.5*math.Pi/180)
	assert.InDelta(t, want, f.Distance, 1e-4)
	assert.InDelta(t, 7.8195, f.Distance, 1e-3)
	assert.Equal(t, gfx.V3(0, 0, 1), f.Direction)
	assert.False(t, f.Fallback)

	assert.InDelta(t, 0, cam.Position.X, 1e-6)
	assert.InDelta(t, 0, cam.Position.Y, 1e-6)
	assert.InDelta(t, want, cam.Position.Z, 1e-4)
	assert.InDelta(t, 0.1, cam.Near, 1e-6)
	assert.InDelta(t, 1000, cam.Far, 1e-3)
	assert.Equal(t, gfx.V3(0, 0, 0), cam.Target)
}

func TestFrameAreaIsIdempotent(t *testing.T) {
	cam := demoCamera()
	cam.Position = gfx.V3(3, -4, 7)
	center := gfx.V3(1, 2, 3)

	first, err := FrameArea(5, 4, center, &cam)
	require.NoError(t, err)
	pos := cam.Position

	second, err := FrameArea(5, 4, center, &cam)
	require.NoError(t, err)
	assert.InDelta(t, first.Distance, second.Distance, 1e-6)
	assert.InDelta(t, pos.X, cam.Position.X, 1e-4)
	assert.InDelta(t, pos.Y, cam.Position.Y, 1e-4)
	assert.InDelta(t, pos.Z, cam.Position.Z, 1e-4)
}

func TestFrameAreaFiniteAcrossFOV(t *testing.T) {
	for _, fov := range []float32{0.01, 1, 30, 75, 120, 179.9} {
		for _, size := range []float32{1e-3, 1, 1e4} {
			cam := demoCamera()
			cam.FOV = fov
			f, err := FrameArea(size, size, gfx.V3(0, 0, 0), &cam)
			require.NoError(t, err, "fov %v size %v", fov, size)
			assert.Greater(t, f.Distance, float32(0))
			assert.True(t, cam.Position.Finite())
			assert.Less(t, cam.Near, cam.Far)
		}
	}
}

func TestFrameAreaRejectsInvalidInput(t *testing.T) {
	inf := float32(math.Inf(1))
	cases := []struct {
		name string
		fov  float32
		fit  float32
		size float32
		err  error
	}{
		{"zero fov", 0, 1, 1, ErrInvalidFOV},
		{"negative fov", -10, 1, 1, ErrInvalidFOV},
		{"straight fov", 180, 1, 1, ErrInvalidFOV},
		{"nan fov", float32(math.NaN()), 1, 1, ErrInvalidFOV},
		{"zero fit", 75, 0, 1, ErrInvalidSize},
		{"zero box", 75, 1, 0, ErrInvalidSize},
		{"infinite box", 75, 1, inf, ErrInvalidSize},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cam := demoCamera()
			cam.FOV = tc.fov
			before := cam
			_, err := FrameArea(tc.fit, tc.size, gfx.V3(0, 0, 0), &cam)
			assert.ErrorIs(t, err, tc.err)
			assert.Equal(t, before.Position, cam.Position)
			assert.Equal(t, before.Near, cam.Near)
			assert.Equal(t, before.Far, cam.Far)
		})
	}
}

func TestFrameAreaDegenerateFallsBack(t *testing.T) {
	cam := demoCamera()
	center := gfx.V3(2, 2, 2)
	cam.Position = center

	f, err := FrameArea(2, 2, center, &cam)
	require.NoError(t, err)
	assert.True(t, f.Fallback)
	assert.Equal(t, DefaultDirection, f.Direction)
	assert.True(t, cam.Position.Finite())
	assert.InDelta(t, center.Z+f.Distance, cam.Position.Z, 1e-5)
}

func TestVolumeOf(t *testing.T) {
	_, ok := VolumeOf(gfx.EmptyBox())
	assert.False(t, ok)

	v, ok := VolumeOf(gfx.Box3{Min: gfx.V3(-1, -2, -2), Max: gfx.V3(1, 2, 2)})
	require.True(t, ok)
	assert.Equal(t, gfx.V3(0, 0, 0), v.Center)
	assert.InDelta(t, 6, v.Size, 1e-5)
}

func TestFitModelHandsOffToControls(t *testing.T) {
	cam := demoCamera()
	controls := gfx.OrbitController{Radius: 10}
	v := Volume{Center: gfx.V3(0, 1, 0), Size: 4}

	f, err := FitModel(v, &cam, &controls)
	require.NoError(t, err)
	assert.InDelta(t, 2.4/math.Tan(37.5*math.Pi/180), f.Distance, 1e-4)
	assert.Equal(t, float32(40), controls.MaxDistance)
	assert.Equal(t, v.Center, controls.Target)
	assert.InDelta(t, f.Distance, controls.Radius, 1e-4)

	// Controls must reproduce the framed camera on the next update.
	pos := cam.Position
	controls.Update(&cam)
	assert.InDelta(t, pos.X, cam.Position.X, 1e-4)
	assert.InDelta(t, pos.Y, cam.Position.Y, 1e-4)
	assert.InDelta(t, pos.Z, cam.Position.Z, 1e-4)
}
