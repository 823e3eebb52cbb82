package gfx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrbitUpdateDefaultLooksDownZ(t *testing.T) {
	var cam Camera
	c := OrbitController{Radius: 10}
	c.Update(&cam)
	assertVec(t, V3(0, 0, 10), cam.Position)
	assert.Equal(t, V3(0, 0, 0), cam.Target)
	assert.Equal(t, V3(0, 1, 0), cam.Up)
}

func TestOrbitSyncRoundTrip(t *testing.T) {
	cam := Camera{Position: V3(3, 4, 5), Up: V3(0, 1, 0)}
	c := OrbitController{Target: V3(1, 1, 1)}
	c.SyncFromCamera(&cam)
	assert.InDelta(t, Len(V3(2, 3, 4)), c.Radius, 1e-5)

	var moved Camera
	c.Update(&moved)
	assertVec(t, V3(3, 4, 5), moved.Position)
	assert.Equal(t, V3(1, 1, 1), moved.Target)
}

func TestOrbitZoomClamps(t *testing.T) {
	c := OrbitController{Radius: 5, MinDistance: 2, MaxDistance: 8}
	c.Zoom(10)
	assert.Equal(t, Scalar(8), c.Radius)
	c.Zoom(-100)
	assert.Equal(t, Scalar(2), c.Radius)
}

func TestOrbitPitchClamps(t *testing.T) {
	c := OrbitController{Radius: 5}
	c.Rotate(0, 10)
	assert.Equal(t, Scalar(maxPitch), c.Pitch)
	var cam Camera
	c.Update(&cam)
	assert.True(t, cam.Position.Finite())
}

func TestOrbitPanMovesTarget(t *testing.T) {
	cam := Camera{Position: V3(0, 0, 5), Up: V3(0, 1, 0)}
	c := OrbitController{}
	c.Pan(&cam, 1, 2)
	assertVec(t, V3(1, 2, 0), c.Target)
}
