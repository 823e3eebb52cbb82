// Package framing positions a perspective camera so that a bounding volume fits on screen.
package framing

import (
	"errors"

	"github.com/chewxy/math32"

	"frost/stage/gfx"
)

var (
	ErrInvalidFOV  = errors.New("framing: field of view must be in (0, 180) degrees")
	ErrInvalidSize = errors.New("framing: size must be finite and positive")
)

// DefaultDirection is used when the camera sits exactly on the box center.
var DefaultDirection = gfx.V3(0, 0, 1)

// degenerateLen is the offset length below which the view direction is undefined.
const degenerateLen = 1e-6

// Framing describes the result of FrameArea.
type Framing struct {
	Distance  float32
	Direction gfx.Vec3
	// Fallback reports that DefaultDirection replaced a degenerate camera offset.
	Fallback bool
}

// Volume is a bounding sphere approximation: center plus the box diagonal length.
type Volume struct {
	Center gfx.Vec3
	Size   float32
}

// VolumeOf derives a Volume from an axis-aligned box. ok is false for an empty box.
func VolumeOf(b gfx.Box3) (v Volume, ok bool) {
	if b.Empty() {
		return Volume{}, false
	}
	return Volume{Center: b.Center(), Size: gfx.Len(b.Size())}, true
}

// FrameArea moves cam along its current viewing axis so that a region of
// sizeToFitOnScreen world units spans the vertical field of view, centered on
// boxCenter. Near and far are derived from boxSize. The camera is only mutated
// on success.
func FrameArea(sizeToFitOnScreen, boxSize float32, boxCenter gfx.Vec3, cam *gfx.Camera) (Framing, error) {
	if cam == nil {
		return Framing{}, errors.New("framing: nil camera")
	}
	if !(cam.FOV > 0 && cam.FOV < 180) {
		return Framing{}, ErrInvalidFOV
	}
	if !positive(sizeToFitOnScreen) || !positive(boxSize) || !boxCenter.Finite() {
		return Framing{}, ErrInvalidSize
	}

	halfFov := gfx.Radians(cam.FOV) * 0.5
	distance := (sizeToFitOnScreen * 0.5) / math32.Tan(halfFov)
	if !positive(distance) {
		return Framing{}, ErrInvalidSize
	}

	f := Framing{Distance: distance}
	off := cam.Position.Sub(boxCenter)
	if l := gfx.Len(off); l < degenerateLen || !off.Finite() {
		f.Direction = DefaultDirection
		f.Fallback = true
	} else {
		f.Direction = off.Mul(1 / l)
	}

	cam.Position = boxCenter.Add(f.Direction.Mul(distance))
	cam.Near = boxSize / 100
	cam.Far = boxSize * 100
	cam.LookAt(boxCenter)
	cam.UpdateProjection()
	return f, nil
}

// FitModel frames a freshly loaded model with some margin and hands the result to
// the orbit controller: the controller orbits the model center and may zoom out to
// ten times the model size.
func FitModel(v Volume, cam *gfx.Camera, controls *gfx.OrbitController) (Framing, error) {
	f, err := FrameArea(v.Size*1.2, v.Size, v.Center, cam)
	if err != nil {
		return Framing{}, err
	}
	if controls != nil {
		controls.MaxDistance = v.Size * 10
		controls.Target = v.Center
		controls.SyncFromCamera(cam)
	}
	return f, nil
}

func positive(v float32) bool {
	return v > 0 && !math32.IsInf(v, 0) && !math32.IsNaN(v)
}
