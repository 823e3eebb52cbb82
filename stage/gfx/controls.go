package gfx

import "github.com/chewxy/math32"

// OrbitController orbits, zooms and pans a camera around a target point.
//
// It does not depend on any input system; callers translate their input into
// Rotate, Zoom and Pan calls and then Update the camera.
type OrbitController struct {
	Target Vec3
	Yaw    Scalar
	Pitch  Scalar
	Radius Scalar

	MinDistance Scalar
	MaxDistance Scalar
}

// maxPitch keeps the orbit away from the poles where the view basis degenerates.
const maxPitch = math32.Pi/2 - 0.01

// Update moves cam onto the orbit and points it at the target.
func (c *OrbitController) Update(cam *Camera) {
	if cam == nil {
		return
	}
	c.clamp()
	r := c.Radius
	if r == 0 {
		r = 3
	}

	m := Mat4Mul(Mat4RotateY(c.Yaw), Mat4RotateX(c.Pitch))
	p := Mat4MulV4(m, Vec4{X: 0, Y: 0, Z: r, W: 1})

	cam.Position = c.Target.Add(V3(p.X, p.Y, p.Z))
	cam.LookAt(c.Target)
	if cam.Up == (Vec3{}) {
		cam.Up = V3(0, 1, 0)
	}
}

// SyncFromCamera derives yaw, pitch and radius from the camera's current position
// relative to Target, so a camera moved elsewhere keeps its place on the next Update.
func (c *OrbitController) SyncFromCamera(cam *Camera) {
	if cam == nil {
		return
	}
	off := cam.Position.Sub(c.Target)
	r := Len(off)
	if r == 0 {
		return
	}
	c.Radius = r
	c.Pitch = math32.Asin(clampF32(-off.Y/r, -1, 1))
	c.Yaw = math32.Atan2(off.X, off.Z)
	c.clamp()
}

func (c *OrbitController) Rotate(deltaYaw, deltaPitch Scalar) {
	c.Yaw += deltaYaw
	c.Pitch += deltaPitch
	c.clamp()
}

func (c *OrbitController) Zoom(delta Scalar) {
	c.Radius += delta
	c.clamp()
}

// Pan shifts the target within the camera's screen plane.
func (c *OrbitController) Pan(cam *Camera, dx, dy Scalar) {
	if cam == nil {
		return
	}
	f := cam.Forward()
	up := cam.Up
	if up == (Vec3{}) {
		up = V3(0, 1, 0)
	}
	s := Normalize(Cross(f, up))
	u := Cross(s, f)
	c.Target = c.Target.Add(s.Mul(dx)).Add(u.Mul(dy))
}

func (c *OrbitController) clamp() {
	if c.Pitch > maxPitch {
		c.Pitch = maxPitch
	}
	if c.Pitch < -maxPitch {
		c.Pitch = -maxPitch
	}
	if c.MinDistance != 0 && c.Radius < c.MinDistance {
		c.Radius = c.MinDistance
	}
	if c.MaxDistance != 0 && c.Radius > c.MaxDistance {
		c.Radius = c.MaxDistance
	}
}
