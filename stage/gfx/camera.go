package gfx

// Camera is a perspective camera.
//
// FOV is the vertical field of view in degrees. The projection matrix is cached;
// call UpdateProjection after changing FOV, Near, Far or Aspect.
type Camera struct {
	Position Vec3
	Target   Vec3
	Up       Vec3

	FOV    Scalar
	Aspect Scalar
	Near   Scalar
	Far    Scalar

	proj      Mat4
	projValid bool
}

// NewCamera returns a camera at the origin looking down -Z.
func NewCamera(fov, aspect, near, far Scalar) Camera {
	c := Camera{
		Target: V3(0, 0, -1),
		Up:     V3(0, 1, 0),
		FOV:    fov,
		Aspect: aspect,
		Near:   near,
		Far:    far,
	}
	c.UpdateProjection()
	return c
}

// LookAt points the camera at p.
func (c *Camera) LookAt(p Vec3) { c.Target = p }

// View returns the camera view matrix.
func (c *Camera) View() Mat4 {
	up := c.Up
	if up == (Vec3{}) {
		up = V3(0, 1, 0)
	}
	return Mat4LookAt(c.Position, c.Target, up)
}

// UpdateProjection recomputes the cached projection matrix.
func (c *Camera) UpdateProjection() {
	fov := c.FOV
	if fov <= 0 || fov >= 180 {
		fov = 50
	}
	c.proj = Mat4Perspective(Radians(fov), c.Aspect, c.Near, c.Far)
	c.projValid = true
}

// Projection returns the cached projection matrix.
func (c *Camera) Projection() Mat4 {
	if !c.projValid {
		c.UpdateProjection()
	}
	return c.proj
}

// SetAspect changes the aspect ratio and refreshes the projection if it differs.
func (c *Camera) SetAspect(aspect Scalar) {
	if aspect == c.Aspect && c.projValid {
		return
	}
	c.Aspect = aspect
	c.UpdateProjection()
}

// Forward returns the unit view direction.
func (c *Camera) Forward() Vec3 {
	return Normalize(c.Target.Sub(c.Position))
}
