package gfx

import "github.com/chewxy/math32"

// Shading selects how a material reacts to light.
type Shading uint8

const (
	// ShadeBasic ignores lights.
	ShadeBasic Shading = iota
	// ShadeLambert is ambient plus diffuse lighting.
	ShadeLambert
	// ShadeToon quantizes diffuse lighting into a few bands.
	ShadeToon
	// ShadeNormal colors each face by its world-space normal.
	ShadeNormal
	// ShadePhong is Lambert plus a Blinn-Phong specular highlight.
	ShadePhong
)

// Phong defaults when a material leaves Specular or Shininess unset.
const defaultShininess = 30

var defaultSpecular = RGB(0x11, 0x11, 0x11)

// Material is a minimal surface description.
type Material struct {
	Shading   Shading
	BaseColor Color
	Map       *Texture // optional; multiplied with BaseColor
	Opacity   uint8    // 0..255. 255 means opaque.

	// Phong only.
	Specular  Color
	Shininess Scalar
}

// Light is a directional light shining from Position towards the origin.
//
// An Intensity of 3 lights a surface facing the light fully.
type Light struct {
	Color     Color
	Intensity Scalar
	Position  Vec3
	Ambient   Scalar // 0..1
}

// Vertex is a mesh vertex.
type Vertex struct {
	Pos    Vec3
	Normal Vec3
	UV     Vec2
	Color  Color
}

// Mesh is a triangle mesh with an object transform.
type Mesh struct {
	Name    string
	Visible bool

	Vertices []Vertex
	Indices  []uint32 // triangle list

	Position Vec3
	Rotation Vec3 // Euler angles in radians, XYZ order
	Scale    Vec3

	Material Material
}

// Matrix returns the object-to-world transform.
func (m *Mesh) Matrix() Mat4 {
	s := m.Scale
	if s == (Vec3{}) {
		s = V3(1, 1, 1)
	}
	return Mat4Compose(m.Position, m.Rotation, s)
}

// LocalBounds returns the object-space bounding box.
func (m *Mesh) LocalBounds() Box3 {
	b := EmptyBox()
	for i := range m.Vertices {
		b = b.ExpandByPoint(m.Vertices[i].Pos)
	}
	return b
}

// Scene is a collection of meshes plus lighting and background.
type Scene struct {
	Light Light

	Background    Color
	BackgroundMap *Texture // equirectangular; drawn behind everything when set

	meshes []Mesh
	alive  []bool
}

// CreateScene allocates a scene with a fixed mesh capacity.
func CreateScene(maxMeshes int) *Scene {
	if maxMeshes < 0 {
		maxMeshes = 0
	}
	return &Scene{
		Light: Light{
			Color:     RGB(0xFF, 0xFF, 0xFF),
			Intensity: 1,
			Position:  V3(1, 1, 1),
			Ambient:   0.2,
		},
		Background: RGB(0, 0, 0),
		meshes:     make([]Mesh, maxMeshes),
		alive:      make([]bool, maxMeshes),
	}
}

// AddMesh adds a mesh to the scene and returns its id or -1 if full.
//
// Visibility is taken from m; zero scale becomes unit scale.
func (s *Scene) AddMesh(m Mesh) int {
	if s == nil {
		return -1
	}
	for i := range s.meshes {
		if s.alive[i] {
			continue
		}
		if m.Scale == (Vec3{}) {
			m.Scale = V3(1, 1, 1)
		}
		if m.Material.Opacity == 0 {
			m.Material.Opacity = 0xFF
		}
		if m.Material.BaseColor == (Color{}) {
			m.Material.BaseColor = RGB(0xFF, 0xFF, 0xFF)
		}
		s.meshes[i] = m
		s.alive[i] = true
		return i
	}
	return -1
}

// RemoveMesh removes a mesh by id.
func (s *Scene) RemoveMesh(id int) {
	if !s.valid(id) {
		return
	}
	s.alive[id] = false
	s.meshes[id] = Mesh{}
}

// Mesh returns the mesh for id so callers can edit it in place, or nil.
func (s *Scene) Mesh(id int) *Mesh {
	if !s.valid(id) {
		return nil
	}
	return &s.meshes[id]
}

// Len returns the number of live meshes.
func (s *Scene) Len() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, a := range s.alive {
		if a {
			n++
		}
	}
	return n
}

// SetVisible shows or hides a mesh by id.
func (s *Scene) SetVisible(id int, visible bool) {
	if !s.valid(id) {
		return
	}
	s.meshes[id].Visible = visible
}

// SetRotationXY sets the X and Y Euler angles of a mesh, leaving Z untouched.
func (s *Scene) SetRotationXY(id int, x, y Scalar) {
	if !s.valid(id) {
		return
	}
	s.meshes[id].Rotation.X = x
	s.meshes[id].Rotation.Y = y
}

// SetMap replaces a mesh's texture.
func (s *Scene) SetMap(id int, t *Texture) {
	if !s.valid(id) {
		return
	}
	s.meshes[id].Material.Map = t
}

// Bounds returns the world-space box enclosing the given meshes.
func (s *Scene) Bounds(ids ...int) Box3 {
	b := EmptyBox()
	for _, id := range ids {
		if !s.valid(id) {
			continue
		}
		m := &s.meshes[id]
		b = b.Union(m.LocalBounds().Transform(m.Matrix()))
	}
	return b
}

func (s *Scene) valid(id int) bool {
	return s != nil && id >= 0 && id < len(s.meshes) && s.alive[id]
}

func (s *Scene) eachMesh(fn func(m *Mesh)) {
	for i := range s.meshes {
		if !s.alive[i] {
			continue
		}
		fn(&s.meshes[i])
	}
}

// shade returns the lit color of a face with world normal n. toEye is the unit
// direction from the face to the camera.
func shade(mat Material, l Light, n, toEye Vec3, base Color) Color {
	switch mat.Shading {
	case ShadeBasic:
		return base
	case ShadeNormal:
		return RGB(
			uint8((n.X*0.5+0.5)*255),
			uint8((n.Y*0.5+0.5)*255),
			uint8((n.Z*0.5+0.5)*255),
		)
	}

	toLight := Normalize(l.Position)
	d := Dot(n, toLight)
	if d < 0 {
		d = 0
	}
	if mat.Shading == ShadeToon {
		// Three bands: shadow, mid, lit.
		switch {
		case d > 0.6:
			d = 1
		case d > 0.2:
			d = 0.6
		default:
			d = 0.25
		}
	}
	k := Clamp01(Clamp01(l.Ambient) + d*l.Intensity/3)
	lc := l.Color
	if lc == (Color{}) {
		lc = RGB(0xFF, 0xFF, 0xFF)
	}
	c := base.Modulate(lc).MulScalar(k)
	if mat.Shading != ShadePhong || d == 0 {
		return c
	}

	spec, shininess := mat.Specular, mat.Shininess
	if spec == (Color{}) {
		spec = defaultSpecular
	}
	if shininess <= 0 {
		shininess = defaultShininess
	}
	half := Normalize(toLight.Add(toEye))
	s := Dot(n, half)
	if s <= 0 {
		return c
	}
	hl := spec.Modulate(lc).MulScalar(math32.Pow(s, shininess) * l.Intensity / 3)
	return c.addSat(hl)
}

// equirect maps a unit direction to equirectangular texture coordinates.
func equirect(dir Vec3) (u, v Scalar) {
	u = 0.5 + math32.Atan2(dir.X, -dir.Z)/(2*math32.Pi)
	v = 0.5 + math32.Asin(clampF32(dir.Y, -1, 1))/math32.Pi
	return u, v
}
