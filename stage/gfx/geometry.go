package gfx

import "github.com/chewxy/math32"

// Box builds an axis-aligned box centered on the origin.
//
// Each face has its own four vertices so normals and UVs stay flat.
func Box(w, h, d Scalar) Mesh {
	hx, hy, hz := w/2, h/2, d/2
	type face struct {
		n      Vec3
		u, v   Vec3 // in-plane axes spanning the face
		center Vec3
	}
	faces := [6]face{
		{n: V3(1, 0, 0), u: V3(0, 0, -hz), v: V3(0, hy, 0), center: V3(hx, 0, 0)},
		{n: V3(-1, 0, 0), u: V3(0, 0, hz), v: V3(0, hy, 0), center: V3(-hx, 0, 0)},
		{n: V3(0, 1, 0), u: V3(hx, 0, 0), v: V3(0, 0, -hz), center: V3(0, hy, 0)},
		{n: V3(0, -1, 0), u: V3(hx, 0, 0), v: V3(0, 0, hz), center: V3(0, -hy, 0)},
		{n: V3(0, 0, 1), u: V3(hx, 0, 0), v: V3(0, hy, 0), center: V3(0, 0, hz)},
		{n: V3(0, 0, -1), u: V3(-hx, 0, 0), v: V3(0, hy, 0), center: V3(0, 0, -hz)},
	}

	verts := make([]Vertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, f := range faces {
		base := uint32(len(verts))
		corners := [4]struct{ su, sv Scalar }{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
		for _, c := range corners {
			verts = append(verts, Vertex{
				Pos:    f.center.Add(f.u.Mul(c.su)).Add(f.v.Mul(c.sv)),
				Normal: f.n,
				UV:     V2((c.su+1)/2, (c.sv+1)/2),
			})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return Mesh{Name: "box", Visible: true, Vertices: verts, Indices: indices}
}

// Sphere builds a UV sphere centered on the origin.
func Sphere(radius Scalar, widthSegments, heightSegments int) Mesh {
	if widthSegments < 3 {
		widthSegments = 3
	}
	if heightSegments < 2 {
		heightSegments = 2
	}

	verts := make([]Vertex, 0, (widthSegments+1)*(heightSegments+1))
	for iy := 0; iy <= heightSegments; iy++ {
		v := Scalar(iy) / Scalar(heightSegments)
		theta := v * math32.Pi
		for ix := 0; ix <= widthSegments; ix++ {
			u := Scalar(ix) / Scalar(widthSegments)
			phi := u * 2 * math32.Pi
			n := V3(
				-math32.Cos(phi)*math32.Sin(theta),
				math32.Cos(theta),
				math32.Sin(phi)*math32.Sin(theta),
			)
			verts = append(verts, Vertex{
				Pos:    n.Mul(radius),
				Normal: n,
				UV:     V2(u, 1-v),
			})
		}
	}

	row := uint32(widthSegments + 1)
	indices := make([]uint32, 0, widthSegments*heightSegments*6)
	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := uint32(iy)*row + uint32(ix) + 1
			b := uint32(iy)*row + uint32(ix)
			c := uint32(iy+1)*row + uint32(ix)
			d := uint32(iy+1)*row + uint32(ix) + 1
			if iy != 0 {
				indices = append(indices, a, b, d)
			}
			if iy != heightSegments-1 {
				indices = append(indices, b, c, d)
			}
		}
	}
	return Mesh{Name: "sphere", Visible: true, Vertices: verts, Indices: indices}
}

// Plane builds a w×h plane in the XY plane facing +Z.
func Plane(w, h Scalar, widthSegments, heightSegments int) Mesh {
	if widthSegments < 1 {
		widthSegments = 1
	}
	if heightSegments < 1 {
		heightSegments = 1
	}

	gx, gy := widthSegments+1, heightSegments+1
	verts := make([]Vertex, 0, gx*gy)
	for iy := 0; iy < gy; iy++ {
		v := Scalar(iy) / Scalar(heightSegments)
		for ix := 0; ix < gx; ix++ {
			u := Scalar(ix) / Scalar(widthSegments)
			verts = append(verts, Vertex{
				Pos:    V3(u*w-w/2, h/2-v*h, 0),
				Normal: V3(0, 0, 1),
				UV:     V2(u, 1-v),
			})
		}
	}

	indices := make([]uint32, 0, widthSegments*heightSegments*6)
	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := uint32(ix + gx*iy)
			b := uint32(ix + gx*(iy+1))
			c := uint32(ix + 1 + gx*(iy+1))
			d := uint32(ix + 1 + gx*iy)
			indices = append(indices, a, b, d, b, c, d)
		}
	}
	return Mesh{Name: "plane", Visible: true, Vertices: verts, Indices: indices}
}

// Displace moves every vertex along its normal by the height map luminance times scale.
func Displace(m *Mesh, heightMap *Texture, scale Scalar) {
	if m == nil || heightMap == nil || scale == 0 {
		return
	}
	for i := range m.Vertices {
		v := &m.Vertices[i]
		h := heightMap.Luminance(v.UV.X, v.UV.Y)
		v.Pos = v.Pos.Add(Normalize(v.Normal).Mul(h * scale))
	}
}
