package gfx

import "github.com/chewxy/math32"

// RenderMode selects the rasterization mode.
type RenderMode uint8

const (
	RenderWireframe RenderMode = iota
	RenderSolidFlat
	RenderSolidVertexColor
)

// Renderer is a fixed-pipeline software renderer.
//
// Create it once and reuse it to avoid allocations.
type Renderer struct {
	Mode       RenderMode
	Depth      bool
	ClearColor Color

	depthBuf []float32
	frames   uint64
}

// NewRenderer creates a renderer for a given maximum target size.
//
// If enableDepth is true, a depth buffer of size w*h is allocated.
func NewRenderer(w, h int, enableDepth bool) *Renderer {
	r := &Renderer{
		Mode:       RenderSolidFlat,
		Depth:      enableDepth,
		ClearColor: RGB(0, 0, 0),
	}
	if enableDepth && w > 0 && h > 0 {
		r.depthBuf = make([]float32, w*h)
	}
	return r
}

func (r *Renderer) SetRenderMode(m RenderMode) { r.Mode = m }

// Frames returns the number of completed Render calls.
func (r *Renderer) Frames() uint64 { return r.frames }

func (r *Renderer) EnableDepth(on bool, w, h int) {
	r.Depth = on
	if !on {
		r.depthBuf = nil
		return
	}
	if w <= 0 || h <= 0 {
		r.depthBuf = nil
		return
	}
	if cap(r.depthBuf) < w*h {
		r.depthBuf = make([]float32, w*h)
	} else {
		r.depthBuf = r.depthBuf[:w*h]
	}
}

func (r *Renderer) clearDepth() {
	for i := range r.depthBuf {
		r.depthBuf[i] = 1e9
	}
}

// Render draws the scene as seen by cam into the target.
//
// The camera aspect follows the target size.
func (r *Renderer) Render(t Target, s *Scene, cam *Camera) {
	if r == nil || t == nil || s == nil || cam == nil {
		return
	}
	w, h := t.Size()
	if w <= 0 || h <= 0 {
		return
	}

	clear := r.ClearColor
	if s.Background != (Color{}) {
		clear = s.Background
	}
	t.Clear(clear)

	if r.Depth {
		r.EnableDepth(true, w, h)
		r.clearDepth()
	}

	cam.SetAspect(Scalar(w) / Scalar(h))
	if s.BackgroundMap != nil {
		r.drawBackground(t, w, h, s.BackgroundMap, cam)
	}

	view := cam.View()
	proj := cam.Projection()
	viewProj := Mat4Mul(proj, view)

	s.eachMesh(func(m *Mesh) {
		if m == nil || !m.Visible {
			return
		}
		r.renderMesh(t, w, h, viewProj, m, s.Light, cam.Position)
	})
	r.frames++
}

func (r *Renderer) renderMesh(t Target, w, h int, viewProj Mat4, m *Mesh, light Light, eye Vec3) {
	if len(m.Vertices) == 0 || len(m.Indices) < 3 {
		return
	}

	model := m.Matrix()
	mvp := Mat4Mul(viewProj, model)
	mat := m.Material

	for i := 0; i+2 < len(m.Indices); i += 3 {
		i0 := int(m.Indices[i+0])
		i1 := int(m.Indices[i+1])
		i2 := int(m.Indices[i+2])
		if i0 >= len(m.Vertices) || i1 >= len(m.Vertices) || i2 >= len(m.Vertices) {
			continue
		}

		v0 := &m.Vertices[i0]
		v1 := &m.Vertices[i1]
		v2 := &m.Vertices[i2]

		p0 := Mat4MulV4(mvp, Vec4{X: v0.Pos.X, Y: v0.Pos.Y, Z: v0.Pos.Z, W: 1})
		p1 := Mat4MulV4(mvp, Vec4{X: v1.Pos.X, Y: v1.Pos.Y, Z: v1.Pos.Z, W: 1})
		p2 := Mat4MulV4(mvp, Vec4{X: v2.Pos.X, Y: v2.Pos.Y, Z: v2.Pos.Z, W: 1})

		// Trivial clip: drop triangles touching the camera plane or behind it.
		if p0.W <= 0 || p1.W <= 0 || p2.W <= 0 {
			continue
		}

		ndc0, ok0 := clipToNDC(p0)
		ndc1, ok1 := clipToNDC(p1)
		ndc2, ok2 := clipToNDC(p2)
		if !ok0 || !ok1 || !ok2 {
			continue
		}
		if outside(ndc0, ndc1, ndc2) {
			continue
		}

		x0, y0 := ndcToScreen(ndc0, w, h)
		x1, y1 := ndcToScreen(ndc1, w, h)
		x2, y2 := ndcToScreen(ndc2, w, h)

		w0 := Mat4MulPoint(model, v0.Pos)
		w1 := Mat4MulPoint(model, v1.Pos)
		w2 := Mat4MulPoint(model, v2.Pos)
		n := triangleNormal(w0, w1, w2)
		toEye := Normalize(eye.Sub(w0.Add(w1).Add(w2).Mul(1.0 / 3)))

		switch {
		case r.Mode == RenderWireframe:
			c := shade(mat, light, n, toEye, mat.BaseColor)
			r.drawLine(t, x0, y0, x1, y1, c)
			r.drawLine(t, x1, y1, x2, y2, c)
			r.drawLine(t, x2, y2, x0, y0, c)
		case mat.Map != nil:
			c0 := shade(mat, light, n, toEye, mat.BaseColor.Modulate(mat.Map.Sample(v0.UV.X, v0.UV.Y)))
			c1 := shade(mat, light, n, toEye, mat.BaseColor.Modulate(mat.Map.Sample(v1.UV.X, v1.UV.Y)))
			c2 := shade(mat, light, n, toEye, mat.BaseColor.Modulate(mat.Map.Sample(v2.UV.X, v2.UV.Y)))
			r.fillTriangle(t, w, h, x0, y0, ndc0.Z, c0, x1, y1, ndc1.Z, c1, x2, y2, ndc2.Z, c2)
		case r.Mode == RenderSolidVertexColor:
			r.fillTriangle(t, w, h, x0, y0, ndc0.Z, v0.Color, x1, y1, ndc1.Z, v1.Color, x2, y2, ndc2.Z, v2.Color)
		default:
			c := shade(mat, light, n, toEye, mat.BaseColor)
			r.fillTriangleFlat(t, w, h, x0, y0, ndc0.Z, x1, y1, ndc1.Z, x2, y2, ndc2.Z, c)
		}
	}
}

// drawBackground paints an equirectangular map by casting one view ray per pixel.
func (r *Renderer) drawBackground(t Target, w, h int, tex *Texture, cam *Camera) {
	f := cam.Forward()
	up := cam.Up
	if up == (Vec3{}) {
		up = V3(0, 1, 0)
	}
	s := Normalize(Cross(f, up))
	if s == (Vec3{}) {
		s = V3(1, 0, 0)
	}
	u := Cross(s, f)
	tanHalf := math32.Tan(Radians(cam.FOV) / 2)
	aspect := Scalar(w) / Scalar(h)

	for y := 0; y < h; y++ {
		ny := (1 - 2*(Scalar(y)+0.5)/Scalar(h)) * tanHalf
		for x := 0; x < w; x++ {
			nx := (2*(Scalar(x)+0.5)/Scalar(w) - 1) * tanHalf * aspect
			dir := Normalize(f.Add(s.Mul(nx)).Add(u.Mul(ny)))
			tu, tv := equirect(dir)
			t.SetPixel(x, y, tex.Sample(tu, tv))
		}
	}
}

type ndcPoint struct {
	X, Y, Z float32
}

// ndcLimit bounds projected coordinates so screen-space integer math cannot overflow.
const ndcLimit = 64

func clipToNDC(p Vec4) (ndcPoint, bool) {
	if p.W == 0 {
		return ndcPoint{}, false
	}
	invW := 1 / p.W
	n := ndcPoint{X: p.X * invW, Y: p.Y * invW, Z: p.Z * invW}
	if !finite(n.X) || !finite(n.Y) || !finite(n.Z) {
		return ndcPoint{}, false
	}
	if n.X < -ndcLimit || n.X > ndcLimit || n.Y < -ndcLimit || n.Y > ndcLimit {
		return ndcPoint{}, false
	}
	return n, true
}

// outside reports whether all three points lie beyond the same clip plane.
func outside(a, b, c ndcPoint) bool {
	switch {
	case a.X < -1 && b.X < -1 && c.X < -1:
		return true
	case a.X > 1 && b.X > 1 && c.X > 1:
		return true
	case a.Y < -1 && b.Y < -1 && c.Y < -1:
		return true
	case a.Y > 1 && b.Y > 1 && c.Y > 1:
		return true
	case a.Z > 1 && b.Z > 1 && c.Z > 1:
		return true
	}
	return false
}

func ndcToScreen(p ndcPoint, w, h int) (x, y int) {
	sx := (p.X*0.5 + 0.5) * float32(w-1)
	sy := (1 - (p.Y*0.5 + 0.5)) * float32(h-1)
	return int(math32.Floor(sx + 0.5)), int(math32.Floor(sy + 0.5))
}

func triangleNormal(a, b, c Vec3) Vec3 {
	return Normalize(Cross(b.Sub(a), c.Sub(a)))
}

func (r *Renderer) depthTest(w int, x, y int, z float32) bool {
	if !r.Depth || r.depthBuf == nil {
		return true
	}
	if x < 0 || y < 0 || x >= w {
		return false
	}
	idx := y*w + x
	if idx < 0 || idx >= len(r.depthBuf) {
		return false
	}
	// NDC z is in [-1,1]. Map to [0,1].
	d := clampF32(z*0.5+0.5, 0, 1)
	if d >= r.depthBuf[idx] {
		return false
	}
	r.depthBuf[idx] = d
	return true
}

func (r *Renderer) drawLine(t Target, x0, y0, x1, y1 int, c Color) {
	dx := absInt(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -absInt(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		t.SetPixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// triangleBounds clips the screen-space bounding box of a triangle to the target.
func triangleBounds(w, h, x0, y0, x1, y1, x2, y2 int) (minX, minY, maxX, maxY int, ok bool) {
	minX, maxX = min3(x0, x1, x2), max3(x0, x1, x2)
	minY, maxY = min3(y0, y1, y2), max3(y0, y1, y2)
	minX = max(minX, 0)
	minY = max(minY, 0)
	maxX = min(maxX, w-1)
	maxY = min(maxY, h-1)
	return minX, minY, maxX, maxY, minX <= maxX && minY <= maxY
}

func (r *Renderer) fillTriangleFlat(t Target, w, h int, x0, y0 int, z0 float32, x1, y1 int, z1 float32, x2, y2 int, z2 float32, c Color) {
	minX, minY, maxX, maxY, ok := triangleBounds(w, h, x0, y0, x1, y1, x2, y2)
	if !ok {
		return
	}

	area := edgeFn(x0, y0, x1, y1, x2, y2)
	if area == 0 {
		return
	}
	invArea := 1.0 / float32(area)

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			w0 := edgeFn(x1, y1, x2, y2, x, y)
			w1 := edgeFn(x2, y2, x0, y0, x, y)
			w2 := edgeFn(x0, y0, x1, y1, x, y)
			if !inside(w0, w1, w2) {
				continue
			}
			a0 := float32(w0) * invArea
			a1 := float32(w1) * invArea
			a2 := float32(w2) * invArea
			z := a0*z0 + a1*z1 + a2*z2
			if !r.depthTest(w, x, y, z) {
				continue
			}
			t.SetPixel(x, y, c)
		}
	}
}

func (r *Renderer) fillTriangle(t Target, w, h int, x0, y0 int, z0 float32, c0 Color, x1, y1 int, z1 float32, c1 Color, x2, y2 int, z2 float32, c2 Color) {
	minX, minY, maxX, maxY, ok := triangleBounds(w, h, x0, y0, x1, y1, x2, y2)
	if !ok {
		return
	}

	area := edgeFn(x0, y0, x1, y1, x2, y2)
	if area == 0 {
		return
	}
	invArea := 1.0 / float32(area)

	r0, g0, b0 := float32(c0.R), float32(c0.G), float32(c0.B)
	r1, g1, b1 := float32(c1.R), float32(c1.G), float32(c1.B)
	r2, g2, b2 := float32(c2.R), float32(c2.G), float32(c2.B)

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			w0 := edgeFn(x1, y1, x2, y2, x, y)
			w1 := edgeFn(x2, y2, x0, y0, x, y)
			w2 := edgeFn(x0, y0, x1, y1, x, y)
			if !inside(w0, w1, w2) {
				continue
			}
			a0 := float32(w0) * invArea
			a1 := float32(w1) * invArea
			a2 := float32(w2) * invArea
			z := a0*z0 + a1*z1 + a2*z2
			if !r.depthTest(w, x, y, z) {
				continue
			}
			rr := uint8(clampF32(a0*r0+a1*r1+a2*r2, 0, 255))
			gg := uint8(clampF32(a0*g0+a1*g1+a2*g2, 0, 255))
			bb := uint8(clampF32(a0*b0+a1*b1+a2*b2, 0, 255))
			t.SetPixel(x, y, Color{R: rr, G: gg, B: bb, A: 0xFF})
		}
	}
}

// inside accepts pixels on either winding so back faces are drawn too.
func inside(w0, w1, w2 int) bool {
	return (w0 >= 0 && w1 >= 0 && w2 >= 0) || (w0 <= 0 && w1 <= 0 && w2 <= 0)
}

func edgeFn(x0, y0, x1, y1, x, y int) int {
	return (x-x0)*(y1-y0) - (y-y0)*(x1-x0)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func min3(a, b, c int) int {
	return min(a, b, c)
}

func max3(a, b, c int) int {
	return max(a, b, c)
}

func clampF32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
