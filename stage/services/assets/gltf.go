package assets

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"net/url"
	"path"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"frost/stage/gfx"
)

// Model is a decoded glTF scene with node transforms baked into the vertices.
type Model struct {
	Meshes []gfx.Mesh
	// Bounds encloses every mesh in model space.
	Bounds gfx.Box3
}

// PlaceholderModel stands in for a model that failed to load.
func PlaceholderModel() *Model {
	m := gfx.Box(1, 1, 1)
	m.Name = "placeholder"
	m.Visible = true
	m.Material = gfx.Material{Shading: gfx.ShadeNormal, BaseColor: gfx.RGB(0xFF, 0xFF, 0xFF)}
	return &Model{Meshes: []gfx.Mesh{m}, Bounds: m.LocalBounds()}
}

const (
	maxModelVertices = 1 << 20
	maxModelIndices  = 3 << 20
	maxNodeDepth     = 64
	// glTF caps bufferView.byteStride at 252.
	maxByteStride = 252
)

var errBadGLTF = errors.New("assets: malformed glTF")

func badGLTF(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadGLTF, fmt.Sprintf(format, args...))
}

// resourceFS resolves glTF URIs relative to the model file. A nil fsys holds
// nothing, so only self-contained files decode.
type resourceFS struct {
	fsys fs.FS
	dir  string
}

func (r resourceFS) Open(name string) (fs.File, error) {
	if r.fsys == nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	if p, err := url.PathUnescape(name); err == nil {
		name = p
	}
	return r.fsys.Open(path.Join(r.dir, name))
}

// modelReader converts a decoded glTF document into gfx meshes.
type modelReader struct {
	doc    *gltf.Document
	res    resourceFS
	maxTex int
	tex    map[int]*gfx.Texture
}

// DecodeModel decodes a .gltf or .glb file. fsys and name locate external buffers
// and images; fsys may be nil for self-contained files.
func DecodeModel(data []byte, fsys fs.FS, name string, maxTex int) (m *Model, err error) {
	defer func() {
		if p := recover(); p != nil {
			m, err = nil, badGLTF("decoder panic: %v", p)
		}
	}()

	r := &modelReader{
		doc:    new(gltf.Document),
		res:    resourceFS{fsys: fsys, dir: path.Dir(name)},
		maxTex: maxTex,
		tex:    map[int]*gfx.Texture{},
	}
	if err := gltf.NewDecoderFS(bytes.NewReader(data), r.res).Decode(r.doc); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", errBadGLTF, err)
	}
	if !strings.HasPrefix(r.doc.Asset.Version, "2") {
		return nil, fmt.Errorf("%w: glTF version %q", ErrUnsupported, r.doc.Asset.Version)
	}
	for i, b := range r.doc.Buffers {
		if b == nil {
			return nil, badGLTF("buffer %d missing", i)
		}
		if b.ByteLength < 0 || len(b.Data) < b.ByteLength {
			return nil, badGLTF("buffer %d is %d bytes, want %d", i, len(b.Data), b.ByteLength)
		}
	}
	return r.build()
}

func (r *modelReader) build() (*Model, error) {
	m := &Model{Bounds: gfx.EmptyBox()}
	nodes := r.doc.Nodes

	var roots []int
	switch {
	case r.doc.Scene != nil && *r.doc.Scene >= 0 && *r.doc.Scene < len(r.doc.Scenes):
		roots = r.doc.Scenes[*r.doc.Scene].Nodes
	case len(r.doc.Scenes) > 0:
		roots = r.doc.Scenes[0].Nodes
	default:
		child := make([]bool, len(nodes))
		for _, n := range nodes {
			if n == nil {
				continue
			}
			for _, c := range n.Children {
				if c >= 0 && c < len(child) {
					child[c] = true
				}
			}
		}
		for i := range nodes {
			if !child[i] {
				roots = append(roots, i)
			}
		}
	}

	var verts, idx int
	var walk func(n int, parent gfx.Mat4, depth int) error
	walk = func(n int, parent gfx.Mat4, depth int) error {
		if n < 0 || n >= len(nodes) || nodes[n] == nil {
			return badGLTF("node %d out of range", n)
		}
		if depth > maxNodeDepth {
			return badGLTF("node hierarchy deeper than %d", maxNodeDepth)
		}
		node := nodes[n]
		world := gfx.Mat4Mul(parent, nodeMatrix(node))
		if node.Mesh != nil {
			meshes, err := r.mesh(*node.Mesh, world)
			if err != nil {
				return err
			}
			for i := range meshes {
				verts += len(meshes[i].Vertices)
				idx += len(meshes[i].Indices)
				if verts > maxModelVertices || idx > maxModelIndices {
					return fmt.Errorf("%w: more than %d vertices", ErrTooLarge, maxModelVertices)
				}
				if node.Name != "" && meshes[i].Name == "" {
					meshes[i].Name = node.Name
				}
				m.Bounds = m.Bounds.Union(meshes[i].LocalBounds())
				m.Meshes = append(m.Meshes, meshes[i])
			}
		}
		for _, c := range node.Children {
			if err := walk(c, world, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	for _, n := range roots {
		if err := walk(n, gfx.Mat4Identity(), 0); err != nil {
			return nil, err
		}
	}
	if len(m.Meshes) == 0 {
		return nil, badGLTF("no triangle meshes")
	}
	return m, nil
}

func nodeMatrix(n *gltf.Node) gfx.Mat4 {
	if mat := n.MatrixOrDefault(); mat != gltf.DefaultMatrix {
		var out gfx.Mat4
		for i, v := range mat {
			out[i] = float32(v)
		}
		return out
	}
	t := n.TranslationOrDefault()
	q := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	m := gfx.Mat4Translate(gfx.V3(float32(t[0]), float32(t[1]), float32(t[2])))
	m = gfx.Mat4Mul(m, gfx.Mat4Quat(float32(q[0]), float32(q[1]), float32(q[2]), float32(q[3])))
	return gfx.Mat4Mul(m, gfx.Mat4Scale(gfx.V3(float32(s[0]), float32(s[1]), float32(s[2]))))
}

// mesh converts every triangle primitive of a glTF mesh into a gfx.Mesh in model space.
func (r *modelReader) mesh(i int, world gfx.Mat4) ([]gfx.Mesh, error) {
	if i < 0 || i >= len(r.doc.Meshes) || r.doc.Meshes[i] == nil {
		return nil, badGLTF("mesh %d out of range", i)
	}
	src := r.doc.Meshes[i]
	var out []gfx.Mesh
	for pi, p := range src.Primitives {
		if p == nil || p.Mode != gltf.PrimitiveTriangles {
			continue
		}
		posAcc, ok := p.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		acc, err := r.accessor(posAcc)
		if err != nil {
			return nil, fmt.Errorf("mesh %d primitive %d position: %w", i, pi, err)
		}
		pos, err := modeler.ReadPosition(r.doc, acc, nil)
		if err != nil {
			return nil, badGLTF("mesh %d primitive %d position: %v", i, pi, err)
		}
		var normals [][3]float32
		if a, ok := p.Attributes[gltf.NORMAL]; ok {
			if acc, err = r.accessor(a); err != nil {
				return nil, fmt.Errorf("mesh %d primitive %d normal: %w", i, pi, err)
			}
			if normals, err = modeler.ReadNormal(r.doc, acc, nil); err != nil {
				return nil, badGLTF("mesh %d primitive %d normal: %v", i, pi, err)
			}
		}
		var uvs [][2]float32
		if a, ok := p.Attributes[gltf.TEXCOORD_0]; ok {
			if acc, err = r.accessor(a); err != nil {
				return nil, fmt.Errorf("mesh %d primitive %d uv: %w", i, pi, err)
			}
			if uvs, err = modeler.ReadTextureCoord(r.doc, acc, nil); err != nil {
				return nil, badGLTF("mesh %d primitive %d uv: %v", i, pi, err)
			}
		}

		m := gfx.Mesh{Name: src.Name, Visible: true, Scale: gfx.V3(1, 1, 1)}
		m.Vertices = make([]gfx.Vertex, len(pos))
		for v := range pos {
			vx := gfx.Vertex{
				Pos:   gfx.Mat4MulPoint(world, finite3(pos[v])),
				Color: gfx.RGB(0xFF, 0xFF, 0xFF),
			}
			if v < len(normals) {
				vx.Normal = gfx.Normalize(gfx.Mat4MulDir(world, finite3(normals[v])))
			}
			if v < len(uvs) {
				// glTF puts v=0 at the top of the image.
				vx.UV = gfx.V2(finite(uvs[v][0]), 1-finite(uvs[v][1]))
			}
			m.Vertices[v] = vx
		}

		if p.Indices != nil {
			if m.Indices, err = r.indices(*p.Indices, len(pos)); err != nil {
				return nil, fmt.Errorf("mesh %d primitive %d indices: %w", i, pi, err)
			}
		} else {
			m.Indices = make([]uint32, len(pos)-len(pos)%3)
			for v := range m.Indices {
				m.Indices[v] = uint32(v)
			}
		}
		if mirrored(world) {
			for t := 0; t+2 < len(m.Indices); t += 3 {
				m.Indices[t+1], m.Indices[t+2] = m.Indices[t+2], m.Indices[t+1]
			}
		}

		m.Material = gfx.Material{Shading: gfx.ShadeLambert, BaseColor: gfx.RGB(0xFF, 0xFF, 0xFF)}
		if p.Material != nil {
			if err := r.material(*p.Material, &m.Material); err != nil {
				return nil, err
			}
		}
		out = append(out, m)
	}
	return out, nil
}

func finite(f float32) float32 {
	if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
		return 0
	}
	return f
}

func finite3(v [3]float32) gfx.Vec3 {
	return gfx.V3(finite(v[0]), finite(v[1]), finite(v[2]))
}

// mirrored reports whether world flips handedness, which reverses triangle winding.
func mirrored(m gfx.Mat4) bool {
	x := gfx.V3(m[0], m[1], m[2])
	y := gfx.V3(m[4], m[5], m[6])
	z := gfx.V3(m[8], m[9], m[10])
	return gfx.Dot(gfx.Cross(x, y), z) < 0
}

// accessor returns accessor i once its elements are known to lie inside their
// buffer view and buffer, so the modeler reads never slice out of range.
func (r *modelReader) accessor(i int) (*gltf.Accessor, error) {
	if i < 0 || i >= len(r.doc.Accessors) || r.doc.Accessors[i] == nil {
		return nil, badGLTF("accessor %d out of range", i)
	}
	acc := r.doc.Accessors[i]
	if acc.BufferView == nil {
		// Sparse-only accessors are all zeros, which is useless for geometry.
		return nil, fmt.Errorf("%w: accessor %d without bufferView", ErrUnsupported, i)
	}
	viewLen, stride, err := r.view(*acc.BufferView)
	if err != nil {
		return nil, err
	}
	size := acc.ComponentType.ByteSize() * acc.Type.Components()
	if size <= 0 {
		return nil, badGLTF("accessor %d has no element size", i)
	}
	if stride != 0 && (stride < size || stride > maxByteStride) {
		return nil, badGLTF("accessor %d stride %d for %d-byte elements", i, stride, size)
	}
	if stride == 0 {
		stride = size
	}
	count, off := acc.Count, acc.ByteOffset
	if count < 0 || count > maxModelIndices {
		return nil, fmt.Errorf("%w: accessor %d count %d", ErrTooLarge, i, count)
	}
	if off < 0 || off > viewLen {
		return nil, badGLTF("accessor %d offset %d outside its bufferView", i, off)
	}
	// count and stride are bounded above, so the span cannot overflow.
	if count > 0 && (count-1)*stride+size > viewLen-off {
		return nil, badGLTF("accessor %d exceeds its bufferView", i)
	}
	return acc, nil
}

// view checks bufferView i against its buffer and returns its length and stride.
func (r *modelReader) view(i int) (length, stride int, err error) {
	if i < 0 || i >= len(r.doc.BufferViews) || r.doc.BufferViews[i] == nil {
		return 0, 0, badGLTF("bufferView %d out of range", i)
	}
	bv := r.doc.BufferViews[i]
	if bv.Buffer < 0 || bv.Buffer >= len(r.doc.Buffers) || r.doc.Buffers[bv.Buffer] == nil {
		return 0, 0, badGLTF("buffer %d out of range", bv.Buffer)
	}
	n := len(r.doc.Buffers[bv.Buffer].Data)
	if bv.ByteOffset < 0 || bv.ByteLength < 0 || bv.ByteOffset > n || bv.ByteLength > n-bv.ByteOffset {
		return 0, 0, badGLTF("bufferView %d exceeds its buffer", i)
	}
	return bv.ByteLength, bv.ByteStride, nil
}

func (r *modelReader) viewBytes(i int) ([]byte, error) {
	if _, _, err := r.view(i); err != nil {
		return nil, err
	}
	bv := r.doc.BufferViews[i]
	return r.doc.Buffers[bv.Buffer].Data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength], nil
}

func (r *modelReader) indices(i, vertexCount int) ([]uint32, error) {
	acc, err := r.accessor(i)
	if err != nil {
		return nil, err
	}
	if acc.Type != gltf.AccessorScalar {
		return nil, badGLTF("index accessor %d is not scalar", i)
	}
	idx, err := modeler.ReadIndices(r.doc, acc, nil)
	if err != nil {
		return nil, badGLTF("index accessor %d: %v", i, err)
	}
	idx = idx[:len(idx)-len(idx)%3]
	for _, v := range idx {
		if int(v) >= vertexCount {
			return nil, badGLTF("index %d out of range for %d vertices", v, vertexCount)
		}
	}
	return idx, nil
}

func (r *modelReader) material(i int, dst *gfx.Material) error {
	if i < 0 || i >= len(r.doc.Materials) || r.doc.Materials[i] == nil {
		return badGLTF("material %d out of range", i)
	}
	pbr := r.doc.Materials[i].PBRMetallicRoughness
	if pbr == nil {
		return nil
	}
	if f := pbr.BaseColorFactor; f != nil {
		dst.BaseColor = gfx.RGBA(unitByte(f[0]), unitByte(f[1]), unitByte(f[2]), 0xFF)
		dst.Opacity = unitByte(f[3])
	}
	if pbr.BaseColorTexture != nil {
		tex, err := r.texture(pbr.BaseColorTexture.Index)
		if err != nil {
			// A broken texture still leaves a usable model.
			tex = PlaceholderTexture()
		}
		dst.Map = tex
	}
	return nil
}

func (r *modelReader) texture(i int) (*gfx.Texture, error) {
	if t, ok := r.tex[i]; ok {
		return t, nil
	}
	if i < 0 || i >= len(r.doc.Textures) || r.doc.Textures[i] == nil || r.doc.Textures[i].Source == nil {
		return nil, badGLTF("texture %d has no source", i)
	}
	src := *r.doc.Textures[i].Source
	if src < 0 || src >= len(r.doc.Images) || r.doc.Images[src] == nil {
		return nil, badGLTF("image %d out of range", src)
	}
	img := r.doc.Images[src]
	var (
		data []byte
		err  error
	)
	switch {
	case img.BufferView != nil:
		data, err = r.viewBytes(*img.BufferView)
	case img.IsEmbeddedResource():
		data, err = img.MarshalData()
	case img.URI != "":
		data, err = fs.ReadFile(r.res, img.URI)
	default:
		err = badGLTF("image %d has no data", src)
	}
	if err != nil {
		return nil, err
	}
	t, err := DecodeTexture(data, r.maxTex)
	if err != nil {
		return nil, err
	}
	r.tex[i] = t
	return t, nil
}

func unitByte(f float64) uint8 {
	if !(f > 0) {
		return 0
	}
	if f >= 1 {
		return 0xFF
	}
	return uint8(f*255 + 0.5)
}
