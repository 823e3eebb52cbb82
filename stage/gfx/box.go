package gfx

import "github.com/chewxy/math32"

// Box3 is an axis-aligned bounding box.
//
// The zero value is not empty; use EmptyBox to start accumulating points.
type Box3 struct {
	Min Vec3
	Max Vec3
}

// EmptyBox returns a box that contains nothing and grows with ExpandByPoint.
func EmptyBox() Box3 {
	inf := math32.Inf(1)
	return Box3{
		Min: V3(inf, inf, inf),
		Max: V3(-inf, -inf, -inf),
	}
}

// Empty reports whether the box contains no points.
func (b Box3) Empty() bool {
	return b.Max.X < b.Min.X || b.Max.Y < b.Min.Y || b.Max.Z < b.Min.Z
}

func (b Box3) ExpandByPoint(p Vec3) Box3 {
	b.Min = V3(min(b.Min.X, p.X), min(b.Min.Y, p.Y), min(b.Min.Z, p.Z))
	b.Max = V3(max(b.Max.X, p.X), max(b.Max.Y, p.Y), max(b.Max.Z, p.Z))
	return b
}

func (b Box3) Union(o Box3) Box3 {
	if o.Empty() {
		return b
	}
	if b.Empty() {
		return o
	}
	return b.ExpandByPoint(o.Min).ExpandByPoint(o.Max)
}

// Size returns the box extents, or zero for an empty box.
func (b Box3) Size() Vec3 {
	if b.Empty() {
		return Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Center returns the box midpoint, or the origin for an empty box.
func (b Box3) Center() Vec3 {
	if b.Empty() {
		return Vec3{}
	}
	return b.Min.Add(b.Max).Mul(0.5)
}

// Transform returns the box enclosing the eight transformed corners.
func (b Box3) Transform(m Mat4) Box3 {
	if b.Empty() {
		return b
	}
	out := EmptyBox()
	for i := 0; i < 8; i++ {
		p := b.Min
		if i&1 != 0 {
			p.X = b.Max.X
		}
		if i&2 != 0 {
			p.Y = b.Max.Y
		}
		if i&4 != 0 {
			p.Z = b.Max.Z
		}
		out = out.ExpandByPoint(Mat4MulPoint(m, p))
	}
	return out
}
