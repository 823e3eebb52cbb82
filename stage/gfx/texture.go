package gfx

import (
	"image"

	"github.com/chewxy/math32"
)

// Texture is an RGBA image sampled by UV coordinates.
//
// UVs clamp to the edge and sampling is nearest-neighbour. V runs upward, so v=0
// is the bottom row of the source image.
type Texture struct {
	W, H int
	Pix  []Color
}

// NewTexture copies img into a texture.
func NewTexture(img image.Image) *Texture {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	t := &Texture{W: b.Dx(), H: b.Dy(), Pix: make([]Color, b.Dx()*b.Dy())}
	for y := 0; y < t.H; y++ {
		for x := 0; x < t.W; x++ {
			t.Pix[y*t.W+x] = FromColor(img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return t
}

// Checker returns a two-color checkerboard texture with n cells per side.
func Checker(n int, a, b Color) *Texture {
	if n <= 0 {
		n = 8
	}
	const cell = 4
	t := &Texture{W: n * cell, H: n * cell}
	t.Pix = make([]Color, t.W*t.H)
	for y := 0; y < t.H; y++ {
		for x := 0; x < t.W; x++ {
			c := a
			if (x/cell+y/cell)%2 == 1 {
				c = b
			}
			t.Pix[y*t.W+x] = c
		}
	}
	return t
}

// Sample returns the texel at (u, v).
func (t *Texture) Sample(u, v Scalar) Color {
	if t == nil || t.W <= 0 || t.H <= 0 || len(t.Pix) < t.W*t.H {
		return RGB(0xFF, 0x00, 0xFF)
	}
	u = clampUV(u)
	v = clampUV(v)
	x := int(u * Scalar(t.W))
	y := int((1 - v) * Scalar(t.H))
	if x >= t.W {
		x = t.W - 1
	}
	if y >= t.H {
		y = t.H - 1
	}
	return t.Pix[y*t.W+x]
}

// Luminance returns the texel brightness at (u, v) in 0..1.
func (t *Texture) Luminance(u, v Scalar) Scalar {
	c := t.Sample(u, v)
	return (0.299*Scalar(c.R) + 0.587*Scalar(c.G) + 0.114*Scalar(c.B)) / 255
}

func clampUV(v Scalar) Scalar {
	if math32.IsNaN(v) {
		return 0
	}
	return Clamp01(v)
}
