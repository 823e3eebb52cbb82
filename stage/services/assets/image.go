package assets

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/h2non/filetype"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"frost/stage/gfx"
)

var (
	ErrUnsupported = errors.New("assets: unsupported format")
	ErrTooLarge    = errors.New("assets: asset too large")
)

// maxImagePixels rejects images whose header claims an absurd size before decoding.
const maxImagePixels = 8192 * 8192

var imageMIMEs = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
	"image/tiff": true,
}

// sniffImage reports the MIME type of data, or ErrUnsupported when it is not a
// decodable image.
func sniffImage(data []byte) (string, error) {
	kind, err := filetype.Match(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	if kind == filetype.Unknown || !imageMIMEs[kind.MIME.Value] {
		return "", fmt.Errorf("%w: %s", ErrUnsupported, mimeOrUnknown(kind.MIME.Value))
	}
	return kind.MIME.Value, nil
}

func mimeOrUnknown(s string) string {
	if s == "" {
		return "unknown type"
	}
	return s
}

func decodeImage(data []byte, maxSize int) (image.Image, error) {
	if _, err := sniffImage(data); err != nil {
		return nil, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > maxImagePixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("image: %w", err)
	}
	return downscale(img, maxSize), nil
}

// downscale shrinks img so its longer edge is at most maxSize, keeping the aspect ratio.
func downscale(img image.Image, maxSize int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSize <= 0 || (w <= maxSize && h <= maxSize) {
		return img
	}
	nw, nh := maxSize, maxSize
	if w > h {
		nh = max(1, h*maxSize/w)
	} else {
		nw = max(1, w*maxSize/h)
	}
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// DecodeTexture decodes an image file into a texture no larger than maxSize on either edge.
func DecodeTexture(data []byte, maxSize int) (*gfx.Texture, error) {
	img, err := decodeImage(data, maxSize)
	if err != nil {
		return nil, err
	}
	return gfx.NewTexture(img), nil
}

// heightMapBlur smooths 8-bit stair steps out of displacement maps.
const heightMapBlur = 1.0

// DecodeHeightMap decodes an image as a grayscale, lightly blurred height map.
func DecodeHeightMap(data []byte, maxSize int) (*gfx.Texture, error) {
	img, err := decodeImage(data, maxSize)
	if err != nil {
		return nil, err
	}
	gray := effect.Grayscale(img)
	return gfx.NewTexture(blur.Gaussian(gray, heightMapBlur)), nil
}

// PlaceholderTexture stands in for a texture that failed to load.
func PlaceholderTexture() *gfx.Texture {
	return gfx.Checker(8, gfx.RGB(0xFF, 0x00, 0xFF), gfx.RGB(0x20, 0x20, 0x20))
}
