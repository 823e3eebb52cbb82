// Package config holds the viewer's scene configuration.
//
// Defaults reproduce the winter demo. A TOML file may override any subset of fields.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Window  Window  `toml:"window"`
	Assets  Assets  `toml:"assets"`
	Camera  Camera  `toml:"camera"`
	Light   Light   `toml:"light"`
	Terrain Terrain `toml:"terrain"`
	Cube    Cube    `toml:"cube"`
	Sphere  Sphere  `toml:"sphere"`
	Model   Model   `toml:"model"`
	Spin    Spin    `toml:"spin"`
	Panel   Panel   `toml:"panel"`
}

type Window struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Scale  int    `toml:"scale"`
	Title  string `toml:"title"`
}

// Assets names files relative to Root. Empty names are skipped.
type Assets struct {
	Root       string `toml:"root"`
	Background string `toml:"background"`
	Terrain    string `toml:"terrain"`
	HeightMap  string `toml:"height_map"`
	SphereMap  string `toml:"sphere_map"`

	// MaxTextureSize bounds the longer edge of decoded textures.
	MaxTextureSize int  `toml:"max_texture_size"`
	Workers        int  `toml:"workers"`
	Watch          bool `toml:"watch"`
}

type Camera struct {
	FOV      float32    `toml:"fov"`
	Near     float32    `toml:"near"`
	Far      float32    `toml:"far"`
	Position [3]float32 `toml:"position"`
}

type Light struct {
	Color     uint32     `toml:"color"`
	Intensity float32    `toml:"intensity"`
	Position  [3]float32 `toml:"position"`
	Ambient   float32    `toml:"ambient"`
}

type Terrain struct {
	Visible           bool    `toml:"visible"`
	Size              float32 `toml:"size"`
	Segments          int     `toml:"segments"`
	DisplacementScale float32 `toml:"displacement_scale"`
	RotationX         float32 `toml:"rotation_x"`
	Y                 float32 `toml:"y"`
}

type Cube struct {
	Visible bool    `toml:"visible"`
	Size    float32 `toml:"size"`
	Color   uint32  `toml:"color"`
	// Extra cubes join the cube loop with normal shading, one per entry.
	Extra []ExtraCube `toml:"extra"`
}

type ExtraCube struct {
	Color uint32  `toml:"color"`
	X     float32 `toml:"x"`
}

type Sphere struct {
	Visible        bool       `toml:"visible"`
	Radius         float32    `toml:"radius"`
	WidthSegments  int        `toml:"width_segments"`
	HeightSegments int        `toml:"height_segments"`
	Position       [3]float32 `toml:"position"`
}

// Model is an optional glTF scene framed by the camera once loaded.
type Model struct {
	Path     string     `toml:"path"`
	Position [3]float32 `toml:"position"`
}

type Spin struct {
	CubeSpeedIncrement   float32 `toml:"cube_speed_increment"`
	SphereSpeedIncrement float32 `toml:"sphere_speed_increment"`
}

type Panel struct {
	Visible bool `toml:"visible"`
}

// Default returns the winter demo scene.
func Default() Config {
	return Config{
		Window: Window{Width: 320, Height: 240, Scale: 3, Title: "frost"},
		Assets: Assets{
			Root:           "public",
			Background:     "snowy_park_01_4K.jpg",
			Terrain:        "snow_field_aerial_col_4k.jpg",
			HeightMap:      "karhide_terrain.png",
			SphereMap:      "004C.jpg",
			MaxTextureSize: 512,
			Workers:        4,
		},
		Camera: Camera{FOV: 75, Near: 0.1, Far: 100, Position: [3]float32{0, 0, 10}},
		Light: Light{
			Color:     0xffffff,
			Intensity: 3,
			Position:  [3]float32{-1, 2, 4},
			Ambient:   0.15,
		},
		Terrain: Terrain{
			Size:              50,
			Segments:          100,
			DisplacementScale: 5,
			RotationX:         -0.5 * math.Pi,
			Y:                 -20,
		},
		Cube: Cube{Visible: true, Size: 1, Color: 0x00ff00},
		Sphere: Sphere{
			Radius:         5,
			WidthSegments:  32,
			HeightSegments: 16,
			Position:       [3]float32{5, 0, -10},
		},
		Spin: Spin{CubeSpeedIncrement: 0.1},
	}
}

// Load reads a TOML file over Default. An empty path returns Default.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg, err := Decode(bytes.NewReader(b))
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads TOML from r over Default and validates the result.
// Unknown keys are rejected.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var sme *toml.StrictMissingError
		if errors.As(err, &sme) {
			return Config{}, fmt.Errorf("unknown keys:\n%s", sme.String())
		}
		var de *toml.DecodeError
		if errors.As(err, &de) {
			row, col := de.Position()
			return Config{}, fmt.Errorf("line %d column %d: %w", row, col, err)
		}
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var ErrInvalid = errors.New("invalid config")

// Validate rejects values the viewer cannot render.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(c.Window.Width > 0 && c.Window.Height > 0, "window size %dx%d", c.Window.Width, c.Window.Height)
	check(c.Window.Scale >= 1, "window scale %d", c.Window.Scale)
	check(c.Camera.FOV > 0 && c.Camera.FOV < 180, "camera fov %v", c.Camera.FOV)
	check(c.Camera.Near > 0 && c.Camera.Near < c.Camera.Far, "camera near %v far %v", c.Camera.Near, c.Camera.Far)
	check(c.Light.Intensity >= 0, "light intensity %v", c.Light.Intensity)
	check(c.Terrain.Size > 0, "terrain size %v", c.Terrain.Size)
	check(c.Terrain.Segments >= 1 && c.Terrain.Segments <= 256, "terrain segments %d", c.Terrain.Segments)
	check(c.Cube.Size > 0, "cube size %v", c.Cube.Size)
	check(c.Sphere.Radius > 0, "sphere radius %v", c.Sphere.Radius)
	check(c.Sphere.WidthSegments >= 3 && c.Sphere.HeightSegments >= 2,
		"sphere segments %dx%d", c.Sphere.WidthSegments, c.Sphere.HeightSegments)
	check(c.Assets.MaxTextureSize >= 1, "max texture size %d", c.Assets.MaxTextureSize)
	check(c.Assets.Workers >= 1, "asset workers %d", c.Assets.Workers)
	check(len(c.Cube.Extra) <= 16, "%d extra cubes", len(c.Cube.Extra))

	return errors.Join(errs...)
}
