package app

import (
	"frost/internal/config"
	"frost/stage/gfx"
	"frost/stage/proto"
	"frost/stage/services/assets"
)

// Asset request ids. Each id names one slot in the scene.
const (
	assetBackground uint32 = iota + 1
	assetTerrain
	assetHeightMap
	assetSphereMap
	assetModel
)

// sceneCapacity leaves room for a loaded model next to the demo primitives.
const sceneCapacity = 512

// sceneIDs are the mesh ids of the fixed scene objects; -1 when absent.
type sceneIDs struct {
	terrain int
	sphere  int
	cubes   []int
	model   []int
}

func vec3(a [3]float32) gfx.Vec3 { return gfx.V3(a[0], a[1], a[2]) }

// buildScene assembles the winter scene without any textures; those arrive
// asynchronously from the asset loader.
func buildScene(cfg config.Config) (*gfx.Scene, sceneIDs, []gfx.Vertex) {
	s := gfx.CreateScene(sceneCapacity)
	s.Light = gfx.Light{
		Color:     gfx.Hex(cfg.Light.Color),
		Intensity: cfg.Light.Intensity,
		Position:  vec3(cfg.Light.Position),
		Ambient:   cfg.Light.Ambient,
	}
	s.Background = gfx.RGB(0x20, 0x24, 0x2c)

	ids := sceneIDs{terrain: -1, sphere: -1}

	t := cfg.Terrain
	plane := gfx.Plane(t.Size, t.Size, t.Segments, t.Segments)
	plane.Name = "terrain"
	plane.Visible = t.Visible
	plane.Position = gfx.V3(0, t.Y, 0)
	plane.Rotation = gfx.V3(t.RotationX, 0, 0)
	plane.Material = gfx.Material{Shading: gfx.ShadeLambert}
	base := append([]gfx.Vertex(nil), plane.Vertices...)
	ids.terrain = s.AddMesh(plane)

	c := cfg.Cube
	cube := gfx.Box(c.Size, c.Size, c.Size)
	cube.Name = "cube"
	cube.Visible = c.Visible
	cube.Material = gfx.Material{Shading: gfx.ShadeToon, BaseColor: gfx.Hex(c.Color)}
	ids.cubes = append(ids.cubes, s.AddMesh(cube))
	for _, e := range c.Extra {
		m := gfx.Box(c.Size, c.Size, c.Size)
		m.Name = "cube"
		m.Visible = true
		m.Position = gfx.V3(e.X, 0, 0)
		m.Material = gfx.Material{Shading: gfx.ShadeNormal, BaseColor: gfx.Hex(e.Color)}
		ids.cubes = append(ids.cubes, s.AddMesh(m))
	}

	sp := cfg.Sphere
	sphere := gfx.Sphere(sp.Radius, sp.WidthSegments, sp.HeightSegments)
	sphere.Name = "sphere"
	sphere.Visible = sp.Visible
	sphere.Position = vec3(sp.Position)
	sphere.Material = gfx.Material{Shading: gfx.ShadePhong}
	ids.sphere = s.AddMesh(sphere)

	return s, ids, base
}

// assetRequests lists the loads the scene needs, skipping unnamed files.
func assetRequests(cfg config.Config) []assets.Request {
	var reqs []assets.Request
	add := func(id uint32, kind proto.AssetKind, path string) {
		if path != "" {
			reqs = append(reqs, assets.Request{ID: id, Kind: kind, Path: path})
		}
	}
	add(assetBackground, proto.AssetTexture, cfg.Assets.Background)
	add(assetTerrain, proto.AssetTexture, cfg.Assets.Terrain)
	add(assetHeightMap, proto.AssetHeightMap, cfg.Assets.HeightMap)
	add(assetSphereMap, proto.AssetTexture, cfg.Assets.SphereMap)
	add(assetModel, proto.AssetModel, cfg.Model.Path)
	return reqs
}
