package main

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frost/stage/proto"
	"frost/stage/services/assets"
)

func TestCollectClassifiesFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"snow.JPG":                    {},
		"karhide_terrain.png":         {},
		"winter_house/scene.gltf":     {},
		"winter_house/scene.bin":      {},
		"winter_house/license.txt":    {},
		"winter_terrain_02/scene.glb": {},
	}
	reqs, err := collect(fsys, "terrain")
	require.NoError(t, err)

	got := map[string]proto.AssetKind{}
	for i, r := range reqs {
		assert.Equal(t, uint32(i+1), r.ID)
		got[r.Path] = r.Kind
	}
	assert.Equal(t, map[string]proto.AssetKind{
		"karhide_terrain.png":         proto.AssetHeightMap,
		"snow.JPG":                    proto.AssetTexture,
		"winter_house/scene.gltf":     proto.AssetModel,
		"winter_terrain_02/scene.glb": proto.AssetModel,
	}, got)
	assert.Equal(t, "karhide_terrain.png", reqs[0].Path)
}

func TestDescribeModelReportsFraming(t *testing.T) {
	s := describeModel(assets.PlaceholderModel(), 75)
	assert.Contains(t, s, "model 1 meshes, 24 vertices")
	assert.Contains(t, s, "size 1.73")
	assert.Contains(t, s, "frame at 1.35")

	assert.Contains(t, describeModel(&assets.Model{Bounds: assets.PlaceholderModel().Bounds}, 0), "field of view")
}
