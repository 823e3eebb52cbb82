// Command frostcheck decodes every texture and model below an asset directory the
// way the viewer would and reports what it found.
package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/muesli/termenv"

	"frost/stage/framing"
	"frost/stage/gfx"
	"frost/stage/kernel"
	"frost/stage/proto"
	"frost/stage/services/assets"
)

func main() {
	var (
		root     string
		maxTex   int
		workers  int
		fov      float64
		heightHint string
	)
	flag.StringVar(&root, "assets", "public", "Asset directory to scan.")
	flag.IntVar(&maxTex, "max-texture", 512, "Longest texture edge after decode.")
	flag.IntVar(&workers, "workers", 4, "Concurrent decodes.")
	flag.Float64Var(&fov, "fov", 75, "Camera field of view used for the model framing report.")
	flag.StringVar(&heightHint, "heightmap", "terrain", "Images whose name contains this are decoded as height maps.")
	flag.Parse()

	fsys := os.DirFS(root)
	reqs, err := collect(fsys, heightHint)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
	if len(reqs) == 0 {
		fmt.Fprintf(os.Stderr, "error: no assets below %s\n", root)
		os.Exit(2)
	}

	l := assets.NewLoader(fsys, nil, kernel.Capability{}, kernel.Capability{}, assets.Options{
		MaxTextureSize: maxTex,
		Workers:        workers,
	})
	if err := l.LoadAll(context.Background(), reqs); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	out := termenv.NewOutput(os.Stdout)
	failed := report(out, l.Table(), reqs, float32(fov))
	if failed > 0 {
		fmt.Fprintf(out, "%d of %d assets failed\n", failed, len(reqs))
		os.Exit(1)
	}
}

// collect walks fsys and builds one request per recognised file, sorted by path.
func collect(fsys fs.FS, heightHint string) ([]assets.Request, error) {
	var reqs []assets.Request
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		kind := kindOf(p, heightHint)
		if kind == proto.AssetUnknown {
			return nil
		}
		reqs = append(reqs, assets.Request{Kind: kind, Path: p})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].Path < reqs[j].Path })
	for i := range reqs {
		reqs[i].ID = uint32(i + 1)
	}
	return reqs, nil
}

func kindOf(p, heightHint string) proto.AssetKind {
	switch strings.ToLower(path.Ext(p)) {
	case ".gltf", ".glb":
		return proto.AssetModel
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		if heightHint != "" && strings.Contains(strings.ToLower(path.Base(p)), heightHint) {
			return proto.AssetHeightMap
		}
		return proto.AssetTexture
	default:
		return proto.AssetUnknown
	}
}

func report(out *termenv.Output, table *assets.Table, reqs []assets.Request, fov float32) (failed int) {
	ok := out.String("ok  ").Foreground(termenv.ANSIGreen).String()
	bad := out.String("FAIL").Foreground(termenv.ANSIBrightRed).String()
	for _, req := range reqs {
		res, _ := table.Get(req.ID)
		if res.Err != nil {
			failed++
			fmt.Fprintf(out, "%s %s: %v\n", bad, req.Path, res.Err)
			continue
		}
		fmt.Fprintf(out, "%s %s: %s\n", ok, req.Path, describe(res, fov))
	}
	return failed
}

func describe(res assets.Result, fov float32) string {
	switch {
	case res.Texture != nil:
		return fmt.Sprintf("%s %dx%d", res.Kind, res.Texture.W, res.Texture.H)
	case res.Model != nil:
		return describeModel(res.Model, fov)
	default:
		return res.Kind.String()
	}
}

// describeModel reports the camera distance the viewer would frame the model at.
func describeModel(m *assets.Model, fov float32) string {
	verts := 0
	for i := range m.Meshes {
		verts += len(m.Meshes[i].Vertices)
	}
	s := fmt.Sprintf("model %d meshes, %d vertices", len(m.Meshes), verts)
	v, ok := framing.VolumeOf(m.Bounds)
	if !ok {
		return s + ", empty"
	}
	cam := gfx.NewCamera(fov, 1, 0.1, 100)
	cam.Position = gfx.V3(0, 0, 10)
	f, err := framing.FrameArea(v.Size*1.2, v.Size, v.Center, &cam)
	if err != nil {
		return s + ", " + err.Error()
	}
	return s + fmt.Sprintf(", size %.2f, frame at %.2f", v.Size, f.Distance)
}
