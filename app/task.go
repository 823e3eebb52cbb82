package app

import (
	"frost/hal"
	assetclient "frost/stage/client/assets"
	logclient "frost/stage/client/logger"
	"frost/stage/gfx"
	"frost/stage/kernel"
	"frost/stage/proto"
	"frost/stage/services/assets"
)

// Orbit increments per key press.
const (
	orbitStep = 0.08
	zoomStep  = 1
)

// sessionTask applies asset completions and key events to the session on the
// render thread.
type sessionTask struct {
	s    *Session
	ep   kernel.Capability
	reqs []assets.Request
	sent bool
}

func (t *sessionTask) Step(ctx *kernel.Context) {
	s := t.s
	if !t.sent {
		t.sent = true
		logclient.Log(ctx, s.logCap, startupLine(s.cfg))
		for _, r := range t.reqs {
			if err := assetclient.Load(ctx, s.svcCap, s.keyCap, r.ID, r.Kind, r.Path); err != nil {
				logclient.Warnf(ctx, s.logCap, "%v", err)
			}
		}
	}

	for {
		msg, ok := ctx.Recv(t.ep)
		if !ok {
			return
		}
		switch proto.Kind(msg.Kind) {
		case proto.MsgAssetLoaded, proto.MsgAssetFailed:
			if c, ok := assetclient.DecodeCompletion(msg); ok {
				t.applyAsset(ctx, c)
			}
		case proto.MsgKey:
			if code, press, r, ok := proto.DecodeKeyPayload(msg.Payload()); ok && press {
				t.handleKey(hal.KeyCode(code), r)
			}
		case proto.MsgShutdown:
			s.Quit()
			ctx.Exit()
			return
		}
	}
}

func (t *sessionTask) applyAsset(ctx *kernel.Context, c assetclient.Completion) {
	s := t.s
	res, ok := s.loader.Table().Get(c.ID)
	if !ok || res.Gen <= s.applied[c.ID] {
		return
	}
	s.applied[c.ID] = res.Gen

	if res.Err != nil {
		logclient.Warnf(ctx, s.logCap, "asset %s: %v (%s), using placeholder", res.Path, res.Err, c.Code)
	}
	tex := res.Texture
	if res.Err != nil && c.Kind != proto.AssetModel {
		tex = assets.PlaceholderTexture()
	}

	switch c.ID {
	case assetBackground:
		if res.Err == nil {
			s.scene.BackgroundMap = tex
		}
	case assetTerrain:
		s.scene.SetMap(s.ids.terrain, tex)
	case assetHeightMap:
		if res.Err == nil {
			s.displaceTerrain(tex)
		}
	case assetSphereMap:
		s.scene.SetMap(s.ids.sphere, tex)
	case assetModel:
		model := res.Model
		if res.Err != nil {
			model = assets.PlaceholderModel()
		}
		t.placeModel(ctx, model)
	}
}

// displaceTerrain rebuilds the terrain from its flat vertices so a reloaded
// height map replaces the previous displacement.
func (s *Session) displaceTerrain(heightMap *gfx.Texture) {
	m := s.scene.Mesh(s.ids.terrain)
	if m == nil {
		return
	}
	m.Vertices = append(m.Vertices[:0], s.terrain...)
	gfx.Displace(m, heightMap, s.cfg.Terrain.DisplacementScale)
}

func (t *sessionTask) placeModel(ctx *kernel.Context, model *assets.Model) {
	s := t.s
	for _, id := range s.ids.model {
		s.scene.RemoveMesh(id)
	}
	s.ids.model = s.ids.model[:0]

	offset := vec3(s.cfg.Model.Position)
	for _, m := range model.Meshes {
		m.Position = m.Position.Add(offset)
		m.Visible = true
		id := s.scene.AddMesh(m)
		if id < 0 {
			logclient.Warnf(ctx, s.logCap, "model: scene full, %d meshes dropped", len(model.Meshes)-len(s.ids.model))
			break
		}
		s.ids.model = append(s.ids.model, id)
	}
	s.frameModel()
}

func (t *sessionTask) handleKey(code hal.KeyCode, r rune) {
	s := t.s
	if s.panel.HandleKey(code) {
		return
	}
	switch code {
	case hal.KeyEscape:
		s.Quit()
		return
	case hal.KeyLeft:
		s.controls.Rotate(-orbitStep, 0)
	case hal.KeyRight:
		s.controls.Rotate(orbitStep, 0)
	case hal.KeyUp:
		s.controls.Rotate(0, -orbitStep)
	case hal.KeyDown:
		s.controls.Rotate(0, orbitStep)
	case hal.KeyPageUp:
		s.controls.Zoom(-zoomStep)
	case hal.KeyPageDown:
		s.controls.Zoom(zoomStep)
	case hal.KeyHome:
		s.resetCamera()
		return
	case hal.KeyUnknown:
		switch r {
		case 'q':
			s.Quit()
		case 'w':
			s.renderer.SetRenderMode(nextMode(s.renderer.Mode))
		}
		return
	default:
		return
	}
	s.controls.Update(&s.cam)
}

// resetCamera restores the configured view, or the model framing when a model
// is loaded.
func (s *Session) resetCamera() {
	s.cam.Position = vec3(s.cfg.Camera.Position)
	s.cam.Near, s.cam.Far = s.cfg.Camera.Near, s.cfg.Camera.Far
	s.cam.UpdateProjection()
	s.cam.LookAt(gfx.V3(0, 0, 0))
	s.controls = gfx.OrbitController{}
	s.controls.SyncFromCamera(&s.cam)
	if len(s.ids.model) > 0 {
		s.frameModel()
	}
}

// nextMode cycles wireframe, flat and vertex-color rendering.
func nextMode(m gfx.RenderMode) gfx.RenderMode {
	switch m {
	case gfx.RenderWireframe:
		return gfx.RenderSolidFlat
	case gfx.RenderSolidFlat:
		return gfx.RenderSolidVertexColor
	default:
		return gfx.RenderWireframe
	}
}
