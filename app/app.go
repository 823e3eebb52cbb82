// Package app wires the winter scene onto a HAL: kernel, services, animation
// loops and the session task that applies loaded assets and input.
package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync/atomic"

	"frost/hal"
	"frost/internal/buildinfo"
	"frost/internal/config"
	logclient "frost/stage/client/logger"
	"frost/stage/framing"
	"frost/stage/gfx"
	"frost/stage/kernel"
	"frost/stage/panel"
	"frost/stage/proto"
	"frost/stage/services/assets"
	"frost/stage/services/logger"
	"frost/stage/tasks/spin"
)

// Session owns everything one running viewer needs. Create it with New and
// release it with Close.
type Session struct {
	cfg config.Config
	h   hal.HAL
	k   *kernel.Kernel

	fb       hal.Framebuffer
	target   gfx.Target
	scene    *gfx.Scene
	ids      sceneIDs
	terrain  []gfx.Vertex // undisplaced terrain vertices
	cam      gfx.Camera
	controls gfx.OrbitController
	renderer *gfx.Renderer
	panel    *panel.Panel

	loader  *assets.Loader
	applied map[uint32]uint32 // asset id -> last applied generation

	logCap kernel.Capability
	keyCap kernel.Capability // session inbox, send side
	svcCap kernel.Capability // asset service, send side

	cubes   *spin.Loop
	spheres *spin.Loop

	quit   atomic.Bool
	closed bool
}

// New builds the scene described by cfg on h. assetFS supplies textures and
// models; nil opens cfg.Assets.Root from disk, which also enables hot reload
// when cfg.Assets.Watch is set.
func New(ctx context.Context, h hal.HAL, cfg config.Config, assetFS fs.FS) (*Session, error) {
	if h == nil {
		return nil, errors.New("app: nil HAL")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	s := &Session{
		cfg:     cfg,
		h:       h,
		k:       kernel.New(),
		panel:   panel.New(),
		applied: map[uint32]uint32{},
	}
	s.k.SetPanicHandler(s.onPanic)
	s.setupTarget()

	s.scene, s.ids, s.terrain = buildScene(cfg)
	w, ht := s.target.Size()
	s.cam = gfx.NewCamera(cfg.Camera.FOV, float32(w)/float32(ht), cfg.Camera.Near, cfg.Camera.Far)
	s.cam.Position = vec3(cfg.Camera.Position)
	s.cam.LookAt(gfx.V3(0, 0, 0))
	s.controls.SyncFromCamera(&s.cam)
	s.renderer = gfx.NewRenderer(w, ht, true)

	s.panel.SetVisible(cfg.Panel.Visible)
	if m := s.scene.Mesh(s.ids.terrain); m != nil {
		s.panel.Add("terrain rot x", &m.Rotation.X).Min(0).Max(100)
	}

	logEP := s.k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	sessEP := s.k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	svcEP := s.k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	s.logCap = logEP.Restrict(kernel.RightSend)
	s.keyCap = sessEP.Restrict(kernel.RightSend)
	s.svcCap = svcEP.Restrict(kernel.RightSend)

	watchRoot := ""
	if assetFS == nil {
		assetFS = os.DirFS(cfg.Assets.Root)
		if cfg.Assets.Watch {
			watchRoot = cfg.Assets.Root
		}
	}
	s.loader = assets.NewLoader(assetFS, s.k, s.keyCap, s.logCap, assets.Options{
		MaxTextureSize: cfg.Assets.MaxTextureSize,
		Workers:        cfg.Assets.Workers,
	})
	s.loader.Start(ctx)
	if watchRoot != "" {
		if err := s.loader.Watch(watchRoot); err != nil {
			logclient.Post(s.k, s.logCap, proto.LogWarn, err.Error())
		}
	}

	s.cubes = spin.New(spin.Config{
		Name:           "cubes",
		IDs:            s.ids.cubes,
		SpeedIncrement: cfg.Spin.CubeSpeedIncrement,
	}, s.scene, s, s.logCap)
	s.spheres = spin.New(spin.Config{
		Name:           "sphere",
		IDs:            []int{s.ids.sphere},
		SpeedIncrement: cfg.Spin.SphereSpeedIncrement,
	}, s.scene, s, s.logCap)

	tasks := []kernel.Task{
		logger.New(h.Logger(), logEP.Restrict(kernel.RightRecv)),
		assets.NewService(svcEP.Restrict(kernel.RightRecv), s.loader),
		&sessionTask{s: s, ep: sessEP.Restrict(kernel.RightRecv), reqs: assetRequests(cfg)},
		s.cubes,
		s.spheres,
	}
	for _, t := range tasks {
		if _, ok := s.k.AddTask(t); !ok {
			s.loader.Close()
			return nil, errors.New("app: kernel task table full")
		}
	}
	return s, nil
}

// setupTarget renders straight into the host framebuffer when it is RGB565,
// otherwise into an offscreen image.
func (s *Session) setupTarget() {
	w, h := s.cfg.Window.Width, s.cfg.Window.Height
	if d := s.h.Display(); d != nil {
		if fb := d.Framebuffer(); fb != nil && fb.Format() == hal.PixelFormatRGB565 {
			s.fb = fb
			s.target = &gfx.RGB565Target{Buf: fb.Buffer(), Stride: fb.StrideBytes(), W: fb.Width(), H: fb.Height()}
			return
		}
	}
	s.target = gfx.NewImageTarget(w, h)
}

// Step runs one host frame: forward input, advance the frame clock, run the
// kernel and present. It returns hal.ErrQuit once the viewer should exit.
func (s *Session) Step() error {
	if s.closed {
		return hal.ErrQuit
	}
	s.forwardKeys()
	if t := s.h.Time(); t != nil {
		s.k.Tick(t.Millis())
	}
	s.k.RunFrame()
	if s.quit.Load() {
		return hal.ErrQuit
	}
	if s.fb != nil {
		if err := s.fb.Present(); err != nil {
			return fmt.Errorf("present: %w", err)
		}
	}
	return nil
}

func (s *Session) forwardKeys() {
	in := s.h.Input()
	if in == nil {
		return
	}
	kbd := in.Keyboard()
	if kbd == nil {
		return
	}
	ch := kbd.Events()
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			res := s.k.Post(s.keyCap, uint16(proto.MsgKey), proto.KeyPayload(uint16(ev.Code), ev.Press, ev.Rune))
			if res != kernel.SendOK {
				// Mailbox full: leave the rest for the next frame.
				return
			}
		default:
			return
		}
	}
}

// Render draws the scene through the current camera and overlays the panel.
// Both animation loops call it once per frame.
func (s *Session) Render() {
	s.renderer.Render(s.target, s.scene, &s.cam)
	s.panel.Draw(s.target)
}

// Quit asks the session to stop; the next Step returns hal.ErrQuit.
func (s *Session) Quit() { s.quit.Store(true) }

// Close stops the animation loops and the asset loader.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.cubes.Stop()
	s.spheres.Stop()
	return s.loader.Close()
}

// Kernel returns the session's task kernel.
func (s *Session) Kernel() *kernel.Kernel { return s.k }

// Scene returns the rendered scene. Mutate it only from kernel tasks.
func (s *Session) Scene() *gfx.Scene { return s.scene }

// Camera returns the viewing camera.
func (s *Session) Camera() *gfx.Camera { return &s.cam }

// Panel returns the parameter panel overlay.
func (s *Session) Panel() *panel.Panel { return s.panel }

// Loader returns the asset loader feeding the scene.
func (s *Session) Loader() *assets.Loader { return s.loader }

// Loops returns the cube and sphere animation loops.
func (s *Session) Loops() (cubes, spheres *spin.Loop) {
	return s.cubes, s.spheres
}

// frameModel points the camera at the loaded model meshes.
func (s *Session) frameModel() {
	v, ok := framing.VolumeOf(s.scene.Bounds(s.ids.model...))
	if !ok {
		return
	}
	if _, err := framing.FitModel(v, &s.cam, &s.controls); err != nil {
		logclient.Post(s.k, s.logCap, proto.LogWarn, "frame model: "+err.Error())
	}
}

func startupLine(cfg config.Config) string {
	return fmt.Sprintf("frost %s: %dx%d, assets %q", buildinfo.Short(), cfg.Window.Width, cfg.Window.Height, cfg.Assets.Root)
}
