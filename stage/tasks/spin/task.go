// Package spin animates a group of meshes from the kernel frame clock.
package spin

import (
	"sync/atomic"

	logclient "frost/stage/client/logger"
	"frost/stage/kernel"
)

// Scene is the part of the scene graph a loop mutates.
type Scene interface {
	SetRotationXY(id int, x, y float32)
}

// Renderer redraws the whole scene through the current camera.
type Renderer interface {
	Render()
}

// Config describes one animated group.
type Config struct {
	Name string
	// IDs are the scene mesh ids, in the order that selects their speed.
	IDs []int
	// SpeedIncrement is added to the rotation speed for each successive object.
	SpeedIncrement float32
}

// Loop is a kernel task that rotates its objects and renders once per frame.
type Loop struct {
	cfg    Config
	scene  Scene
	render Renderer
	logCap kernel.Capability

	stopped atomic.Bool
	started bool
	frames  uint64
	last    float32
}

// New returns a loop over cfg.IDs in scene. render is called once per frame;
// logCap may be the zero capability.
func New(cfg Config, scene Scene, render Renderer, logCap kernel.Capability) *Loop {
	ids := make([]int, len(cfg.IDs))
	copy(ids, cfg.IDs)
	cfg.IDs = ids
	return &Loop{cfg: cfg, scene: scene, render: render, logCap: logCap}
}

// Angle returns the rotation in radians of object i at sec seconds.
func Angle(sec float32, i int, increment float32) float32 {
	return sec * (1 + float32(i)*increment)
}

// Name returns the configured loop name.
func (l *Loop) Name() string { return l.cfg.Name }

// Frames returns the number of frames this loop has rendered.
func (l *Loop) Frames() uint64 { return l.frames }

// Seconds returns the frame time used by the most recent step.
func (l *Loop) Seconds() float32 { return l.last }

// Stop cancels the loop. The task exits on its next step; no further render happens.
func (l *Loop) Stop() { l.stopped.Store(true) }

// Step advances the loop by one frame: it rotates every object, renders once
// and blocks until the next tick.
func (l *Loop) Step(ctx *kernel.Context) {
	if l.stopped.Load() {
		if l.logCap.Valid() {
			logclient.Infof(ctx, l.logCap, "spin %s: stopped after %d frames", l.cfg.Name, l.frames)
		}
		ctx.Exit()
		return
	}
	if !l.started {
		l.started = true
		if l.logCap.Valid() {
			logclient.Infof(ctx, l.logCap, "spin %s: %d objects", l.cfg.Name, len(l.cfg.IDs))
		}
	}

	sec := float32(ctx.Now()) * 0.001
	l.last = sec
	if l.scene != nil {
		for i, id := range l.cfg.IDs {
			a := Angle(sec, i, l.cfg.SpeedIncrement)
			l.scene.SetRotationXY(id, a, a)
		}
	}
	if l.render != nil {
		l.render.Render()
	}
	l.frames++
	ctx.BlockOnTick()
}
