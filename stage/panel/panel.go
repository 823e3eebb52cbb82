// Package panel is a keyboard-driven parameter overlay.
//
// Sliders bind to float32 fields owned by the caller and write through them
// directly, so the bound value is always the source of truth.
package panel

import (
	"fmt"

	"github.com/chewxy/math32"
	"tinygo.org/x/tinyfont"

	"frost/hal"
	"frost/stage/gfx"
)

// Slider edits one float32 in place.
type Slider struct {
	name string
	v    *float32

	min, max   float32
	hasMin     bool
	hasMax     bool
	step       float32
	impliedStp float32
}

// Min sets the lower bound.
func (s *Slider) Min(v float32) *Slider {
	s.min, s.hasMin = v, true
	return s
}

// Max sets the upper bound.
func (s *Slider) Max(v float32) *Slider {
	s.max, s.hasMax = v, true
	return s
}

// Step sets the increment used by Nudge. Values written through the slider
// snap to multiples of it.
func (s *Slider) Step(v float32) *Slider {
	if v > 0 {
		s.step = v
	}
	return s
}

func (s *Slider) Name() string   { return s.name }
func (s *Slider) Value() float32 { return *s.v }

// Set clamps v into range, snaps it to the step and stores it.
func (s *Slider) Set(v float32) {
	if math32.IsNaN(v) {
		return
	}
	if s.hasMin && v < s.min {
		v = s.min
	}
	if s.hasMax && v > s.max {
		v = s.max
	}
	if s.step > 0 {
		v = math32.Round(v/s.step) * s.step
	}
	*s.v = v
}

// Nudge moves the value by dir steps.
func (s *Slider) Nudge(dir int) {
	s.Set(*s.v + float32(dir)*s.increment())
}

func (s *Slider) increment() float32 {
	if s.step > 0 {
		return s.step
	}
	return s.impliedStp
}

// fraction is the value's position in [0,1] when both bounds are set.
func (s *Slider) fraction() (float32, bool) {
	if !s.hasMin || !s.hasMax || s.max <= s.min {
		return 0, false
	}
	return gfx.Clamp01((*s.v - s.min) / (s.max - s.min)), true
}

// impliedStep derives a step from the magnitude of the initial value: one
// tenth of its leading power of ten.
func impliedStep(v float32) float32 {
	if v == 0 || math32.IsNaN(v) || math32.IsInf(v, 0) {
		return 1
	}
	return math32.Pow(10, math32.Floor(math32.Log10(math32.Abs(v)))) / 10
}

// Panel is an ordered list of sliders with a selection cursor.
type Panel struct {
	sliders []*Slider
	sel     int
	visible bool
	status  string
	font    tinyfont.Fonter
}

func New() *Panel {
	return &Panel{visible: true, font: &tinyfont.TomThumb}
}

// Add binds v to a new slider. v must stay valid for the panel's lifetime.
func (p *Panel) Add(name string, v *float32) *Slider {
	s := &Slider{name: name, v: v, impliedStp: impliedStep(*v)}
	p.sliders = append(p.sliders, s)
	return s
}

func (p *Panel) Len() int          { return len(p.sliders) }
func (p *Panel) Visible() bool     { return p.visible }
func (p *Panel) SetVisible(v bool) { p.visible = v }

// SetStatus sets a one-line message drawn along the bottom edge whether or not
// the sliders are visible. An empty string clears it.
func (p *Panel) SetStatus(s string) { p.status = s }

func (p *Panel) Status() string { return p.status }

// Selected returns the slider under the cursor or nil when the panel is empty.
func (p *Panel) Selected() *Slider {
	if len(p.sliders) == 0 {
		return nil
	}
	return p.sliders[p.sel]
}

// HandleKey applies a key press and reports whether the panel consumed it.
// A hidden panel only reacts to Tab.
func (p *Panel) HandleKey(code hal.KeyCode) bool {
	if code == hal.KeyTab {
		p.visible = !p.visible
		return true
	}
	if !p.visible || len(p.sliders) == 0 {
		return false
	}
	switch code {
	case hal.KeyUp:
		p.sel = (p.sel + len(p.sliders) - 1) % len(p.sliders)
	case hal.KeyDown:
		p.sel = (p.sel + 1) % len(p.sliders)
	case hal.KeyLeft:
		p.sliders[p.sel].Nudge(-1)
	case hal.KeyRight:
		p.sliders[p.sel].Nudge(1)
	case hal.KeyPageDown:
		p.sliders[p.sel].Nudge(-10)
	case hal.KeyPageUp:
		p.sliders[p.sel].Nudge(10)
	default:
		return false
	}
	return true
}

func formatValue(v float32) string {
	return fmt.Sprintf("%.2f", v)
}
