package panel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frost/hal"
	"frost/stage/gfx"
)

func TestSetClampsAndSnaps(t *testing.T) {
	v := float32(0)
	p := New()
	s := p.Add("rotation x", &v).Min(0).Max(100).Step(0.5)

	s.Set(-3)
	assert.Equal(t, float32(0), v)
	s.Set(250)
	assert.Equal(t, float32(100), v)
	s.Set(12.3)
	assert.Equal(t, float32(12.5), v)
}

func TestNudgeUsesImpliedStep(t *testing.T) {
	v := float32(-1.5707964)
	p := New()
	s := p.Add("rotation x", &v).Min(0).Max(100)
	assert.Equal(t, float32(-1.5707964), v, "binding does not touch the value")

	s.Nudge(1)
	assert.Equal(t, float32(0), v, "clamped up to min")
	s.Nudge(1)
	assert.InDelta(t, 0.1, v, 1e-6)

	zero := float32(0)
	z := p.Add("zero", &zero)
	z.Nudge(1)
	assert.Equal(t, float32(1), zero)
}

func TestHandleKeySelectsAndNudges(t *testing.T) {
	a, b := float32(1), float32(10)
	p := New()
	p.Add("a", &a).Min(0).Max(5).Step(1)
	p.Add("b", &b).Min(0).Max(20).Step(2)

	require.Equal(t, "a", p.Selected().Name())
	assert.True(t, p.HandleKey(hal.KeyRight))
	assert.Equal(t, float32(2), a)

	assert.True(t, p.HandleKey(hal.KeyDown))
	assert.Equal(t, "b", p.Selected().Name())
	assert.True(t, p.HandleKey(hal.KeyLeft))
	assert.Equal(t, float32(8), b)
	assert.True(t, p.HandleKey(hal.KeyPageUp))
	assert.Equal(t, float32(20), b)

	assert.True(t, p.HandleKey(hal.KeyDown), "selection wraps")
	assert.Equal(t, "a", p.Selected().Name())
	assert.True(t, p.HandleKey(hal.KeyUp))
	assert.Equal(t, "b", p.Selected().Name())

	assert.False(t, p.HandleKey(hal.KeyEnter))
}

func TestHiddenPanelOnlyTakesTab(t *testing.T) {
	v := float32(1)
	p := New()
	p.Add("v", &v).Step(1)

	assert.True(t, p.HandleKey(hal.KeyTab))
	assert.False(t, p.Visible())
	assert.False(t, p.HandleKey(hal.KeyRight))
	assert.Equal(t, float32(1), v)

	assert.True(t, p.HandleKey(hal.KeyTab))
	assert.True(t, p.Visible())
}

func TestEmptyPanel(t *testing.T) {
	p := New()
	assert.Nil(t, p.Selected())
	assert.False(t, p.HandleKey(hal.KeyDown))
	p.Draw(gfx.NewImageTarget(32, 32))
}

func TestDrawPaintsTopRightOnly(t *testing.T) {
	v := float32(50)
	p := New()
	p.Add("level", &v).Min(0).Max(100)

	img := gfx.NewImageTarget(200, 100)
	black := gfx.RGB(0, 0, 0)
	img.Clear(black)
	p.Draw(img)

	assert.Equal(t, black, img.At(0, 0), "left side untouched")
	assert.Equal(t, black, img.At(199, 99), "below the panel untouched")
	assert.NotEqual(t, black, img.At(199, 0), "panel background drawn")

	p.SetVisible(false)
	img.Clear(black)
	p.Draw(img)
	assert.Equal(t, black, img.At(199, 0))
}

func TestStatusLineDrawsWhileHidden(t *testing.T) {
	p := New()
	p.SetVisible(false)
	p.SetStatus("task 3 panicked")

	img := gfx.NewImageTarget(120, 40)
	black := gfx.RGB(0, 0, 0)
	img.Clear(black)
	p.Draw(img)
	assert.NotEqual(t, black, img.At(119, 39), "status bar drawn")
	assert.Equal(t, black, img.At(119, 0))

	p.SetStatus("")
	img.Clear(black)
	p.Draw(img)
	assert.Equal(t, black, img.At(119, 39))
}
