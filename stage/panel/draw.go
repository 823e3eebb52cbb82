package panel

import (
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"

	"frost/stage/gfx"
)

var (
	colorPanelBG = color.RGBA{R: 0x10, G: 0x12, B: 0x18, A: 0xff}
	colorFG      = color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
	colorDim     = color.RGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xff}
	colorSelBG   = color.RGBA{R: 0x2a, G: 0x4a, B: 0x7a, A: 0xff}
	colorBar     = color.RGBA{R: 0x5a, G: 0xb0, B: 0xe0, A: 0xff}
	colorTrack   = color.RGBA{R: 0x30, G: 0x30, B: 0x30, A: 0xff}
	colorAlert   = color.RGBA{R: 0xff, G: 0x55, B: 0x44, A: 0xff}
)

const (
	panelWidth = 104
	padding    = 2
	barHeight  = 2
)

// targetDisplay adapts a gfx.Target to the tinyfont drawing interface.
type targetDisplay struct {
	t gfx.Target
}

var _ drivers.Displayer = targetDisplay{}

func (d targetDisplay) Size() (x, y int16) {
	w, h := d.t.Size()
	return int16(w), int16(h)
}

func (d targetDisplay) SetPixel(x, y int16, c color.RGBA) {
	d.t.SetPixel(int(x), int(y), gfx.RGB(c.R, c.G, c.B))
}

func (d targetDisplay) Display() error { return nil }

func (d targetDisplay) fill(x0, y0, w, h int, c color.RGBA) {
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			d.SetPixel(int16(x), int16(y), c)
		}
	}
}

// Draw paints the sliders in the top-right corner of t and the status line
// along the bottom. Sliders are skipped while the panel is hidden.
func (p *Panel) Draw(t gfx.Target) {
	if t == nil {
		return
	}
	tw, th := t.Size()
	if tw <= 0 || th <= 0 {
		return
	}
	d := targetDisplay{t: t}
	if p.status != "" {
		lineH := int(p.font.GetYAdvance())
		d.fill(0, th-lineH-padding, tw, lineH+padding, colorPanelBG)
		tinyfont.WriteLine(d, p.font, padding, int16(th-padding), p.status, colorAlert)
	}
	if !p.visible || len(p.sliders) == 0 {
		return
	}

	lineH := int(p.font.GetYAdvance())
	rowH := lineH + barHeight + padding
	w := panelWidth
	if w > tw {
		w = tw
	}
	h := len(p.sliders)*rowH + padding
	x0 := tw - w
	d.fill(x0, 0, w, h, colorPanelBG)

	for i, s := range p.sliders {
		y := padding + i*rowH
		if y+rowH > th {
			break
		}
		fg := colorDim
		if i == p.sel {
			d.fill(x0, y-1, w, rowH, colorSelBG)
			fg = colorFG
		}
		baseline := int16(y + lineH - 1)
		tinyfont.WriteLine(d, p.font, int16(x0+padding), baseline, s.name, fg)

		val := formatValue(s.Value())
		_, vw := tinyfont.LineWidth(p.font, val)
		tinyfont.WriteLine(d, p.font, int16(x0+w-padding-int(vw)), baseline, val, fg)

		if frac, ok := s.fraction(); ok {
			barY := y + lineH
			barW := w - 2*padding
			d.fill(x0+padding, barY, barW, barHeight, colorTrack)
			d.fill(x0+padding, barY, int(frac*float32(barW)+0.5), barHeight, colorBar)
		}
	}
}
