package hal

import (
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/muesli/termenv"
)

// HostConfig sizes the host framebuffer and window.
type HostConfig struct {
	Width  int
	Height int
	// Scale multiplies the window size; the framebuffer keeps Width x Height.
	Scale int
	Title string
}

func (c HostConfig) withDefaults() HostConfig {
	if c.Width <= 0 {
		c.Width = 320
	}
	if c.Height <= 0 {
		c.Height = 240
	}
	if c.Scale <= 0 {
		c.Scale = 2
	}
	if c.Title == "" {
		c.Title = "frost"
	}
	return c
}

type hostHAL struct {
	logger *hostLogger
	fb     *hostFramebuffer
	kbd    *hostKeyboard
	t      *hostTime
}

func newHost(cfg HostConfig, t *hostTime) *hostHAL {
	cfg = cfg.withDefaults()
	return &hostHAL{
		logger: newHostLogger(os.Stdout),
		fb:     newHostFramebuffer(cfg.Width, cfg.Height),
		kbd:    newHostKeyboard(),
		t:      t,
	}
}

func (h *hostHAL) Logger() Logger   { return h.logger }
func (h *hostHAL) Display() Display { return hostDisplay{fb: h.fb} }
func (h *hostHAL) Input() Input     { return hostInput{kbd: h.kbd} }
func (h *hostHAL) Time() Time       { return h.t }

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

type hostInput struct {
	kbd *hostKeyboard
}

func (in hostInput) Keyboard() Keyboard { return in.kbd }

// hostLogger writes lines to a terminal, highlighting "warn:" and "error:" lines
// when the output supports color.
type hostLogger struct {
	mu  sync.Mutex
	out *termenv.Output
}

func newHostLogger(w io.Writer) *hostLogger {
	return &hostLogger{out: termenv.NewOutput(w)}
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch {
	case strings.HasPrefix(s, "error:"):
		s = l.out.String(s).Foreground(termenv.ANSIBrightRed).String()
	case strings.HasPrefix(s, "warn:"):
		s = l.out.String(s).Foreground(termenv.ANSIYellow).String()
	}
	io.WriteString(l.out, s)
	io.WriteString(l.out, "\n")
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.WriteLineString(string(b))
}

// hostTime is either wall clock or a simulated clock advanced per host tick.
type hostTime struct {
	start time.Time
	sim   bool
	ms    atomic.Uint64
}

func newWallTime() *hostTime { return &hostTime{start: time.Now()} }

func newSimTime() *hostTime { return &hostTime{sim: true} }

func (t *hostTime) Millis() uint64 {
	if t.sim {
		return t.ms.Load()
	}
	return uint64(time.Since(t.start) / time.Millisecond)
}

func (t *hostTime) advance(d time.Duration) {
	if t.sim {
		t.ms.Add(uint64(d / time.Millisecond))
	}
}
