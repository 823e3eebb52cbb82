package hal

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"os"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Enabled bool
	Hz      int
	Ticks   uint64
	// Realtime paces ticks with a wall-clock ticker. Otherwise ticks run back to
	// back and the frame clock advances by 1000/Hz ms per tick.
	Realtime bool
	// Snapshot, when set, receives the last presented frame as PNG on exit.
	Snapshot string
}

// AppFunc builds the app on h and returns its per-tick step.
type AppFunc func(h HAL) (step func() error, err error)

// RunHeadless runs the viewer without opening a window.
func RunHeadless(ctx context.Context, hc HostConfig, newApp AppFunc, cfg HeadlessConfig) (err error) {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}

	h := newHost(hc, newSimTime())
	step, err := newApp(h)
	if err != nil {
		return err
	}
	if cfg.Snapshot != "" {
		defer func() {
			if serr := writeSnapshot(h.fb, cfg.Snapshot); serr != nil && err == nil {
				err = serr
			}
		}()
	}

	var tickC <-chan time.Time
	if cfg.Realtime {
		t := time.NewTicker(d)
		defer t.Stop()
		tickC = t.C
	}

	var tick uint64
	for {
		if tickC != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tickC:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		if step != nil {
			if err := step(); err != nil {
				if errors.Is(err, ErrQuit) {
					return nil
				}
				return err
			}
		}
		h.t.advance(d)
		tick++
		if cfg.Ticks > 0 && tick >= cfg.Ticks {
			return nil
		}
	}
}

func writeSnapshot(fb *hostFramebuffer, path string) error {
	img := fb.snapshotRGBA(nil)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("snapshot: %w", err)
	}
	return f.Close()
}
