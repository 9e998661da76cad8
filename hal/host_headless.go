//go:build !tinygo

package hal

import (
	"context"
	"fmt"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Enabled bool
	Hz      int
	Ticks   uint64
}

// RunHeadless runs the board without opening a window. Touch arrives through
// TouchInjector (see the console).
func RunHeadless(ctx context.Context, cfg HostConfig, hc HeadlessConfig, newApp func(HAL) func() error) error {
	if hc.Hz <= 0 {
		hc.Hz = 60
	}

	h := NewHost(cfg)
	step := newApp(h)

	d := time.Second / time.Duration(hc.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", hc.Hz)
	}
	t := time.NewTicker(d)
	defer t.Stop()

	var tick uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if step != nil {
				if err := step(); err != nil {
					return err
				}
			}
			tick++
			if hc.Ticks > 0 && tick >= hc.Ticks {
				return nil
			}
		}
	}
}
