// Package app boots one example on a board: NVS, display, widget tree, the
// example's own bring-up, then the touch and render loop.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"jcboard/examples"
	"jcboard/hal"
	"jcboard/internal/config"
	"jcboard/internal/logging"
	"jcboard/nvs"
	"jcboard/status"
	"jcboard/ui"
)

// HeapInterval is how often an idle board logs its free heap.
const HeapInterval = 5 * time.Second

// System is one booted board running one example.
type System struct {
	h     hal.HAL
	cfg   config.Config
	entry Entry
	level slog.Level
	start time.Time

	log     *slog.Logger
	screen  *ui.Screen
	touch   <-chan hal.TouchEvent
	reboots <-chan struct{}
	cancel  context.CancelFunc
	workers sync.WaitGroup

	mu     sync.Mutex
	halted bool
	booted bool
}

// New boots the named example on h. The platform runner then calls Step
// once per frame.
func New(h hal.HAL, cfg config.Config, name string) (*System, error) {
	e, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	s := &System{h: h, cfg: cfg, entry: e, level: level, start: time.Now()}
	if r, ok := h.System().(hal.Rebooter); ok {
		s.reboots = r.Reboots()
	}
	if in := h.Input(); in != nil {
		if t := in.Touch(); t != nil {
			s.touch = t.Events()
		}
	}
	s.boot()
	return s, nil
}

// Run boots the named example and steps it at hz until ctx ends. A halted
// board keeps its last screen and returns only with ctx.
func Run(ctx context.Context, h hal.HAL, cfg config.Config, name string, hz int) error {
	s, err := New(h, cfg, name)
	if err != nil {
		return err
	}
	if hz <= 0 {
		hz = 60
	}
	t := time.NewTicker(time.Second / time.Duration(hz))
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if err := s.Step(); err != nil {
				return err
			}
		}
	}
}

func (s *System) env() examples.Env {
	return examples.Env{
		HAL:     s.h,
		Log:     s.log,
		Config:  s.cfg,
		Uptime:  func() time.Duration { return time.Since(s.start) },
		Workers: &s.workers,
	}
}

// boot runs the start-up sequence of one power cycle.
func (s *System) boot() {
	meta := s.entry.Meta
	s.log = logging.New(s.h.Logger(), s.level, meta.Tag)
	examples.Banner(s.log, meta.Title, meta.Subtitle)

	bootStep(s.h, "nvs")
	if err := nvs.Init(s.h.NVS(), status.Log(s.log)); err != nil {
		s.fatal("NVS init failed", err)
		return
	}
	if n, err := nvs.BumpBootCount(s.h.NVS()); err != nil {
		s.log.Warn("boot counter", "err", err)
	} else {
		s.log.Debug(fmt.Sprintf("Boot count: %d", n))
	}

	bootStep(s.h, "display")
	s.log.Info("Initializing display...")
	disp := s.h.Display()
	if err := disp.Init(); err != nil {
		s.log.Error("Failed to initialize display!", "err", err)
		return
	}
	s.log.Info("Display initialized")
	if err := disp.Backlight().SetBrightness(100); err != nil {
		s.log.Warn("backlight", "err", err)
	}

	bootStep(s.h, "ui")
	env := s.env()
	ex := s.entry.New(env)
	screen := ui.NewScreen(disp.Framebuffer())
	screen.Update(func() { ex.Build(screen) })
	s.log.Info("UI created")

	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.screen, s.cancel, s.booted = screen, cancel, true
	s.mu.Unlock()

	env.Go(func() { s.run(ctx, ex) })
	env.Go(func() { s.heap(ctx) })
}

func (s *System) run(ctx context.Context, ex examples.Example) {
	defer func() {
		if r := recover(); r != nil {
			s.fatal("panic", fmt.Errorf("%v", r))
		}
	}()
	if err := ex.Start(ctx); err != nil {
		if ctx.Err() == nil {
			s.log.Error("example start failed", "err", err)
		}
		return
	}
	bootStep(s.h, "ready")
	examples.Banner(s.log, ex.Ready()...)
}

func (s *System) heap(ctx context.Context) {
	t := time.NewTicker(HeapInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.log.Info(fmt.Sprintf("Free heap: %d bytes", s.h.System().FreeHeap()))
		}
	}
}

// fatal stops the board on a failure it cannot continue past.
func (s *System) fatal(what string, err error) {
	s.log.Error(what, "err", err)
	s.mu.Lock()
	s.halted = true
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	drawFatal(s.h, s.log, []string{s.entry.Meta.Tag + ": " + what, err.Error()})
}

// Halted reports whether the board stopped on a fatal error.
func (s *System) Halted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.halted
}

// restart tears the running example down and boots it again, as a chip
// reset would.
func (s *System) restart() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel, s.screen, s.booted = nil, nil, false
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.workers.Wait()
	s.drainTouch()
	s.boot()
}

func (s *System) drainTouch() {
	for {
		select {
		case <-s.touch:
		default:
			return
		}
	}
}

// Screen returns the widget tree of the running example, or nil while the
// board is down.
func (s *System) Screen() *ui.Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen
}

// Step handles a pending reboot, feeds queued touches to the screen and
// renders it.
func (s *System) Step() error {
	select {
	case <-s.reboots:
		if !s.Halted() {
			s.restart()
		}
	default:
	}

	s.mu.Lock()
	screen, live := s.screen, s.booted && !s.halted
	s.mu.Unlock()
	if !live {
		return nil
	}

	for pending := true; pending; {
		select {
		case ev := <-s.touch:
			screen.HandleTouch(ev)
		default:
			pending = false
		}
	}
	if _, err := screen.Render(); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}
