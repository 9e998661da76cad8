// Package netbridge brings up the network co-processor and runs WiFi on top
// of it: scanning, station join with retry, and HTTP fetches.
package netbridge

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"jcboard/hal"
	"jcboard/internal/errcode"
	"jcboard/status"
)

// SettleDelay is how long the inter-chip transport needs after init before
// the radio APIs answer.
const SettleDelay = 500 * time.Millisecond

// Bridge owns the co-processor link and fans WiFi events out to handlers.
type Bridge struct {
	co  hal.CoProcessor
	obs status.Observer

	after func(time.Duration) <-chan time.Time

	mu       sync.Mutex
	handlers []func(hal.WiFiEvent)
	pumping  bool
}

func New(co hal.CoProcessor, obs status.Observer) *Bridge {
	if obs == nil {
		obs = status.Nop
	}
	return &Bridge{co: co, obs: obs, after: time.After}
}

// Start initialises the transport and waits SettleDelay. A transport that
// does not come up is a fatal configuration error.
func (b *Bridge) Start(ctx context.Context) error {
	b.obs.Notify(status.Event{Source: "netbridge", Kind: status.Progress, Message: "Initializing ESP-HOSTED..."})
	if b.co == nil {
		err := &errcode.E{C: errcode.FatalConfig, Op: "transport init", Msg: "no co-processor"}
		b.obs.Notify(status.Event{Source: "netbridge", Kind: status.Failure, Message: "ESP-HOSTED init failed!", Err: err})
		return err
	}
	if err := b.co.InitTransport(); err != nil {
		err = &errcode.E{C: errcode.FatalConfig, Op: "transport init", Err: err}
		b.obs.Notify(status.Event{Source: "netbridge", Kind: status.Failure, Message: "ESP-HOSTED init failed!", Err: err})
		return err
	}
	b.obs.Notify(status.Event{Source: "netbridge", Kind: status.Success, Message: "ESP-HOSTED initialized"})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.after(SettleDelay):
	}
	return nil
}

// Handle registers fn for every WiFi event. Handlers run on the pump
// goroutine in registration order.
func (b *Bridge) Handle(fn func(hal.WiFiEvent)) {
	b.mu.Lock()
	b.handlers = append(b.handlers, fn)
	b.mu.Unlock()
}

// WiFi returns the station interface.
func (b *Bridge) WiFi() hal.WiFi { return b.co.WiFi() }

// StartWiFi initialises station mode, starts the event pump, applies st
// when non-nil and starts the station. The pump stops with ctx.
func (b *Bridge) StartWiFi(ctx context.Context, st *hal.StationConfig) (hal.WiFi, error) {
	w := b.co.WiFi()
	b.obs.Notify(status.Event{Source: "netbridge", Kind: status.Progress, Message: "Initializing WiFi..."})
	if err := w.Init(); err != nil {
		return nil, fmt.Errorf("wifi init: %w", err)
	}

	b.mu.Lock()
	if !b.pumping {
		b.pumping = true
		go b.pump(ctx, w.Events())
	}
	b.mu.Unlock()

	if st != nil {
		if err := w.Configure(*st); err != nil {
			return nil, fmt.Errorf("wifi configure: %w", err)
		}
	}
	if err := w.Start(); err != nil {
		return nil, fmt.Errorf("wifi start: %w", err)
	}
	b.obs.Notify(status.Event{Source: "netbridge", Kind: status.Success, Message: "WiFi initialized in station mode"})
	return w, nil
}

func (b *Bridge) pump(ctx context.Context, events <-chan hal.WiFiEvent) {
	defer func() {
		b.mu.Lock()
		b.pumping = false
		b.mu.Unlock()
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			b.mu.Lock()
			hs := slices.Clone(b.handlers)
			b.mu.Unlock()
			for _, h := range hs {
				h(ev)
			}
		}
	}
}
