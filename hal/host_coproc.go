//go:build !tinygo

package hal

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"jcboard/internal/errcode"
)

// hostCoProcessor simulates the network chip behind the inter-chip link.
type hostCoProcessor struct {
	mu   sync.Mutex
	up   bool
	fail bool
	wifi *hostWiFi
	ble  BLE
}

func newHostCoProcessor(cfg HostConfig) *hostCoProcessor {
	c := &hostCoProcessor{fail: cfg.TransportFail}
	c.wifi = &hostWiFi{
		co:          c,
		events:      make(chan WiFiEvent, 16),
		aps:         append([]AccessPoint(nil), cfg.AccessPoints...),
		scanDelay:   cfg.ScanDelay,
		disconnects: cfg.WiFiDisconnects,
		joinDelay:   300 * time.Millisecond,
	}
	if cfg.BLESystem {
		c.ble = newSystemBLE(c)
	} else {
		c.ble = &simBLE{co: c, devices: append([]Advertisement(nil), cfg.BLEDevices...)}
	}
	return c
}

func (c *hostCoProcessor) InitTransport() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return &errcode.E{C: errcode.HardwareAbsent, Op: "transport init", Msg: "co-processor not responding"}
	}
	c.up = true
	return nil
}

func (c *hostCoProcessor) ready() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.up {
		return &errcode.E{C: errcode.NotReady, Op: "co-processor", Msg: "transport not initialised"}
	}
	return nil
}

func (c *hostCoProcessor) WiFi() WiFi { return c.wifi }
func (c *hostCoProcessor) BLE() BLE   { return c.ble }

type hostWiFi struct {
	co *hostCoProcessor

	mu          sync.Mutex
	inited      bool
	started     bool
	station     StationConfig
	ip          string
	events      chan WiFiEvent
	aps         []AccessPoint
	scanDelay   time.Duration
	joinDelay   time.Duration
	disconnects int
}

func (w *hostWiFi) Init() error {
	if err := w.co.ready(); err != nil {
		return err
	}
	w.mu.Lock()
	w.inited = true
	w.mu.Unlock()
	return nil
}

func (w *hostWiFi) Configure(cfg StationConfig) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.inited {
		return &errcode.E{C: errcode.NotReady, Op: "wifi configure", Msg: "wifi not initialised"}
	}
	w.station = cfg
	return nil
}

func (w *hostWiFi) Start() error {
	w.mu.Lock()
	if !w.inited {
		w.mu.Unlock()
		return &errcode.E{C: errcode.NotReady, Op: "wifi start", Msg: "wifi not initialised"}
	}
	w.started = true
	w.mu.Unlock()
	w.emit(WiFiEvent{Kind: WiFiStaStart})
	return nil
}

func (w *hostWiFi) emit(ev WiFiEvent) {
	select {
	case w.events <- ev:
	default:
	}
}

func (w *hostWiFi) Events() <-chan WiFiEvent { return w.events }

// Connect joins asynchronously. The first `disconnects` attempts fail.
func (w *hostWiFi) Connect() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return &errcode.E{C: errcode.NotReady, Op: "wifi connect", Msg: "station not started"}
	}
	fail := w.disconnects > 0 || w.station.SSID == ""
	if w.disconnects > 0 {
		w.disconnects--
	}
	time.AfterFunc(w.joinDelay, func() {
		if fail {
			w.emit(WiFiEvent{Kind: WiFiStaDisconnected})
			return
		}
		w.mu.Lock()
		w.ip = "192.168.4.23"
		w.mu.Unlock()
		w.emit(WiFiEvent{Kind: WiFiGotIP, IP: "192.168.4.23"})
	})
	return nil
}

func (w *hostWiFi) connected() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ip != ""
}

func (w *hostWiFi) Scan(ctx context.Context, cfg ScanConfig) ([]AccessPoint, error) {
	w.mu.Lock()
	started := w.started
	delay := w.scanDelay
	aps := append([]AccessPoint(nil), w.aps...)
	w.mu.Unlock()
	if !started {
		return nil, &errcode.E{C: errcode.NotReady, Op: "wifi scan", Msg: "station not started"}
	}

	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return nil, &errcode.E{C: errcode.Network, Op: "wifi scan", Err: ctx.Err()}
	case <-t.C:
	}

	out := aps[:0]
	for _, ap := range aps {
		if ap.SSID == "" && !cfg.ShowHidden {
			continue
		}
		out = append(out, ap)
	}
	return out, nil
}

// simBLE replays configured advertisers once a second with some RSSI jitter.
type simBLE struct {
	co      *hostCoProcessor
	mu      sync.Mutex
	inited  bool
	devices []Advertisement
}

func (b *simBLE) Init() error {
	if err := b.co.ready(); err != nil {
		return err
	}
	b.mu.Lock()
	b.inited = true
	b.mu.Unlock()
	return nil
}

func (b *simBLE) Scan(ctx context.Context, window time.Duration, fn func(Advertisement)) error {
	b.mu.Lock()
	inited := b.inited
	devs := append([]Advertisement(nil), b.devices...)
	b.mu.Unlock()
	if !inited {
		return &errcode.E{C: errcode.NotReady, Op: "ble scan", Msg: "bluetooth not initialised"}
	}

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	end := time.NewTimer(window)
	defer end.Stop()
	tick := time.NewTicker(time.Second)
	defer tick.Stop()

	report := func() {
		for _, d := range devs {
			d.RSSI += int8(rnd.Intn(7) - 3)
			fn(d)
		}
	}
	report()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-end.C:
			return nil
		case <-tick.C:
			report()
		}
	}
}
