// Package ble keeps the list of advertisers seen during a scan window.
package ble

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"jcboard/hal"
	"jcboard/internal/errcode"
	"jcboard/status"
)

const (
	MaxDevices = 20
	ScanWindow = 10 * time.Second
)

// UnknownName is shown for advertisers that never sent a name.
const UnknownName = "(Unknown Device)"

// Device is one advertiser.
type Device struct {
	Addr hal.BDAddr
	Name string
	RSSI int8
}

// DisplayName is Name, or UnknownName when no name was seen.
func (d Device) DisplayName() string {
	if d.Name == "" {
		return UnknownName
	}
	return d.Name
}

// Detail renders the second line of a device row.
func (d Device) Detail() string {
	return fmt.Sprintf("%s  |  RSSI: %d dBm", d.Addr, d.RSSI)
}

// List is a mutex-guarded, capped, insertion-ordered device table.
type List struct {
	mu      sync.Mutex
	devices []Device
}

// Observe records one advertisement. A known address gets the latest RSSI
// and keeps its first non-empty name; a new address is appended while the
// list is below MaxDevices.
func (l *List) Observe(addr hal.BDAddr, name string, rssi int8) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.devices {
		d := &l.devices[i]
		if d.Addr != addr {
			continue
		}
		d.RSSI = rssi
		if d.Name == "" && name != "" {
			d.Name = name
		}
		return
	}
	if len(l.devices) < MaxDevices {
		l.devices = append(l.devices, Device{Addr: addr, Name: name, RSSI: rssi})
	}
}

func (l *List) Clear() {
	l.mu.Lock()
	l.devices = l.devices[:0]
	l.mu.Unlock()
}

func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.devices)
}

// Snapshot copies the devices for rendering outside the list lock.
func (l *List) Snapshot() []Device {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Device(nil), l.devices...)
}

// Scanner runs one scan window at a time over a radio.
type Scanner struct {
	radio  hal.BLE
	list   *List
	obs    status.Observer
	window time.Duration

	scanning atomic.Bool
}

func NewScanner(radio hal.BLE, list *List, obs status.Observer) *Scanner {
	if obs == nil {
		obs = status.Nop
	}
	return &Scanner{radio: radio, list: list, obs: obs, window: ScanWindow}
}

// SetWindow changes the scan window length. Non-positive values are ignored.
func (s *Scanner) SetWindow(d time.Duration) {
	if d > 0 {
		s.window = d
	}
}

// Scanning reports whether a window is open.
func (s *Scanner) Scanning() bool { return s.scanning.Load() }

// Scan clears the list and fills it for one window. A second call while a
// window is open returns errcode.Busy without touching the list.
func (s *Scanner) Scan(ctx context.Context) (int, error) {
	if !s.scanning.CompareAndSwap(false, true) {
		s.obs.Notify(status.Event{Source: "ble", Kind: status.Info, Message: "Scan already in progress"})
		return 0, &errcode.E{C: errcode.Busy, Op: "ble scan", Msg: "scan already in progress"}
	}
	defer s.scanning.Store(false)

	s.list.Clear()
	s.obs.Notify(status.Event{Source: "ble", Kind: status.Progress, Message: "Status: Scanning..."})
	err := s.radio.Scan(ctx, s.window, func(a hal.Advertisement) {
		s.list.Observe(a.Addr, a.Name, a.RSSI)
	})
	n := s.list.Len()
	if err != nil {
		err = fmt.Errorf("ble scan: %w", err)
		s.obs.Notify(status.Event{Source: "ble", Kind: status.Failure, Message: "Scan failed", Err: err})
		return n, err
	}
	s.obs.Notify(status.Event{Source: "ble", Kind: status.Success, Message: fmt.Sprintf("Scan complete, found %d devices", n)})
	return n, nil
}
