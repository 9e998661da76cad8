//go:build !tinygo

package hal

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"
)

// systemBLE scans with the host's own Bluetooth adapter (BlueZ, CoreBluetooth
// or WinRT).
type systemBLE struct {
	co      *hostCoProcessor
	adapter *bluetooth.Adapter

	once sync.Once
	err  error
}

func newSystemBLE(co *hostCoProcessor) *systemBLE {
	return &systemBLE{co: co, adapter: bluetooth.DefaultAdapter}
}

func (b *systemBLE) Init() error {
	if err := b.co.ready(); err != nil {
		return err
	}
	b.once.Do(func() {
		if err := b.adapter.Enable(); err != nil {
			b.err = fmt.Errorf("ble enable: %w", err)
		}
	})
	return b.err
}

func (b *systemBLE) Scan(ctx context.Context, window time.Duration, fn func(Advertisement)) error {
	done := make(chan error, 1)
	go func() {
		done <- b.adapter.Scan(func(_ *bluetooth.Adapter, r bluetooth.ScanResult) {
			fn(Advertisement{
				Addr: addrFromString(r.Address.String()),
				Name: r.LocalName(),
				RSSI: int8(r.RSSI),
			})
		})
	}()

	t := time.NewTimer(window)
	defer t.Stop()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("ble scan: %w", err)
		}
		return nil
	case <-ctx.Done():
	case <-t.C:
	}
	if err := b.adapter.StopScan(); err != nil {
		return fmt.Errorf("ble stop scan: %w", err)
	}
	if err := <-done; err != nil {
		return fmt.Errorf("ble scan: %w", err)
	}
	return ctx.Err()
}

// addrFromString parses a MAC, or folds an opaque identifier (CoreBluetooth
// hands out UUIDs) into a stable pseudo address.
func addrFromString(s string) BDAddr {
	if a, err := ParseBDAddr(s); err == nil {
		return a
	}
	h := fnv.New64a()
	h.Write([]byte(s))
	sum := h.Sum64()
	var a BDAddr
	for i := range a {
		a[i] = byte(sum >> (8 * i))
	}
	return a
}
