//go:build !tinygo

package hal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/tarm/serial"

	"jcboard/internal/errcode"
)

// nativePort is a USB-RS485 adapter on the host.
type nativePort struct {
	port *serial.Port
	wmu  sync.Mutex
}

func openNativePort(name string, cfg SerialConfig) (SerialPort, error) {
	sc := &serial.Config{
		Name:        name,
		Baud:        cfg.Baud,
		ReadTimeout: 100 * time.Millisecond,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
	}
	if cfg.DataBits > 0 {
		sc.Size = byte(cfg.DataBits)
	}
	switch cfg.Parity {
	case ParityEven:
		sc.Parity = serial.ParityEven
	case ParityOdd:
		sc.Parity = serial.ParityOdd
	}
	if cfg.StopBits == 2 {
		sc.StopBits = serial.Stop2
	}
	p, err := serial.OpenPort(sc)
	if err != nil {
		return nil, &errcode.E{C: errcode.HardwareAbsent, Op: "rs485 open", Msg: name, Err: fmt.Errorf("failed to open serial port %s: %w", name, err)}
	}
	return &nativePort{port: p}, nil
}

func (p *nativePort) Write(b []byte) (int, error) {
	p.wmu.Lock()
	defer p.wmu.Unlock()
	return p.port.Write(b)
}

// RecvSomeContext polls the port; each read returns after the configured
// read timeout, so ctx is checked at least every 100ms.
func (p *nativePort) RecvSomeContext(ctx context.Context, b []byte) (int, error) {
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		n, err := p.port.Read(b)
		if n > 0 {
			return n, nil
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return 0, err
		}
	}
}

func (p *nativePort) Close() error { return p.port.Close() }

// busPeer simulates a second node on the RS485 pair. It periodically sends a
// status line and records what the board transmits.
type busPeer struct {
	mu       sync.Mutex
	rx       []byte // bytes waiting for the board
	sent     []byte // bytes the board transmitted
	arrived  chan struct{}
	closed   bool
	stop     chan struct{}
	interval time.Duration
}

func newBusPeer(interval time.Duration) *busPeer {
	b := &busPeer{arrived: make(chan struct{}, 1), stop: make(chan struct{}), interval: interval}
	if interval > 0 {
		go b.chatter()
	}
	return b
}

func (b *busPeer) chatter() {
	t := time.NewTicker(b.interval)
	defer t.Stop()
	seq := 0
	for {
		select {
		case <-b.stop:
			return
		case <-t.C:
			seq++
			b.deliver([]byte(fmt.Sprintf("PEER %d\r\n", seq)))
		}
	}
}

func (b *busPeer) deliver(p []byte) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.rx = append(b.rx, p...)
	b.mu.Unlock()
	select {
	case b.arrived <- struct{}{}:
	default:
	}
}

func (b *busPeer) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

func (b *busPeer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0, errcode.NotReady
	}
	b.sent = append(b.sent, p...)
	return len(p), nil
}

func (b *busPeer) transmitted() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.sent...)
}

func (b *busPeer) RecvSomeContext(ctx context.Context, p []byte) (int, error) {
	for {
		b.mu.Lock()
		if b.closed {
			b.mu.Unlock()
			return 0, errcode.NotReady
		}
		if len(b.rx) > 0 {
			n := copy(p, b.rx)
			b.rx = b.rx[n:]
			b.mu.Unlock()
			return n, nil
		}
		b.mu.Unlock()

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-b.arrived:
		}
	}
}

func (b *busPeer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	close(b.stop)
	return nil
}
