// Package rs485 runs the half-duplex RS485 link: echo what arrives, or send
// a numbered test message every few seconds.
package rs485

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"jcboard/hal"
	"jcboard/status"
)

const (
	Baud         = 115200
	BufSize      = 256
	ReadTimeout  = 100 * time.Millisecond
	SendInterval = 2 * time.Second

	readyMessage = "RS485 Ready\r\n"
)

// DefaultConfig is UART1 on the board's transceiver pins, 8N1.
func DefaultConfig() hal.SerialConfig {
	return hal.SerialConfig{
		Port:     hal.RS485Port,
		Baud:     Baud,
		TX:       hal.PinRS485TX,
		RX:       hal.PinRS485RX,
		RTS:      hal.PinRS485RTS,
		DataBits: 8,
		StopBits: 1,
		Parity:   hal.ParityNone,
	}
}

// Describe is the one-line connection summary shown under the title.
func Describe(cfg hal.SerialConfig) string {
	return fmt.Sprintf("UART%d: TXD=%d RXD=%d RTS=%d @ %d baud", cfg.Port, cfg.TX, cfg.RX, cfg.RTS, cfg.Baud)
}

type Mode uint8

const (
	Echo Mode = iota
	Send
)

func (m Mode) String() string {
	if m == Send {
		return "Send"
	}
	return "Echo"
}

// Stats are byte counts since start or the last Clear.
type Stats struct {
	RX int
	TX int
}

func (s Stats) String() string {
	return fmt.Sprintf("RX: %d bytes | TX: %d bytes", s.RX, s.TX)
}

// Report is one update for the screen. RX and TX are lines to append; empty
// means nothing to append. Cleared asks for both logs to be emptied.
type Report struct {
	RX      string
	TX      string
	Stats   Stats
	Cleared bool
}

// FormatHex renders b as "%02X" bytes separated by single spaces.
func FormatHex(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) * 3)
	for i, c := range b {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02X", c)
	}
	return sb.String()
}

// Link drives one serial port. Report is called from Run's goroutine and
// from the button handlers; it must only take the display lock.
type Link struct {
	port   hal.SerialPort
	report func(Report)
	obs    status.Observer

	after func(time.Duration) <-chan time.Time

	mu     sync.Mutex
	stats  Stats
	mode   Mode
	sent   int
	manual int
}

func NewLink(port hal.SerialPort, report func(Report), obs status.Observer) *Link {
	if obs == nil {
		obs = status.Nop
	}
	if report == nil {
		report = func(Report) {}
	}
	return &Link{port: port, report: report, obs: obs, after: time.After}
}

func (l *Link) Mode() Mode {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mode
}

// ToggleMode flips between echo and send and returns the new mode.
func (l *Link) ToggleMode() Mode {
	l.mu.Lock()
	if l.mode == Echo {
		l.mode = Send
	} else {
		l.mode = Echo
	}
	m := l.mode
	l.mu.Unlock()
	l.obs.Notify(status.Event{Source: "rs485", Kind: status.Info, Message: "Mode changed to: " + m.String()})
	return m
}

func (l *Link) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

// Clear zeroes the counters and asks the screen to empty both logs.
func (l *Link) Clear() {
	l.mu.Lock()
	l.stats = Stats{}
	l.mu.Unlock()
	l.report(Report{Cleared: true})
	l.obs.Notify(status.Event{Source: "rs485", Kind: status.Info, Message: "Cleared"})
}

// ManualSend transmits "Manual send #k".
func (l *Link) ManualSend() error {
	l.mu.Lock()
	l.manual++
	msg := fmt.Sprintf("Manual send #%d\r\n", l.manual)
	l.mu.Unlock()
	if _, err := l.send(msg); err != nil {
		return err
	}
	l.report(Report{TX: "[Manual] " + strings.TrimRight(msg, "\r\n"), Stats: l.Stats()})
	l.obs.Notify(status.Event{Source: "rs485", Kind: status.Info, Message: "Manual message sent"})
	return nil
}

func (l *Link) send(s string) (int, error) {
	n, err := l.port.Write([]byte(s))
	if n > 0 {
		l.mu.Lock()
		l.stats.TX += n
		l.mu.Unlock()
		l.obs.Notify(status.Event{Source: "rs485", Kind: status.Progress, Message: fmt.Sprintf("TX: %d bytes", n)})
	}
	if err != nil {
		err = fmt.Errorf("rs485 write: %w", err)
		l.obs.Notify(status.Event{Source: "rs485", Kind: status.Failure, Message: "send failed", Err: err})
	}
	return n, err
}

// Run announces the link and serves it until ctx ends or the port fails.
func (l *Link) Run(ctx context.Context) error {
	l.send(readyMessage)

	buf := make([]byte, BufSize)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if l.Mode() == Echo {
			if err := l.echoOnce(ctx, buf[:BufSize-1]); err != nil {
				return err
			}
			continue
		}

		l.mu.Lock()
		l.sent++
		msg := fmt.Sprintf("Test message #%d\r\n", l.sent)
		l.mu.Unlock()
		l.send(msg)
		line := strings.TrimRight(msg, "\r\n")
		l.report(Report{TX: fmt.Sprintf("[%d] %s", len(line), line), Stats: l.Stats()})

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.after(SendInterval):
		}
	}
}

func (l *Link) echoOnce(ctx context.Context, buf []byte) error {
	rctx, cancel := context.WithTimeout(ctx, ReadTimeout)
	n, err := l.port.RecvSomeContext(rctx, buf)
	cancel()
	if err != nil && n == 0 {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("rs485 read: %w", err)
	}
	if n == 0 {
		return nil
	}

	data := buf[:n]
	l.mu.Lock()
	l.stats.RX += n
	l.mu.Unlock()
	l.obs.Notify(status.Event{Source: "rs485", Kind: status.Progress, Message: fmt.Sprintf("RX: %d bytes", n)})
	l.report(Report{RX: fmt.Sprintf("[%d] %s", n, FormatHex(data)), Stats: l.Stats()})

	l.send("Echo: " + string(data) + "\r\n")
	l.report(Report{TX: "Echo sent", Stats: l.Stats()})
	return nil
}
