package rs485

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePort struct {
	rx chan []byte

	mu      sync.Mutex
	written []string
	err     error
}

func newFakePort() *fakePort { return &fakePort{rx: make(chan []byte, 4)} }

func (p *fakePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return 0, p.err
	}
	p.written = append(p.written, string(b))
	return len(b), nil
}

func (p *fakePort) RecvSomeContext(ctx context.Context, b []byte) (int, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case data := <-p.rx:
		return copy(b, data), nil
	}
}

func (p *fakePort) Close() error { return nil }

func (p *fakePort) Written() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.written...)
}

type reports struct {
	mu  sync.Mutex
	all []Report
	ch  chan Report
}

func newReports() *reports { return &reports{ch: make(chan Report, 16)} }

func (r *reports) add(rep Report) {
	r.mu.Lock()
	r.all = append(r.all, rep)
	r.mu.Unlock()
	r.ch <- rep
}

func (r *reports) next(t *testing.T) Report {
	t.Helper()
	select {
	case rep := <-r.ch:
		return rep
	case <-time.After(2 * time.Second):
		t.Fatal("no report")
	}
	return Report{}
}

func TestFormatHex(t *testing.T) {
	assert.Equal(t, "", FormatHex(nil))
	assert.Equal(t, "0A", FormatHex([]byte{0x0a}))
	assert.Equal(t, "48 69 FF 00", FormatHex([]byte{'H', 'i', 0xff, 0}))
}

func TestDescribeDefault(t *testing.T) {
	assert.Equal(t, "UART1: TXD=9 RXD=8 RTS=10 @ 115200 baud", Describe(DefaultConfig()))
}

func TestEchoMode(t *testing.T) {
	port := newFakePort()
	reps := newReports()
	l := NewLink(port, reps.add, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	port.rx <- []byte("Hi")
	rx := reps.next(t)
	assert.Equal(t, "[2] 48 69", rx.RX)
	assert.Equal(t, 2, rx.Stats.RX)
	tx := reps.next(t)
	assert.Equal(t, "Echo sent", tx.TX)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	w := port.Written()
	require.Len(t, w, 2)
	assert.Equal(t, "RS485 Ready\r\n", w[0])
	assert.Equal(t, "Echo: Hi\r\n", w[1])
	assert.Equal(t, Stats{RX: 2, TX: len(w[0]) + len(w[1])}, l.Stats())
}

func TestSendMode(t *testing.T) {
	port := newFakePort()
	reps := newReports()
	l := NewLink(port, reps.add, nil)
	require.Equal(t, Send, l.ToggleMode())

	ticks := make(chan time.Time)
	l.after = func(d time.Duration) <-chan time.Time {
		assert.Equal(t, SendInterval, d)
		return ticks
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	assert.Equal(t, "[15] Test message #1", reps.next(t).TX)
	ticks <- time.Time{}
	assert.Equal(t, "[15] Test message #2", reps.next(t).TX)
	cancel()
	<-done
	assert.Equal(t, "Test message #2\r\n", port.Written()[2])
}

func TestManualSendAndClear(t *testing.T) {
	port := newFakePort()
	reps := newReports()
	l := NewLink(port, reps.add, nil)

	require.NoError(t, l.ManualSend())
	require.NoError(t, l.ManualSend())
	assert.Equal(t, "[Manual] Manual send #1", reps.next(t).TX)
	second := reps.next(t)
	assert.Equal(t, "[Manual] Manual send #2", second.TX)
	assert.Equal(t, 2*len("Manual send #1\r\n"), second.Stats.TX)

	l.Clear()
	assert.True(t, reps.next(t).Cleared)
	assert.Equal(t, Stats{}, l.Stats())
	assert.Equal(t, "RX: 0 bytes | TX: 0 bytes", l.Stats().String())
}

func TestManualSendFailure(t *testing.T) {
	port := newFakePort()
	port.err = errors.New("uart fault")
	l := NewLink(port, nil, nil)
	assert.ErrorContains(t, l.ManualSend(), "uart fault")
	assert.Equal(t, 0, l.Stats().TX)
}

func TestStatsConcurrentWithRun(t *testing.T) {
	port := newFakePort()
	l := NewLink(port, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				l.ManualSend()
				_ = l.Stats()
			}
		}()
	}
	wg.Wait()
	cancel()
	<-done

	total := 0
	for _, s := range port.Written() {
		total += len(s)
	}
	assert.Equal(t, total, l.Stats().TX)
}
