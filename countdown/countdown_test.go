package countdown

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	c     *Countdown
	seen  chan int
	fired chan struct{}

	mu    sync.Mutex
	ticks chan time.Time
	fires int
}

func newHarness() *harness {
	h := &harness{
		seen:  make(chan int, 16),
		fired: make(chan struct{}, 4),
	}
	h.c = New(func(n int) { h.seen <- n }, func() {
		h.mu.Lock()
		h.fires++
		h.mu.Unlock()
		h.fired <- struct{}{}
	})
	h.c.newTicker = func(time.Duration) (<-chan time.Time, func()) {
		ch := make(chan time.Time)
		h.mu.Lock()
		h.ticks = ch
		h.mu.Unlock()
		return ch, func() {}
	}
	return h
}

func (h *harness) current() chan time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ticks
}

func (h *harness) tick(t *testing.T) int {
	t.Helper()
	h.current() <- time.Time{}
	select {
	case n := <-h.seen:
		return n
	case <-time.After(time.Second):
		t.Fatal("tick not reported")
	}
	return -1
}

func TestCountsDownAndFiresOnce(t *testing.T) {
	h := newHarness()
	require.True(t, h.c.Toggle())
	assert.Equal(t, Start, h.c.Remaining())

	for want := Start - 1; want >= 0; want-- {
		assert.Equal(t, want, h.tick(t))
	}
	select {
	case <-h.fired:
	case <-time.After(time.Second):
		t.Fatal("did not fire")
	}
	assert.False(t, h.c.Active())
	assert.Equal(t, Start, h.c.Remaining())
	h.mu.Lock()
	assert.Equal(t, 1, h.fires)
	h.mu.Unlock()
}

func TestCancelRestoresAndNeverFires(t *testing.T) {
	h := newHarness()
	h.c.Start()
	assert.Equal(t, 4, h.tick(t))
	assert.Equal(t, 3, h.tick(t))

	assert.False(t, h.c.Toggle(), "second toggle cancels")
	assert.False(t, h.c.Active())
	assert.Equal(t, Start, h.c.Remaining())

	// A stale tick may still be consumed by the exiting goroutine but is
	// never reported.
	select {
	case h.current() <- time.Time{}:
	case <-time.After(50 * time.Millisecond):
	}
	select {
	case n := <-h.seen:
		t.Fatalf("cancelled countdown reported %d", n)
	case <-time.After(50 * time.Millisecond):
	}
	select {
	case <-h.fired:
		t.Fatal("cancelled countdown fired")
	default:
	}
}

func TestRestartAfterCancelStartsFromTop(t *testing.T) {
	h := newHarness()
	h.c.Start()
	h.tick(t)
	h.c.Cancel()
	h.c.Start()
	assert.Equal(t, Start-1, h.tick(t))
}

func TestCancelWhenIdle(t *testing.T) {
	h := newHarness()
	assert.False(t, h.c.Cancel())
}

func TestCancelWaitsForInFlightTick(t *testing.T) {
	entered := make(chan int, 1)
	release := make(chan struct{})
	var mu sync.Mutex
	var order []string
	note := func(s string) {
		mu.Lock()
		order = append(order, s)
		mu.Unlock()
	}

	c := New(func(n int) {
		entered <- n
		<-release
		note("tick")
	}, nil)
	ticks := make(chan time.Time)
	c.newTicker = func(time.Duration) (<-chan time.Time, func()) { return ticks, func() {} }
	c.Start()
	ticks <- time.Time{}
	assert.Equal(t, Start-1, <-entered)

	cancelled := make(chan bool, 1)
	go func() {
		ok := c.Cancel()
		note("cancel")
		cancelled <- ok
	}()
	select {
	case <-cancelled:
		t.Fatal("Cancel returned while a tick was being reported")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)
	require.True(t, <-cancelled)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"tick", "cancel"}, order)
	assert.False(t, c.Active())
}
