// Package countdown is a cancellable one-shot countdown ticking once a
// second.
package countdown

import (
	"sync"
	"time"
)

const (
	Start = 5
	Tick  = time.Second
)

// Countdown counts from its start value down to zero. OnTick receives each
// remaining value (the last one is 0); OnFire runs once when zero is
// reached. Both run on the countdown's goroutine and must not call back into
// Start, Cancel or Toggle.
type Countdown struct {
	OnTick func(remaining int)
	OnFire func()

	start     int
	newTicker func(time.Duration) (<-chan time.Time, func())

	// cb is held across a callback so Cancel and Start wait for it.
	cb sync.Mutex

	mu        sync.Mutex
	active    bool
	remaining int
	gen       int
	stop      chan struct{}
}

func New(onTick func(int), onFire func()) *Countdown {
	return &Countdown{
		OnTick:    onTick,
		OnFire:    onFire,
		start:     Start,
		remaining: Start,
		newTicker: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
	}
}

// SetTicker replaces the one second tick source. stop is called when a
// countdown ends.
func (c *Countdown) SetTicker(fn func(d time.Duration) (ticks <-chan time.Time, stop func())) {
	c.mu.Lock()
	c.newTicker = fn
	c.mu.Unlock()
}

func (c *Countdown) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Toggle starts an idle countdown or cancels a running one. It reports
// whether the countdown is now running.
func (c *Countdown) Toggle() bool {
	if c.Cancel() {
		return false
	}
	c.Start()
	return true
}

// Start begins counting from the start value. It is a no-op while running.
func (c *Countdown) Start() {
	c.cb.Lock()
	defer c.cb.Unlock()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active {
		return
	}
	c.active = true
	c.remaining = c.start
	c.gen++
	c.stop = make(chan struct{})
	ticks, halt := c.newTicker(Tick)
	go c.run(c.gen, c.stop, ticks, halt)
}

// Cancel stops a running countdown and restores the start value. Once
// Cancel returns true, neither OnTick nor OnFire runs for that countdown.
func (c *Countdown) Cancel() bool {
	c.cb.Lock()
	defer c.cb.Unlock()
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return false
	}
	c.active = false
	c.remaining = c.start
	c.gen++
	close(c.stop)
	return true
}

func (c *Countdown) run(gen int, stop <-chan struct{}, ticks <-chan time.Time, halt func()) {
	defer halt()
	for {
		select {
		case <-stop:
			return
		case <-ticks:
		}

		if done := c.step(gen); done {
			return
		}
	}
}

// step applies one tick of countdown gen. It reports whether the countdown
// is over, either fired or superseded.
func (c *Countdown) step(gen int) bool {
	c.cb.Lock()
	defer c.cb.Unlock()

	c.mu.Lock()
	if c.gen != gen || !c.active {
		c.mu.Unlock()
		return true
	}
	c.remaining--
	left := c.remaining
	fire := left <= 0
	if fire {
		c.active = false
		c.remaining = c.start
	}
	c.mu.Unlock()

	if c.OnTick != nil {
		c.OnTick(left)
	}
	if fire && c.OnFire != nil {
		c.OnFire()
	}
	return fire
}
