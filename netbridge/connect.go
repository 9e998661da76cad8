package netbridge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"jcboard/hal"
	"jcboard/internal/errcode"
	"jcboard/status"
)

const (
	MaxRetry       = 5
	ConnectTimeout = 30 * time.Second
)

// Connector is the station retry policy. Register Handle with the bridge
// before starting the station.
type Connector struct {
	wifi hal.WiFi
	obs  status.Observer

	mu      sync.Mutex
	retries int
	ip      string

	connected  chan struct{}
	failed     chan struct{}
	onceUp     sync.Once
	onceFailed sync.Once
}

func NewConnector(w hal.WiFi, obs status.Observer) *Connector {
	if obs == nil {
		obs = status.Nop
	}
	return &Connector{
		wifi:      w,
		obs:       obs,
		connected: make(chan struct{}),
		failed:    make(chan struct{}),
	}
}

// Handle reacts to one station event.
func (c *Connector) Handle(ev hal.WiFiEvent) {
	switch ev.Kind {
	case hal.WiFiStaStart:
		c.obs.Notify(status.Event{Source: "wifi", Kind: status.Progress, Message: "WiFi STA started, connecting..."})
		c.connect()
	case hal.WiFiStaDisconnected:
		c.mu.Lock()
		retry := c.retries < MaxRetry
		if retry {
			c.retries++
		}
		n := c.retries
		c.mu.Unlock()
		if retry {
			c.obs.Notify(status.Event{Source: "wifi", Kind: status.Progress, Message: fmt.Sprintf("WiFi disconnected, retrying (%d/%d)...", n, MaxRetry)})
			c.connect()
			return
		}
		c.onceFailed.Do(func() {
			c.obs.Notify(status.Event{
				Source:  "wifi",
				Kind:    status.Failure,
				Message: fmt.Sprintf("WiFi connection failed after %d retries", MaxRetry),
				Err:     &errcode.E{C: errcode.Network, Op: "wifi connect", Msg: "retries exhausted"},
			})
			close(c.failed)
		})
	case hal.WiFiGotIP:
		c.mu.Lock()
		c.retries = 0
		c.ip = ev.IP
		c.mu.Unlock()
		c.obs.Notify(status.Event{Source: "wifi", Kind: status.Success, Message: "Got IP: " + ev.IP})
		c.onceUp.Do(func() { close(c.connected) })
	}
}

func (c *Connector) connect() {
	if err := c.wifi.Connect(); err != nil {
		c.obs.Notify(status.Event{Source: "wifi", Kind: status.Failure, Message: "connect request failed", Err: err})
	}
}

// Retries is the current consecutive retry count.
func (c *Connector) Retries() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.retries
}

// IP returns the last address obtained, or "".
func (c *Connector) IP() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ip
}

// Wait blocks until the station has an address, the retries run out, or
// timeout passes.
func (c *Connector) Wait(ctx context.Context, timeout time.Duration) (string, error) {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-c.connected:
		return c.IP(), nil
	case <-c.failed:
		return "", &errcode.E{C: errcode.Network, Op: "wifi connect", Msg: "retries exhausted"}
	case <-t.C:
		return "", &errcode.E{C: errcode.Timeout, Op: "wifi connect", Msg: "WiFi connection timeout"}
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
