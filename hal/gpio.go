package hal

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// GPIOMode selects whether a pin is an input or output.
type GPIOMode uint8

const (
	GPIOModeInput GPIOMode = iota
	GPIOModeOutput
)

// GPIOPull selects the pull resistor configuration.
type GPIOPull uint8

const (
	GPIOPullNone GPIOPull = iota
	GPIOPullUp
	GPIOPullDown
)

// GPIOCaps declares what operations a pin supports.
type GPIOCaps uint8

const (
	GPIOCapInput GPIOCaps = 1 << iota
	GPIOCapOutput
	GPIOCapPullUp
	GPIOCapPullDown
	// GPIOCapWake marks pins that can wake the chip from light sleep.
	GPIOCapWake
)

// GPIO provides access to general-purpose IO pins.
//
// Implementations may return nil if GPIO is unsupported.
type GPIO interface {
	PinCount() int
	Pin(id int) GPIOPin
}

// GPIOPin is a single digital IO pin.
type GPIOPin interface {
	Name() string
	Caps() GPIOCaps
	Configure(mode GPIOMode, pull GPIOPull) error
	Read() (level bool, err error)
	Write(level bool) error
}

// LevelWaiter is implemented by wake-capable pins.
type LevelWaiter interface {
	// WaitLevel blocks until the pin reads level or ctx ends.
	WaitLevel(ctx context.Context, level bool) error
}

// PinName is the board name of a GPIO number.
func PinName(num int) string { return fmt.Sprintf("GPIO%d", num) }

// FindPin returns the pin called name, or nil.
func FindPin(g GPIO, name string) GPIOPin {
	if g == nil {
		return nil
	}
	for i := 0; i < g.PinCount(); i++ {
		if p := g.Pin(i); p != nil && strings.EqualFold(p.Name(), name) {
			return p
		}
	}
	return nil
}

type nullGPIO struct{}

func (nullGPIO) PinCount() int      { return 0 }
func (nullGPIO) Pin(id int) GPIOPin { return nil }

type virtualGPIO struct {
	pins []GPIOPin
}

func newVirtualGPIO(pins []GPIOPin) GPIO {
	if len(pins) == 0 {
		return nullGPIO{}
	}
	return &virtualGPIO{pins: pins}
}

func (g *virtualGPIO) PinCount() int {
	if g == nil {
		return 0
	}
	return len(g.pins)
}

func (g *virtualGPIO) Pin(id int) GPIOPin {
	if g == nil || id < 0 || id >= len(g.pins) {
		return nil
	}
	return g.pins[id]
}

func checkPinConfig(name string, caps GPIOCaps, mode GPIOMode, pull GPIOPull) error {
	switch mode {
	case GPIOModeInput:
		if caps&GPIOCapInput == 0 {
			return fmt.Errorf("gpio: pin %s: input unsupported", name)
		}
	case GPIOModeOutput:
		if caps&GPIOCapOutput == 0 {
			return fmt.Errorf("gpio: pin %s: output unsupported", name)
		}
	default:
		return fmt.Errorf("gpio: pin %s: invalid mode", name)
	}

	switch pull {
	case GPIOPullNone:
	case GPIOPullUp:
		if caps&GPIOCapPullUp == 0 {
			return fmt.Errorf("gpio: pin %s: pull-up unsupported", name)
		}
	case GPIOPullDown:
		if caps&GPIOCapPullDown == 0 {
			return fmt.Errorf("gpio: pin %s: pull-down unsupported", name)
		}
	default:
		return fmt.Errorf("gpio: pin %s: invalid pull", name)
	}
	return nil
}

// virtualPin is a plain latch: outputs store the level, inputs read it back.
type virtualPin struct {
	mu    sync.Mutex
	name  string
	caps  GPIOCaps
	mode  GPIOMode
	pull  GPIOPull
	level bool
}

func newVirtualPin(name string, caps GPIOCaps) *virtualPin {
	return &virtualPin{name: name, caps: caps}
}

func (p *virtualPin) Name() string   { return p.name }
func (p *virtualPin) Caps() GPIOCaps { return p.caps }

func (p *virtualPin) Configure(mode GPIOMode, pull GPIOPull) error {
	if err := checkPinConfig(p.name, p.caps, mode, pull); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mode = mode
	p.pull = pull
	if mode == GPIOModeInput {
		p.level = pull == GPIOPullUp
	}
	return nil
}

func (p *virtualPin) Read() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level, nil
}

func (p *virtualPin) Write(level bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mode != GPIOModeOutput {
		return fmt.Errorf("gpio: pin %s: not in output mode", p.name)
	}
	p.level = level
	return nil
}

// irqPin is an active-low interrupt line driven by a peripheral (the touch
// controller's INT). It idles high and reads low while the peripheral
// asserts it.
type irqPin struct {
	mu       sync.Mutex
	name     string
	asserted bool
	changed  chan struct{}
}

func newIRQPin(name string) *irqPin {
	return &irqPin{name: name, changed: make(chan struct{})}
}

func (p *irqPin) Name() string   { return p.name }
func (p *irqPin) Caps() GPIOCaps { return GPIOCapInput | GPIOCapPullUp | GPIOCapWake }

func (p *irqPin) Configure(mode GPIOMode, pull GPIOPull) error {
	if mode != GPIOModeInput {
		return fmt.Errorf("gpio: pin %s: only input supported", p.name)
	}
	return checkPinConfig(p.name, p.Caps(), mode, pull)
}

func (p *irqPin) Read() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.asserted, nil
}

func (p *irqPin) Write(level bool) error {
	_ = level
	return fmt.Errorf("gpio: pin %s: output unsupported", p.name)
}

// set drives the line from the peripheral side.
func (p *irqPin) set(asserted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.asserted == asserted {
		return
	}
	p.asserted = asserted
	close(p.changed)
	p.changed = make(chan struct{})
}

func (p *irqPin) WaitLevel(ctx context.Context, level bool) error {
	for {
		p.mu.Lock()
		cur := !p.asserted
		ch := p.changed
		p.mu.Unlock()
		if cur == level {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch:
		}
	}
}
