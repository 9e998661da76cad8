//go:build !tinygo

package hal

// hostTouch queues touch samples from the window or the console and drives
// the controller's interrupt line while a contact is down.
type hostTouch struct {
	ch   chan TouchEvent
	irq  *irqPin
	down bool
}

func newHostTouch(irq *irqPin) *hostTouch {
	return &hostTouch{ch: make(chan TouchEvent, 64), irq: irq}
}

func (t *hostTouch) Events() <-chan TouchEvent { return t.ch }

func (t *hostTouch) inject(ev TouchEvent) {
	if t.irq != nil {
		t.irq.set(ev.Phase != TouchRelease)
	}
	select {
	case t.ch <- ev:
	default:
	}
}
