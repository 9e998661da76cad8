//go:build !tinygo

package hal

import (
	"context"
	"runtime"
	"sync"
	"time"

	"jcboard/internal/errcode"
)

// hostHeapBytes is the simulated internal RAM plus PSRAM.
const hostHeapBytes = 32<<20 + 512<<10

// hostSystem simulates resets in-process: Restart and DeepSleep signal the
// runner, which tears the example down and boots it again.
type hostSystem struct {
	mu      sync.Mutex
	reason  ResetReason
	wake    WakeupCause
	irq     *irqPin
	reboots chan struct{}
	after   func(d time.Duration) <-chan time.Time
}

func newHostSystem(irq *irqPin) *hostSystem {
	return &hostSystem{
		reason:  ResetPowerOn,
		wake:    WakeUndefined,
		irq:     irq,
		reboots: make(chan struct{}, 1),
		after:   time.After,
	}
}

func (s *hostSystem) ResetReason() ResetReason {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

func (s *hostSystem) WakeupCause() WakeupCause {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wake
}

func (s *hostSystem) Reboots() <-chan struct{} { return s.reboots }

func (s *hostSystem) reboot(reason ResetReason, wake WakeupCause) {
	s.mu.Lock()
	s.reason = reason
	s.wake = wake
	s.mu.Unlock()
	select {
	case s.reboots <- struct{}{}:
	default:
	}
}

func (s *hostSystem) Restart() { s.reboot(ResetSoftware, WakeUndefined) }

func (s *hostSystem) LightSleep(ctx context.Context, wake WakeConfig) (WakeupCause, error) {
	if wake.Timer <= 0 && wake.GPIO <= 0 {
		return WakeUndefined, &errcode.E{C: errcode.InvalidParams, Op: "light sleep", Msg: "no wakeup source"}
	}
	cause, err := s.sleep(ctx, wake)
	if err != nil {
		return WakeUndefined, err
	}
	s.mu.Lock()
	s.wake = cause
	s.mu.Unlock()
	return cause, nil
}

func (s *hostSystem) sleep(ctx context.Context, wake WakeConfig) (WakeupCause, error) {
	var timer <-chan time.Time
	if wake.Timer > 0 {
		timer = s.after(wake.Timer)
	}

	pinCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	pinWoke := make(chan struct{})
	if wake.GPIO == PinTouchInt && s.irq != nil {
		go func() {
			if s.irq.WaitLevel(pinCtx, wake.GPIOLevel) == nil {
				close(pinWoke)
			}
		}()
	} else if wake.GPIO > 0 {
		return WakeUndefined, &errcode.E{C: errcode.InvalidParams, Op: "sleep", Msg: PinName(wake.GPIO) + " cannot wake"}
	}

	select {
	case <-ctx.Done():
		return WakeUndefined, ctx.Err()
	case <-timer:
		return WakeTimer, nil
	case <-pinWoke:
		return WakeGPIO, nil
	}
}

func (s *hostSystem) DeepSleep(wake WakeConfig) {
	go func() {
		cause, err := s.sleep(context.Background(), wake)
		if err != nil {
			cause = WakeUndefined
		}
		s.reboot(ResetDeepSleep, cause)
	}()
}

func (s *hostSystem) FreeHeap() uint32 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	if ms.HeapAlloc >= hostHeapBytes {
		return 0
	}
	return uint32(hostHeapBytes - ms.HeapAlloc)
}

func (s *hostSystem) ChipInfo() ChipInfo {
	return ChipInfo{Model: "ESP32-P4", Cores: 2, Revision: 100}
}
