//go:build tinygo && baremetal

package hal

import (
	"context"
	"fmt"
	"io"
	"machine"
	"net/http"
	"runtime"
	"time"
)

type uartLogger struct {
	uart *machine.UART
}

func (l *uartLogger) WriteLineString(s string) {
	for i := 0; i < len(s); i++ {
		l.uart.WriteByte(s[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

func (l *uartLogger) WriteLineBytes(b []byte) {
	for i := 0; i < len(b); i++ {
		l.uart.WriteByte(b[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

// ramFramebuffer is drawn into but never scanned out.
type ramFramebuffer struct {
	w      int
	h      int
	stride int
	buf    []byte
}

func (f *ramFramebuffer) Width() int          { return f.w }
func (f *ramFramebuffer) Height() int         { return f.h }
func (f *ramFramebuffer) Format() PixelFormat { return PixelFormatRGB565 }
func (f *ramFramebuffer) StrideBytes() int    { return f.stride }
func (f *ramFramebuffer) Buffer() []byte      { return f.buf }
func (f *ramFramebuffer) Present() error      { return nil }

func (f *ramFramebuffer) ClearRGB(r, g, b uint8) {
	fill565(f.buf, RGB565(r, g, b))
}

type tinyGoDisplay struct {
	fb    *ramFramebuffer
	level uint8
}

func newTinyGoDisplay(w, h int) *tinyGoDisplay {
	return &tinyGoDisplay{fb: &ramFramebuffer{w: w, h: h, stride: w * 2, buf: make([]byte, w*h*2)}}
}

func (d *tinyGoDisplay) Init() error              { return nil }
func (d *tinyGoDisplay) Framebuffer() Framebuffer { return d.fb }
func (d *tinyGoDisplay) Backlight() Backlight     { return d }

func (d *tinyGoDisplay) SetBrightness(percent uint8) error {
	if percent > 100 {
		return fmt.Errorf("backlight: brightness %d out of range", percent)
	}
	d.level = percent
	return nil
}

func (d *tinyGoDisplay) Brightness() uint8 { return d.level }

type stubTouch struct{}

func (stubTouch) Events() <-chan TouchEvent { return nil }

type tinyGoInput struct {
	touch Touch
}

func (in tinyGoInput) Touch() Touch { return in.touch }

// machinePin wraps a machine.Pin as a GPIOPin.
type machinePin struct {
	name string
	pin  machine.Pin
	caps GPIOCaps
}

func newMachinePin(name string, pin machine.Pin, caps GPIOCaps) *machinePin {
	return &machinePin{name: name, pin: pin, caps: caps}
}

func (p *machinePin) Name() string   { return p.name }
func (p *machinePin) Caps() GPIOCaps { return p.caps }

func (p *machinePin) Configure(mode GPIOMode, pull GPIOPull) error {
	if err := checkPinConfig(p.name, p.caps, mode, pull); err != nil {
		return err
	}
	cfg := machine.PinConfig{Mode: machine.PinInput}
	switch {
	case mode == GPIOModeOutput:
		cfg.Mode = machine.PinOutput
	case pull == GPIOPullUp:
		cfg.Mode = machine.PinInputPullup
	case pull == GPIOPullDown:
		cfg.Mode = machine.PinInputPulldown
	}
	p.pin.Configure(cfg)
	return nil
}

func (p *machinePin) Read() (bool, error) { return p.pin.Get(), nil }

func (p *machinePin) Write(level bool) error {
	p.pin.Set(level)
	return nil
}

// machineADC reads the battery divider. machine.ADC scales to 16 bits; the
// board's 12-bit counts are recovered by shifting.
type machineADC struct {
	adc machine.ADC
}

func newMachineADC(pin machine.Pin) *machineADC {
	machine.InitADC()
	a := machine.ADC{Pin: pin}
	a.Configure(machine.ADCConfig{})
	return &machineADC{adc: a}
}

func (a *machineADC) ReadRaw() (uint16, error)    { return a.adc.Get() >> 4, nil }
func (a *machineADC) Calibration() ADCCalibration { return nil }

type tinyGoSystem struct {
	intPin machine.Pin
	wake   WakeupCause
}

// ResetReason is not exposed by the TinyGo runtime.
func (s *tinyGoSystem) ResetReason() ResetReason { return ResetUnknown }
func (s *tinyGoSystem) WakeupCause() WakeupCause { return s.wake }
func (s *tinyGoSystem) Restart()                 { machine.CPUReset() }

// LightSleep idles the CPU in the scheduler until a source fires. It does
// not gate clocks.
func (s *tinyGoSystem) LightSleep(ctx context.Context, wake WakeConfig) (WakeupCause, error) {
	if wake.Timer <= 0 && wake.GPIO <= 0 {
		return WakeUndefined, fmt.Errorf("light sleep: no wakeup source: %w", ErrNotImplemented)
	}
	var deadline time.Time
	if wake.Timer > 0 {
		deadline = time.Now().Add(wake.Timer)
	}
	for {
		if err := ctx.Err(); err != nil {
			return WakeUndefined, err
		}
		if wake.GPIO > 0 && machine.Pin(wake.GPIO).Get() == wake.GPIOLevel {
			s.wake = WakeGPIO
			return s.wake, nil
		}
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			s.wake = WakeTimer
			return s.wake, nil
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func (s *tinyGoSystem) DeepSleep(wake WakeConfig) {
	_, _ = s.LightSleep(context.Background(), wake)
	machine.CPUReset()
}

func (s *tinyGoSystem) FreeHeap() uint32 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	if ms.HeapSys < ms.HeapInuse {
		return 0
	}
	return uint32(ms.HeapSys - ms.HeapInuse)
}

func (s *tinyGoSystem) ChipInfo() ChipInfo {
	return ChipInfo{Model: "ESP32-P4", Cores: 2}
}

type stubCoProcessor struct{}

func (stubCoProcessor) InitTransport() error {
	return fmt.Errorf("co-processor transport: %w", ErrNotImplemented)
}
func (stubCoProcessor) WiFi() WiFi { return nil }
func (stubCoProcessor) BLE() BLE   { return nil }

type stubHTTP struct{}

func (stubHTTP) Do(*http.Request) (*http.Response, error) { return nil, ErrNotImplemented }

type stubAudio struct{}

func (stubAudio) Init() error                      { return ErrNotImplemented }
func (stubAudio) SetVolume(int) (int, error)       { return 0, ErrNotImplemented }
func (stubAudio) Stop() error                      { return nil }
func (stubAudio) Done() <-chan struct{}            { return nil }
func (stubAudio) Play(src io.ReadSeekCloser) error { _ = src.Close(); return ErrNotImplemented }
