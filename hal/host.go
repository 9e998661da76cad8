//go:build !tinygo

package hal

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// HostConfig selects how the host build simulates the board.
type HostConfig struct {
	Out   io.Writer
	Scale int

	NVSPath string

	SDRoot    string
	SDPresent bool

	BatteryMV      int
	BatteryNoiseMV int
	ADCCalibrated  bool

	// RS485Device names a real serial port; empty selects the bus peer.
	RS485Device     string
	BusPeerInterval time.Duration

	TransportFail   bool
	WiFiDisconnects int
	ScanDelay       time.Duration
	AccessPoints    []AccessPoint

	// BLESystem scans with the host's Bluetooth adapter instead of BLEDevices.
	BLESystem  bool
	BLEDevices []Advertisement

	// SleepAfter times sleep wakeup timers. Nil means time.After.
	SleepAfter func(time.Duration) <-chan time.Time
}

// DefaultHostConfig is a board with a card inserted and a healthy battery.
func DefaultHostConfig() HostConfig {
	return HostConfig{
		Out:            os.Stdout,
		Scale:          1,
		NVSPath:        "jcboard.nvs",
		SDRoot:         "sdcard",
		SDPresent:      true,
		BatteryMV:      2400,
		BatteryNoiseMV: 15,
		ADCCalibrated:  true,
		ScanDelay:      1500 * time.Millisecond,
	}
}

// TouchInjector lets tools outside the window (the headless console) feed
// touch events into the board.
type TouchInjector interface {
	InjectTouch(ev TouchEvent)
}

// BusInjector lets tools put bytes on the simulated RS485 bus.
type BusInjector interface {
	InjectRS485(p []byte) error
}

type hostHAL struct {
	cfg    HostConfig
	logger *hostLogger
	gpio   GPIO
	irq    *irqPin
	fb     *hostFramebuffer
	bl     *hostBacklight
	touch  *hostTouch
	adc    *hostADC
	sd     *hostSD
	co     *hostCoProcessor
	http   HTTPClient
	sys    *hostSystem
	nvs    NVS
	aud    AudioOut

	busMu sync.Mutex
	bus   *busPeer
}

// New returns a host HAL with DefaultHostConfig.
func New() HAL { return NewHost(DefaultHostConfig()) }

// NewHost returns a host HAL implementation.
func NewHost(cfg HostConfig) HAL {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Scale <= 0 {
		cfg.Scale = 1
	}
	logger := &hostLogger{w: cfg.Out}

	irq := newIRQPin(PinName(PinTouchInt))
	pins := []GPIOPin{irq}
	for _, n := range []int{PinRS485RX, PinRS485TX, PinRS485RTS} {
		pins = append(pins, newVirtualPin(PinName(n), GPIOCapInput|GPIOCapOutput|GPIOCapPullUp|GPIOCapPullDown))
	}

	co := newHostCoProcessor(cfg)
	sys := newHostSystem(irq)
	if cfg.SleepAfter != nil {
		sys.after = cfg.SleepAfter
	}
	return &hostHAL{
		cfg:    cfg,
		logger: logger,
		gpio:   newVirtualGPIO(pins),
		irq:    irq,
		fb:     newHostFramebuffer(PanelWidth, PanelHeight),
		bl:     &hostBacklight{},
		touch:  newHostTouch(irq),
		adc:    newHostADC(cfg.BatteryMV, cfg.BatteryNoiseMV, cfg.ADCCalibrated),
		sd:     newHostSD(cfg.SDRoot, cfg.SDPresent),
		co:     co,
		http:   newHostHTTP(co.wifi),
		sys:    sys,
		nvs:    newHostNVS(cfg.NVSPath),
		aud:    newHostAudio(),
	}
}

func (h *hostHAL) Logger() Logger            { return h.logger }
func (h *hostHAL) GPIO() GPIO                { return h.gpio }
func (h *hostHAL) Display() Display          { return hostDisplay{fb: h.fb, bl: h.bl} }
func (h *hostHAL) Input() Input              { return hostInput{touch: h.touch} }
func (h *hostHAL) ADC() ADC                  { return h.adc }
func (h *hostHAL) SD() SDHost                { return h.sd }
func (h *hostHAL) CoProcessor() CoProcessor  { return h.co }
func (h *hostHAL) HTTP() HTTPClient          { return h.http }
func (h *hostHAL) System() System            { return h.sys }
func (h *hostHAL) NVS() NVS                  { return h.nvs }
func (h *hostHAL) Audio() AudioOut           { return h.aud }
func (h *hostHAL) InjectTouch(ev TouchEvent) { h.touch.inject(ev) }

func (h *hostHAL) OpenRS485(cfg SerialConfig) (SerialPort, error) {
	if cfg.Baud <= 0 {
		return nil, fmt.Errorf("rs485: invalid baud %d", cfg.Baud)
	}
	if h.cfg.RS485Device != "" {
		return openNativePort(h.cfg.RS485Device, cfg)
	}
	h.busMu.Lock()
	defer h.busMu.Unlock()
	if h.bus != nil && !h.bus.isClosed() {
		return nil, fmt.Errorf("rs485: uart%d already open", cfg.Port)
	}
	h.bus = newBusPeer(h.cfg.BusPeerInterval)
	return h.bus, nil
}

func (h *hostHAL) InjectRS485(p []byte) error {
	h.busMu.Lock()
	bus := h.bus
	h.busMu.Unlock()
	if bus == nil || bus.isClosed() {
		return fmt.Errorf("rs485: bus not open")
	}
	bus.deliver(p)
	return nil
}

type hostDisplay struct {
	fb *hostFramebuffer
	bl *hostBacklight
}

func (d hostDisplay) Init() error              { return nil }
func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }
func (d hostDisplay) Backlight() Backlight     { return d.bl }

type hostInput struct {
	touch *hostTouch
}

func (in hostInput) Touch() Touch { return in.touch }

type hostLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}

// SimControl adjusts simulated peripherals at runtime.
type SimControl interface {
	SetBatteryMillivolts(mv int)
	SetCardPresent(present bool)
}

func (h *hostHAL) SetBatteryMillivolts(mv int) { h.adc.setMillivolts(mv) }
func (h *hostHAL) SetCardPresent(present bool) { h.sd.setPresent(present) }
