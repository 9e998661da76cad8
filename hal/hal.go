package hal

import (
	"context"
	"io"
	"net/http"
	"time"

	"jcboard/internal/errcode"
)

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// ErrNotImplemented is returned by peripherals a platform cannot provide.
var ErrNotImplemented error = errcode.Unsupported

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// Backlight drives the panel backlight PWM.
type Backlight interface {
	SetBrightness(percent uint8) error
	Brightness() uint8
}

// Display is the panel: bring-up, framebuffer and backlight.
type Display interface {
	Init() error
	Framebuffer() Framebuffer
	Backlight() Backlight
}

// TouchPhase is the state of a touch contact.
type TouchPhase uint8

const (
	TouchPress TouchPhase = iota + 1
	TouchMove
	TouchRelease
)

// TouchEvent is one sample from the touch controller, in panel coordinates.
type TouchEvent struct {
	X, Y  int16
	Phase TouchPhase
}

// Touch delivers touch events (best-effort on each platform).
type Touch interface {
	Events() <-chan TouchEvent
}

// Input provides access to input devices (if available).
type Input interface {
	Touch() Touch
}

// ADC is a single analog channel.
type ADC interface {
	ReadRaw() (uint16, error)
	// Calibration returns nil when the chip carries no calibration data.
	Calibration() ADCCalibration
}

// ADCCalibration converts raw counts using the factory curve.
type ADCCalibration interface {
	RawToMillivolts(raw int) (int, error)
}

// PowerRail is an acquired on-chip LDO channel. Release is safe to call more
// than once; only the first call powers the rail down.
type PowerRail interface {
	Channel() int
	Release() error
}

// FileInfo describes one directory entry on a Volume.
type FileInfo struct {
	Name string
	Size int64
	Dir  bool
}

// Volume is a mounted filesystem. Paths are relative to the mount point.
type Volume interface {
	ReadDir(dir string) ([]FileInfo, error)
	Create(name string) (io.WriteCloser, error)
	Open(name string) (io.ReadSeekCloser, error)
}

// Card is a mounted SD card.
type Card interface {
	Volume
	Name() string
	CapacityBytes() uint64
	Unmount() error
}

// SDHost is the SD/MMC controller together with the LDO feeding the card.
type SDHost interface {
	NewPowerRail(ldoChannel int) (PowerRail, error)
	Mount(mountPoint string, rail PowerRail) (Card, error)
}

// Parity selects the UART parity bit.
type Parity uint8

const (
	ParityNone Parity = iota
	ParityEven
	ParityOdd
)

// SerialConfig selects port, pins and framing of a UART.
type SerialConfig struct {
	Port     int
	Baud     int
	TX, RX   int
	RTS      int
	DataBits int
	StopBits int
	Parity   Parity
}

// SerialPort is a byte stream with a context-aware receive.
type SerialPort interface {
	Write(p []byte) (int, error)
	// RecvSomeContext blocks until at least one byte arrives or ctx ends.
	RecvSomeContext(ctx context.Context, p []byte) (int, error)
	Close() error
}

// AuthMode is the WiFi security of an access point.
type AuthMode uint8

const (
	AuthOpen AuthMode = iota
	AuthWEP
	AuthWPA
	AuthWPA2
	AuthWPAWPA2
	AuthWPA3
	AuthOther
)

// AccessPoint is one WiFi scan record.
type AccessPoint struct {
	SSID    string
	RSSI    int8
	Channel uint8
	Auth    AuthMode
}

// ScanConfig tunes a WiFi scan.
type ScanConfig struct {
	Active     bool
	ShowHidden bool
	MinDwell   time.Duration
	MaxDwell   time.Duration
}

// StationConfig is what the station joins.
type StationConfig struct {
	SSID     string
	Password string
	MinAuth  AuthMode
}

// WiFiEventKind enumerates station events.
type WiFiEventKind uint8

const (
	WiFiStaStart WiFiEventKind = iota + 1
	WiFiStaDisconnected
	WiFiGotIP
)

// WiFiEvent is delivered on WiFi.Events.
type WiFiEvent struct {
	Kind WiFiEventKind
	IP   string
}

// WiFi is the station interface of the co-processor.
type WiFi interface {
	Init() error
	Configure(cfg StationConfig) error
	// Start brings the station up and emits WiFiStaStart.
	Start() error
	Connect() error
	Events() <-chan WiFiEvent
	Scan(ctx context.Context, cfg ScanConfig) ([]AccessPoint, error)
}

// BDAddr is a Bluetooth device address, most significant byte first.
type BDAddr [6]byte

// Advertisement is one BLE advertising report.
type Advertisement struct {
	Addr BDAddr
	Name string
	RSSI int8
}

// BLE is the Bluetooth LE central of the co-processor.
type BLE interface {
	Init() error
	// Scan reports advertisements to fn until window elapses or ctx ends.
	Scan(ctx context.Context, window time.Duration, fn func(Advertisement)) error
}

// CoProcessor is the network chip reached over the inter-chip transport.
// InitTransport must succeed before WiFi or BLE are touched.
type CoProcessor interface {
	InitTransport() error
	WiFi() WiFi
	BLE() BLE
}

// HTTPClient issues HTTP requests over the station interface.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ResetReason is why the chip last came out of reset.
type ResetReason uint8

const (
	ResetUnknown ResetReason = iota
	ResetPowerOn
	ResetExternal
	ResetSoftware
	ResetPanic
	ResetIntWatchdog
	ResetTaskWatchdog
	ResetWatchdog
	ResetDeepSleep
	ResetBrownout
	ResetSDIO
)

// WakeupCause is what ended the last sleep.
type WakeupCause uint8

const (
	WakeUndefined WakeupCause = iota
	WakeAll
	WakeExt0
	WakeExt1
	WakeTimer
	WakeTouchpad
	WakeULP
	WakeGPIO
	WakeUART
	WakeWiFi
	WakeCoCPU
	WakeCoCPUTrap
	WakeBT
)

// WakeConfig selects the wakeup sources for a sleep. A zero Timer disables
// the timer source; GPIO <= 0 disables the pin source (GPIO0 is a strapping
// pin and never a wake source on this board).
type WakeConfig struct {
	Timer     time.Duration
	GPIO      int
	GPIOLevel bool
}

// ChipInfo identifies the main processor.
type ChipInfo struct {
	Model    string
	Cores    int
	Revision int // major*100 + minor
}

// System is chip-level control.
type System interface {
	ResetReason() ResetReason
	WakeupCause() WakeupCause
	// Restart reboots the chip. It does not return on hardware.
	Restart()
	LightSleep(ctx context.Context, wake WakeConfig) (WakeupCause, error)
	// DeepSleep powers down until a wake source fires; the chip then resets.
	DeepSleep(wake WakeConfig)
	FreeHeap() uint32
	ChipInfo() ChipInfo
}

// Rebooter is implemented by systems whose Restart and DeepSleep return,
// such as the host simulation. The runner rebuilds the example on each
// receive.
type Rebooter interface {
	Reboots() <-chan struct{}
}

// NVS is the non-volatile key/value partition.
type NVS interface {
	// Init returns errcode.NVSNoFreePages or errcode.NVSNewVersion when the
	// partition must be erased first.
	Init() error
	Erase() error
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
}

// AudioOut is the codec plus an MP3 decoder.
type AudioOut interface {
	Init() error
	// SetVolume sets 0-100 and returns the level the codec applied.
	SetVolume(percent int) (int, error)
	// Play decodes src until it ends or Stop is called. The player owns src.
	Play(src io.ReadSeekCloser) error
	Stop() error
	// Done receives once each time a stream finishes on its own.
	Done() <-chan struct{}
}

// HAL provides the only contact point between the examples and the board.
type HAL interface {
	Logger() Logger
	GPIO() GPIO
	Display() Display
	Input() Input
	ADC() ADC
	SD() SDHost
	OpenRS485(cfg SerialConfig) (SerialPort, error)
	CoProcessor() CoProcessor
	HTTP() HTTPClient
	System() System
	NVS() NVS
	Audio() AudioOut
}
