//go:build tinygo && baremetal

package hal

import (
	"machine"
)

type tinyGoHAL struct {
	logger *uartLogger
	gpio   GPIO
	disp   *tinyGoDisplay
	touch  *stubTouch
	adc    *machineADC
	sd     *fatSDHost
	co     stubCoProcessor
	sys    *tinyGoSystem
	nvs    NVS
	rs485  rs485Opener
}

// New returns the board HAL for TinyGo builds.
//
// Console: UART0 at 115200 8N1. The MIPI-DSI panel, the network
// co-processor and the audio codec have no TinyGo drivers; the framebuffer
// lives in RAM and the others report ErrNotImplemented.
func New() HAL {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{BaudRate: 115200})

	intPin := machine.Pin(PinTouchInt)
	gpio := newVirtualGPIO([]GPIOPin{newMachinePin(PinName(PinTouchInt), intPin, GPIOCapInput|GPIOCapPullUp|GPIOCapWake)})

	return &tinyGoHAL{
		logger: &uartLogger{uart: uart},
		gpio:   gpio,
		disp:   newTinyGoDisplay(PanelWidth, PanelHeight),
		touch:  &stubTouch{},
		adc:    newMachineADC(machine.Pin(PinBattery)),
		sd:     newFatSDHost(),
		sys:    &tinyGoSystem{intPin: intPin},
		nvs:    newBoardNVS(),
		rs485:  openUARTRS485,
	}
}

func (h *tinyGoHAL) Logger() Logger           { return h.logger }
func (h *tinyGoHAL) GPIO() GPIO               { return h.gpio }
func (h *tinyGoHAL) Display() Display         { return h.disp }
func (h *tinyGoHAL) Input() Input             { return tinyGoInput{touch: h.touch} }
func (h *tinyGoHAL) ADC() ADC                 { return h.adc }
func (h *tinyGoHAL) SD() SDHost               { return h.sd }
func (h *tinyGoHAL) CoProcessor() CoProcessor { return h.co }
func (h *tinyGoHAL) HTTP() HTTPClient         { return stubHTTP{} }
func (h *tinyGoHAL) System() System           { return h.sys }
func (h *tinyGoHAL) NVS() NVS                 { return h.nvs }
func (h *tinyGoHAL) Audio() AudioOut          { return stubAudio{} }

func (h *tinyGoHAL) OpenRS485(cfg SerialConfig) (SerialPort, error) { return h.rs485(cfg) }

type rs485Opener func(cfg SerialConfig) (SerialPort, error)
