//go:build tinygo && baremetal && (rp2040 || rp2350)

package hal

import (
	"context"
	"machine"
	"time"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"

	"jcboard/internal/errcode"
)

// uartxRS485 uses the interrupt-driven uartx driver; the driver-enable line
// is raised for the duration of each write.
type uartxRS485 struct {
	u    *uartx.UART
	de   machine.Pin
	baud int
}

func openUARTRS485(cfg SerialConfig) (SerialPort, error) {
	if cfg.Port != RS485Port || cfg.Baud <= 0 {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "rs485 open", Msg: "unsupported port or baud"}
	}
	u := uartx.UART1
	if err := u.Configure(uartx.UARTConfig{
		BaudRate: uint32(cfg.Baud),
		TX:       machine.Pin(cfg.TX),
		RX:       machine.Pin(cfg.RX),
	}); err != nil {
		return nil, &errcode.E{C: errcode.HardwareAbsent, Op: "rs485 open", Err: err}
	}
	var par uartx.UARTParity
	switch cfg.Parity {
	case ParityEven:
		par = uartx.ParityEven
	case ParityOdd:
		par = uartx.ParityOdd
	default:
		par = uartx.ParityNone
	}
	data, stop := uint8(8), uint8(1)
	if cfg.DataBits > 0 {
		data = uint8(cfg.DataBits)
	}
	if cfg.StopBits > 0 {
		stop = uint8(cfg.StopBits)
	}
	if err := u.SetFormat(data, stop, par); err != nil {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "rs485 format", Err: err}
	}
	de := machine.Pin(cfg.RTS)
	de.Configure(machine.PinConfig{Mode: machine.PinOutput})
	de.Low()
	return &uartxRS485{u: u, de: de, baud: cfg.Baud}, nil
}

func (p *uartxRS485) Write(b []byte) (int, error) {
	p.de.High()
	n, err := p.u.Write(b)
	time.Sleep(time.Duration(len(b)+1) * 10 * time.Second / time.Duration(p.baud))
	p.de.Low()
	return n, err
}

func (p *uartxRS485) RecvSomeContext(ctx context.Context, b []byte) (int, error) {
	return p.u.RecvSomeContext(ctx, b)
}

func (p *uartxRS485) Close() error {
	p.de.Low()
	return nil
}
