//go:build tinygo && baremetal && !(rp2040 || rp2350)

package hal

import (
	"context"
	"machine"
	"time"

	"jcboard/internal/errcode"
)

// uartRS485 drives the transceiver from machine.UART1 and toggles the
// driver-enable line around each write.
type uartRS485 struct {
	uart *machine.UART
	de   machine.Pin
	baud int
}

func openUARTRS485(cfg SerialConfig) (SerialPort, error) {
	if cfg.Port != RS485Port || cfg.Baud <= 0 {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "rs485 open", Msg: "unsupported port or baud"}
	}
	u := machine.UART1
	u.Configure(machine.UARTConfig{
		BaudRate: uint32(cfg.Baud),
		TX:       machine.Pin(cfg.TX),
		RX:       machine.Pin(cfg.RX),
	})
	de := machine.Pin(cfg.RTS)
	de.Configure(machine.PinConfig{Mode: machine.PinOutput})
	de.Low()
	return &uartRS485{uart: u, de: de, baud: cfg.Baud}, nil
}

func (p *uartRS485) Write(b []byte) (int, error) {
	p.de.High()
	n, err := p.uart.Write(b)
	// Hold the driver until the last stop bit has left the shift register.
	time.Sleep(time.Duration(len(b)+1) * 10 * time.Second / time.Duration(p.baud))
	p.de.Low()
	return n, err
}

func (p *uartRS485) RecvSomeContext(ctx context.Context, b []byte) (int, error) {
	for {
		if p.uart.Buffered() > 0 {
			n := 0
			for n < len(b) && p.uart.Buffered() > 0 {
				c, err := p.uart.ReadByte()
				if err != nil {
					break
				}
				b[n] = c
				n++
			}
			return n, nil
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(2 * time.Millisecond):
		}
	}
}

func (p *uartRS485) Close() error {
	p.de.Low()
	return nil
}
