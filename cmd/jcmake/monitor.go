//go:build !tinygo

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"
)

// monitor copies the board console to stdout until ctx ends.
func monitor(ctx context.Context, o *options) error {
	p, err := serial.OpenPort(&serial.Config{Name: o.port, Baud: o.baud, ReadTimeout: 200 * time.Millisecond})
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", o.port, err)
	}
	defer p.Close()
	fmt.Fprintf(o.stderr, "--- %s on %s @ %d (Ctrl-C to quit)\n", o.example.Name(), o.port, o.baud)
	return pump(ctx, p, o.stdout)
}

// pump copies r to w. r must return within its read timeout so ctx is
// checked between reads.
func pump(ctx context.Context, r io.Reader, w io.Writer) error {
	buf := make([]byte, 256)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read: %w", err)
		}
	}
}
