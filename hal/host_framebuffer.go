//go:build !tinygo

package hal

import (
	"fmt"
	"sync"
)

type hostFramebuffer struct {
	mu     sync.Mutex
	width  int
	height int
	stride int
	buf    []byte
	shown  []byte // last presented frame
}

func newHostFramebuffer(width, height int) *hostFramebuffer {
	stride := width * 2
	return &hostFramebuffer{
		width:  width,
		height: height,
		stride: stride,
		buf:    make([]byte, stride*height),
		shown:  make([]byte, stride*height),
	}
}

func (f *hostFramebuffer) Width() int          { return f.width }
func (f *hostFramebuffer) Height() int         { return f.height }
func (f *hostFramebuffer) Format() PixelFormat { return PixelFormatRGB565 }
func (f *hostFramebuffer) StrideBytes() int    { return f.stride }
func (f *hostFramebuffer) Buffer() []byte      { return f.buf }

// Present latches the draw buffer so the window never shows a half-drawn frame.
func (f *hostFramebuffer) Present() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy(f.shown, f.buf)
	return nil
}

func (f *hostFramebuffer) ClearRGB(r, g, b uint8) {
	fill565(f.buf, RGB565(r, g, b))
}

// snapshotRGBA converts the presented frame to RGBA, dimmed by the backlight.
func (f *hostFramebuffer) snapshotRGBA(dst []byte, brightness uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()
	scale := uint16(brightness)
	if scale > 100 {
		scale = 100
	}
	src := f.shown
	for i := 0; i+1 < len(src) && i*2+3 < len(dst); i += 2 {
		r, g, b := RGB888(uint16(src[i]) | uint16(src[i+1])<<8)
		j := i * 2
		dst[j+0] = uint8(uint16(r) * scale / 100)
		dst[j+1] = uint8(uint16(g) * scale / 100)
		dst[j+2] = uint8(uint16(b) * scale / 100)
		dst[j+3] = 0xFF
	}
}

type hostBacklight struct {
	mu    sync.Mutex
	level uint8
}

func (b *hostBacklight) SetBrightness(percent uint8) error {
	if percent > 100 {
		return fmt.Errorf("backlight: brightness %d out of range", percent)
	}
	b.mu.Lock()
	b.level = percent
	b.mu.Unlock()
	return nil
}

func (b *hostBacklight) Brightness() uint8 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.level
}
