//go:build !tinygo

package hal

import "testing"

func TestRGB565RoundTrip(t *testing.T) {
	cases := []struct {
		r, g, b uint8
		px      uint16
	}{
		{0xFF, 0xFF, 0xFF, 0xFFFF},
		{0, 0, 0, 0},
		{0xFF, 0, 0, 0xF800},
		{0, 0xFF, 0, 0x07E0},
		{0, 0, 0xFF, 0x001F},
	}
	for _, c := range cases {
		if got := RGB565(c.r, c.g, c.b); got != c.px {
			t.Fatalf("RGB565(%#x,%#x,%#x) = %#04x, want %#04x", c.r, c.g, c.b, got, c.px)
		}
		r, g, b := RGB888(c.px)
		if r != c.r || g != c.g || b != c.b {
			t.Fatalf("RGB888(%#04x) = %#x,%#x,%#x", c.px, r, g, b)
		}
	}
}

func TestPutPixelClips(t *testing.T) {
	fb := newHostFramebuffer(4, 2)
	PutPixel(fb, 1, 1, 0xABCD)
	PutPixel(fb, 4, 0, 0xFFFF)
	PutPixel(fb, -1, 0, 0xFFFF)
	buf := fb.Buffer()
	off := 1*fb.StrideBytes() + 2
	if buf[off] != 0xCD || buf[off+1] != 0xAB {
		t.Fatalf("pixel bytes = %#x %#x", buf[off], buf[off+1])
	}
	n := 0
	for _, b := range buf {
		if b != 0 {
			n++
		}
	}
	if n != 2 {
		t.Fatalf("%d bytes written, want 2", n)
	}
}
