package ui

import (
	"image/color"

	"jcboard/hal"

	"tinygo.org/x/drivers"
)

// fbDisplay adapts an RGB565 framebuffer to drivers.Displayer. Drawing is
// clipped to clip.
type fbDisplay struct {
	fb   hal.Framebuffer
	clip Rect
}

func newFBDisplay(fb hal.Framebuffer) *fbDisplay {
	d := &fbDisplay{fb: fb}
	d.resetClip()
	return d
}

func (d *fbDisplay) resetClip() {
	if d.fb == nil {
		d.clip = Rect{}
		return
	}
	d.clip = Rect{W: d.fb.Width(), H: d.fb.Height()}
}

// withClip narrows the clip to r for the duration of fn.
func (d *fbDisplay) withClip(r Rect, fn func()) {
	prev := d.clip
	d.clip = d.clip.Intersect(r)
	if !d.clip.Empty() {
		fn()
	}
	d.clip = prev
}

func (d *fbDisplay) Size() (x, y int16) {
	if d.fb == nil {
		return 0, 0
	}
	return int16(d.fb.Width()), int16(d.fb.Height())
}

func (d *fbDisplay) SetPixel(x, y int16, c color.RGBA) {
	if d.fb == nil || d.fb.Format() != hal.PixelFormatRGB565 {
		return
	}
	if !d.clip.Contains(int(x), int(y)) {
		return
	}
	hal.PutPixel(d.fb, int(x), int(y), hal.RGB565(c.R, c.G, c.B))
}

func (d *fbDisplay) Display() error {
	if d.fb == nil {
		return nil
	}
	return d.fb.Present()
}

func (d *fbDisplay) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	d.fill(Rect{X: int(x), Y: int(y), W: int(width), H: int(height)}, c)
	return nil
}

func (d *fbDisplay) fill(r Rect, c color.RGBA) {
	if d.fb == nil || d.fb.Format() != hal.PixelFormatRGB565 {
		return
	}
	r = r.Intersect(d.clip)
	if r.Empty() {
		return
	}
	buf := d.fb.Buffer()
	pixel := hal.RGB565(c.R, c.G, c.B)
	lo, hi := byte(pixel), byte(pixel>>8)
	stride := d.fb.StrideBytes()
	for py := r.Y; py < r.Y+r.H; py++ {
		row := py * stride
		for px := r.X; px < r.X+r.W; px++ {
			off := row + px*2
			if off+1 >= len(buf) {
				break
			}
			buf[off] = lo
			buf[off+1] = hi
		}
	}
}

func (d *fbDisplay) hline(x0, x1, y int, c color.RGBA) {
	if x1 > x0 {
		d.fill(Rect{X: x0, Y: y, W: x1 - x0, H: 1}, c)
	}
}

// blit copies an off-screen RGB565 buffer to x, y.
func (d *fbDisplay) blit(src *bufDisplay, x, y int) {
	if d.fb == nil || d.fb.Format() != hal.PixelFormatRGB565 || src == nil {
		return
	}
	dst := Rect{X: x, Y: y, W: src.w, H: src.h}.Intersect(d.clip)
	if dst.Empty() {
		return
	}
	buf := d.fb.Buffer()
	stride := d.fb.StrideBytes()
	for py := dst.Y; py < dst.Y+dst.H; py++ {
		so := ((py-y)*src.w + (dst.X - x)) * 2
		do := py*stride + dst.X*2
		n := dst.W * 2
		if do+n > len(buf) {
			return
		}
		copy(buf[do:do+n], src.pix[so:so+n])
	}
}

func (d *fbDisplay) SetScroll(line int16) {
	_ = line
}

func (d *fbDisplay) SetRotation(rotation drivers.Rotation) error {
	_ = rotation
	return nil
}

// bufDisplay is an off-screen RGB565 surface with software scrolling, used
// as the backing store of text areas and canvases.
type bufDisplay struct {
	w, h int
	pix  []byte
}

func newBufDisplay(w, h int) *bufDisplay {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &bufDisplay{w: w, h: h, pix: make([]byte, w*h*2)}
}

func (b *bufDisplay) Size() (x, y int16) { return int16(b.w), int16(b.h) }

func (b *bufDisplay) SetPixel(x, y int16, c color.RGBA) {
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= b.w || iy < 0 || iy >= b.h {
		return
	}
	pixel := hal.RGB565(c.R, c.G, c.B)
	off := (iy*b.w + ix) * 2
	b.pix[off] = byte(pixel)
	b.pix[off+1] = byte(pixel >> 8)
}

func (b *bufDisplay) pixel(x, y int) (color.RGBA, bool) {
	if x < 0 || x >= b.w || y < 0 || y >= b.h {
		return color.RGBA{}, false
	}
	off := (y*b.w + x) * 2
	r, g, bl := hal.RGB888(uint16(b.pix[off]) | uint16(b.pix[off+1])<<8)
	return color.RGBA{R: r, G: g, B: bl, A: 0xff}, true
}

func (b *bufDisplay) Display() error { return nil }

func (b *bufDisplay) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	r := Rect{X: int(x), Y: int(y), W: int(width), H: int(height)}.Intersect(Rect{W: b.w, H: b.h})
	if r.Empty() {
		return nil
	}
	pixel := hal.RGB565(c.R, c.G, c.B)
	lo, hi := byte(pixel), byte(pixel>>8)
	for py := r.Y; py < r.Y+r.H; py++ {
		row := py * b.w * 2
		for px := r.X; px < r.X+r.W; px++ {
			b.pix[row+px*2] = lo
			b.pix[row+px*2+1] = hi
		}
	}
	return nil
}

func (b *bufDisplay) ScrollUp(lines int16, bg color.RGBA) error {
	n := int(lines)
	if n <= 0 {
		return nil
	}
	if n >= b.h {
		return b.FillRectangle(0, 0, int16(b.w), int16(b.h), bg)
	}
	rowBytes := b.w * 2
	copy(b.pix, b.pix[n*rowBytes:])
	return b.FillRectangle(0, int16(b.h-n), int16(b.w), int16(n), bg)
}

func (b *bufDisplay) SetScroll(line int16) {
	_ = line
}

func (b *bufDisplay) SetRotation(rotation drivers.Rotation) error {
	_ = rotation
	return nil
}
