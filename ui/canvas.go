package ui

import (
	"image/color"
	"math"
)

// Canvas is an off-screen RGB565 drawing surface that receives every touch
// phase.
type Canvas struct {
	Frame
	buf     *bufDisplay
	border  int
	bc      color.RGBA
	onTouch func(TouchEvent)
}

func NewCanvas(w, h int, bg color.RGBA) *Canvas {
	c := &Canvas{buf: newBufDisplay(w, h)}
	c.SetSize(w, h)
	c.Fill(bg)
	return c
}

// SetBorder draws a border of the given width over the canvas edge.
func (c *Canvas) SetBorder(width int, col color.RGBA) { c.border, c.bc = width, col }

// Fill paints the whole canvas.
func (c *Canvas) Fill(col color.RGBA) {
	_ = c.buf.FillRectangle(0, 0, int16(c.buf.w), int16(c.buf.h), col)
}

// Dot paints a filled circle centred on x, y in canvas coordinates.
func (c *Canvas) Dot(x, y, radius int, col color.RGBA) {
	fillCircleBuf(c.buf, x, y, radius, col)
}

// Line strokes from x0, y0 to x1, y1 with round caps.
func (c *Canvas) Line(x0, y0, x1, y1, width int, col color.RGBA) {
	radius := max(width/2, 1)
	steps := int(math.Ceil(math.Hypot(float64(x1-x0), float64(y1-y0))))
	for i := 0; i <= steps; i++ {
		x, y := x0, y0
		if steps > 0 {
			x = x0 + (x1-x0)*i/steps
			y = y0 + (y1-y0)*i/steps
		}
		fillCircleBuf(c.buf, x, y, radius, col)
	}
}

// Pixel returns the colour at x, y.
func (c *Canvas) Pixel(x, y int) (color.RGBA, bool) { return c.buf.pixel(x, y) }

// OnTouch registers fn for press, move and release on the canvas.
func (c *Canvas) OnTouch(fn func(TouchEvent)) { c.onTouch = fn }

func (c *Canvas) contentSize() (int, int) { return 0, 0 }

func (c *Canvas) draw(d *fbDisplay, r Rect) {
	d.blit(c.buf, r.X, r.Y)
	if c.border > 0 {
		drawShape(d, r, 0, nil, c.border, c.bc)
	}
}

func (c *Canvas) touch(ev TouchEvent, r Rect) func() {
	if c.onTouch == nil {
		return nil
	}
	fn := c.onTouch
	return func() { fn(ev) }
}
