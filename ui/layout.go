package ui

import "jcboard/hal"

// Align anchors a widget inside its parent. Offsets move it from the anchor
// point: positive X to the right, positive Y downwards.
type Align uint8

const (
	TopLeft Align = iota
	TopMid
	TopRight
	LeftMid
	Center
	RightMid
	BottomLeft
	BottomMid
	BottomRight
)

// Rect is a screen-space rectangle.
type Rect struct {
	X, Y, W, H int
}

func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

func (r Rect) Inset(n int) Rect {
	return Rect{X: r.X + n, Y: r.Y + n, W: r.W - 2*n, H: r.H - 2*n}
}

func (r Rect) Intersect(o Rect) Rect {
	x0, y0 := max(r.X, o.X), max(r.Y, o.Y)
	x1, y1 := min(r.X+r.W, o.X+o.W), min(r.Y+r.H, o.Y+o.H)
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Center returns the middle point of r.
func (r Rect) Center() (x, y int) { return r.X + r.W/2, r.Y + r.H/2 }

func place(parent Rect, a Align, dx, dy, w, h int) Rect {
	x, y := parent.X, parent.Y
	switch a {
	case TopMid, Center, BottomMid:
		x += (parent.W - w) / 2
	case TopRight, RightMid, BottomRight:
		x += parent.W - w
	}
	switch a {
	case LeftMid, Center, RightMid:
		y += (parent.H - h) / 2
	case BottomLeft, BottomMid, BottomRight:
		y += parent.H - h
	}
	return Rect{X: x + dx, Y: y + dy, W: w, H: h}
}

// Frame is the placement every widget embeds. A zero width or height sizes
// the widget to its content.
type Frame struct {
	align  Align
	dx, dy int
	w, h   int
	hidden bool
	rect   Rect
}

func (f *Frame) frame() *Frame { return f }

// Align anchors the widget at a in its parent, shifted by dx, dy.
func (f *Frame) Align(a Align, dx, dy int) {
	f.align, f.dx, f.dy = a, dx, dy
}

// SetPos places the top-left corner at x, y inside the parent.
func (f *Frame) SetPos(x, y int) { f.Align(TopLeft, x, y) }

func (f *Frame) SetSize(w, h int) { f.w, f.h = w, h }

func (f *Frame) SetHidden(hidden bool) { f.hidden = hidden }

func (f *Frame) Hidden() bool { return f.hidden }

// Rect is the screen rectangle from the last layout pass.
func (f *Frame) Rect() Rect { return f.rect }

// Widget is anything the Screen can lay out and draw.
type Widget interface {
	frame() *Frame
	// contentSize is used for dimensions the frame leaves at zero.
	contentSize() (w, h int)
	draw(d *fbDisplay, r Rect)
}

type container interface {
	children() []Widget
}

type animator interface {
	animating() bool
}

// TouchEvent is a touch in widget-local coordinates; SX, SY are the
// screen coordinates of the same point.
type TouchEvent struct {
	X, Y   int
	SX, SY int
	Phase  hal.TouchPhase
}

type toucher interface {
	// touch handles ev under the display lock and returns the callback to
	// run once the lock is released, or nil.
	touch(ev TouchEvent, r Rect) func()
}

func layout(w Widget, parent Rect) {
	f := w.frame()
	cw, ch := f.w, f.h
	if cw == 0 || ch == 0 {
		iw, ih := w.contentSize()
		if cw == 0 {
			cw = iw
		}
		if ch == 0 {
			ch = ih
		}
	}
	f.rect = place(parent, f.align, f.dx, f.dy, cw, ch)
	if c, ok := w.(container); ok {
		for _, child := range c.children() {
			layout(child, f.rect)
		}
	}
}
