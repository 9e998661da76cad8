// Package ui is a small retained widget tree drawn into an RGB565
// framebuffer. A Screen owns the tree and the display lock: widgets are
// created and changed only inside Screen.Update.
package ui

import (
	"image/color"
	"strings"
	"sync"

	"jcboard/hal"
)

// Screen is the root of the widget tree and its display lock.
type Screen struct {
	mu      sync.Mutex
	fb      hal.Framebuffer
	d       *fbDisplay
	root    *Box
	dirty   bool
	laidOut bool
	pressed Widget
}

// NewScreen returns an empty screen over fb with a black background.
func NewScreen(fb hal.Framebuffer) *Screen {
	s := &Screen{fb: fb, d: newFBDisplay(fb), dirty: true}
	s.root = NewBox(fb.Width(), fb.Height())
	s.root.SetFill(Black)
	return s
}

// Root is the full-screen container. Use it only inside Update.
func (s *Screen) Root() *Box { return s.root }

// Size is the panel size in pixels.
func (s *Screen) Size() (w, h int) { return s.fb.Width(), s.fb.Height() }

// SetBackground sets the root fill. Use it only inside Update.
func (s *Screen) SetBackground(c color.RGBA) { s.root.SetFill(c) }

// Update runs fn with the display lock held and schedules a redraw. fn
// must not block.
func (s *Screen) Update(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
	s.dirty = true
	s.laidOut = false
}

// Render redraws the tree when it changed or is animating and presents the
// framebuffer. It reports whether anything was drawn.
func (s *Screen) Render() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layout()
	if !s.dirty && !isAnimating(s.root) {
		return false, nil
	}
	s.d.resetClip()
	drawTree(s.d, s.root)
	s.dirty = false
	return true, s.fb.Present()
}

func (s *Screen) layout() {
	if s.laidOut {
		return
	}
	layout(s.root, Rect{W: s.fb.Width(), H: s.fb.Height()})
	s.laidOut = true
}

func drawTree(d *fbDisplay, w Widget) {
	f := w.frame()
	if f.hidden {
		return
	}
	w.draw(d, f.rect)
	if c, ok := w.(container); ok {
		d.withClip(f.rect, func() {
			for _, child := range c.children() {
				drawTree(d, child)
			}
		})
	}
}

func isAnimating(w Widget) bool {
	if w.frame().hidden {
		return false
	}
	if a, ok := w.(animator); ok && a.animating() {
		return true
	}
	if c, ok := w.(container); ok {
		for _, child := range c.children() {
			if isAnimating(child) {
				return true
			}
		}
	}
	return false
}

// HandleTouch dispatches ev to the topmost widget under a press, and to the
// pressed widget for move and release. Handlers run after the lock is
// released so they may call Update.
func (s *Screen) HandleTouch(ev hal.TouchEvent) {
	cb := s.dispatch(ev)
	if cb != nil {
		cb()
	}
}

func (s *Screen) dispatch(ev hal.TouchEvent) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layout()
	x, y := int(ev.X), int(ev.Y)

	target := s.pressed
	if ev.Phase == hal.TouchPress || target == nil {
		target = hitTest(s.root, x, y)
		s.pressed = target
	}
	if ev.Phase == hal.TouchRelease {
		s.pressed = nil
	}
	if target == nil {
		return nil
	}
	t := target.(toucher)
	r := target.frame().rect
	cb := t.touch(TouchEvent{X: x - r.X, Y: y - r.Y, SX: x, SY: y, Phase: ev.Phase}, r)
	// Pressed state changes the look of buttons.
	s.dirty = true
	return cb
}

// hitTest returns the last-drawn visible touch target containing x, y.
func hitTest(w Widget, x, y int) Widget {
	f := w.frame()
	if f.hidden || !f.rect.Contains(x, y) {
		return nil
	}
	if c, ok := w.(container); ok {
		kids := c.children()
		for i := len(kids) - 1; i >= 0; i-- {
			if hit := hitTest(kids[i], x, y); hit != nil {
				return hit
			}
		}
	}
	if _, ok := w.(toucher); ok {
		return w
	}
	return nil
}

// Texts lists the text of every visible label and button in drawing order.
func (s *Screen) Texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	walk(s.root, func(w Widget) {
		switch v := w.(type) {
		case *Label:
			out = append(out, v.text)
		case *Button:
			out = append(out, "["+v.text+"]")
		}
	})
	return out
}

// Find returns the screen centre of the first visible button whose caption
// matches text, ignoring case.
func (s *Screen) Find(text string) (x, y int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layout()
	walk(s.root, func(w Widget) {
		if b, isBtn := w.(*Button); isBtn && !ok && strings.EqualFold(b.text, text) {
			x, y = b.rect.Center()
			ok = true
		}
	})
	return x, y, ok
}

func walk(w Widget, fn func(Widget)) {
	if w.frame().hidden {
		return
	}
	fn(w)
	if c, ok := w.(container); ok {
		for _, child := range c.children() {
			walk(child, fn)
		}
	}
}
