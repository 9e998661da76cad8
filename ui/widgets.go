package ui

import (
	"image/color"

	"jcboard/hal"
)

// Box is a rectangle with optional fill, border and corner radius. It
// holds child widgets laid out inside it.
type Box struct {
	Frame
	fill        *color.RGBA
	radius      int
	border      int
	borderColor color.RGBA
	kids        []Widget
}

// NewBox returns a transparent w×h container.
func NewBox(w, h int) *Box {
	b := &Box{}
	b.SetSize(w, h)
	return b
}

func (b *Box) SetFill(c color.RGBA) { b.fill = &c }

// Fill reports the fill colour; ok is false for a transparent box.
func (b *Box) Fill() (c color.RGBA, ok bool) {
	if b.fill == nil {
		return color.RGBA{}, false
	}
	return *b.fill, true
}

// SetTransparent removes the fill.
func (b *Box) SetTransparent() { b.fill = nil }

func (b *Box) SetRadius(r int) { b.radius = r }

func (b *Box) SetBorder(width int, c color.RGBA) {
	b.border, b.borderColor = width, c
}

// Add appends w on top of the existing children and returns it.
func (b *Box) Add(w Widget) Widget {
	b.kids = append(b.kids, w)
	return w
}

// Clean removes every child.
func (b *Box) Clean() { b.kids = nil }

func (b *Box) children() []Widget { return b.kids }

func (b *Box) contentSize() (int, int) { return 0, 0 }

func (b *Box) draw(d *fbDisplay, r Rect) {
	if b.fill != nil || b.border > 0 {
		drawShape(d, r, b.radius, b.fill, b.border, b.borderColor)
	}
}

// Label is a line of text; with a fixed width it wraps at word boundaries.
type Label struct {
	Frame
	text  string
	font  *Font
	color color.RGBA
	wrap  bool
}

func NewLabel(text string) *Label {
	return &Label{text: text, font: FontBody, color: White}
}

func (l *Label) Text() string          { return l.text }
func (l *Label) SetText(s string)      { l.text = s }
func (l *Label) SetFont(f *Font)       { l.font = f }
func (l *Label) SetColor(c color.RGBA) { l.color = c }
func (l *Label) Color() color.RGBA     { return l.color }

// SetWrap fixes the width to w and wraps the text to it.
func (l *Label) SetWrap(w int) {
	l.w = w
	l.wrap = w > 0
}

func (l *Label) lines() string {
	if l.wrap {
		return l.font.Wrap(l.text, l.w)
	}
	return l.text
}

func (l *Label) contentSize() (int, int) { return l.font.Measure(l.lines()) }

func (l *Label) draw(d *fbDisplay, r Rect) {
	l.font.draw(d, r.X, r.Y, l.lines(), l.color)
}

// Button is a rounded, clickable rectangle with a centred caption.
type Button struct {
	Frame
	text     string
	font     *Font
	bg       color.RGBA
	fg       color.RGBA
	disabled bool
	pressed  bool
	onClick  func()
}

func NewButton(text string, w, h int) *Button {
	b := &Button{text: text, font: FontBody, bg: ButtonBG, fg: White}
	b.SetSize(w, h)
	return b
}

func (b *Button) Text() string            { return b.text }
func (b *Button) SetText(s string)        { b.text = s }
func (b *Button) SetBG(c color.RGBA)      { b.bg = c }
func (b *Button) BG() color.RGBA          { return b.bg }
func (b *Button) SetDisabled(v bool)      { b.disabled = v }
func (b *Button) Disabled() bool          { return b.disabled }
func (b *Button) OnClick(fn func())       { b.onClick = fn }
func (b *Button) contentSize() (int, int) { return b.font.Measure(b.text) }

func (b *Button) draw(d *fbDisplay, r Rect) {
	bg := b.bg
	switch {
	case b.disabled:
		bg = ButtonDisabled
	case b.pressed:
		bg = lerpColor(bg, Black, 1, 3)
	}
	drawShape(d, r, 8, &bg, 0, bg)
	w, h := b.font.Measure(b.text)
	fg := b.fg
	if b.disabled {
		fg = TextDim
	}
	b.font.draw(d, r.X+(r.W-w)/2, r.Y+(r.H-h)/2, b.text, fg)
}

func (b *Button) touch(ev TouchEvent, r Rect) func() {
	if b.disabled {
		b.pressed = false
		return nil
	}
	switch ev.Phase {
	case hal.TouchPress:
		b.pressed = true
	case hal.TouchMove:
		b.pressed = ev.X >= 0 && ev.Y >= 0 && ev.X < r.W && ev.Y < r.H
	case hal.TouchRelease:
		inside := b.pressed && ev.X >= 0 && ev.Y >= 0 && ev.X < r.W && ev.Y < r.H
		b.pressed = false
		if inside {
			return b.onClick
		}
	}
	return nil
}

// Gradient is a horizontal two-colour blend.
type Gradient struct {
	Frame
	from, to color.RGBA
}

func NewGradient(w, h int, from, to color.RGBA) *Gradient {
	g := &Gradient{from: from, to: to}
	g.SetSize(w, h)
	return g
}

func (g *Gradient) contentSize() (int, int)   { return 0, 0 }
func (g *Gradient) draw(d *fbDisplay, r Rect) { drawHGradient(d, r, g.from, g.to) }

// Bar shows a 0-100 value as a filled track.
type Bar struct {
	Frame
	value int
	bg    color.RGBA
	fg    color.RGBA
}

func NewBar(w, h int) *Bar {
	b := &Bar{bg: BarBG, fg: ButtonBG}
	b.SetSize(w, h)
	return b
}

// SetValue clamps v to 0..100.
func (b *Bar) SetValue(v int) { b.value = min(max(v, 0), 100) }
func (b *Bar) Value() int     { return b.value }

func (b *Bar) SetColor(c color.RGBA) { b.fg = c }
func (b *Bar) Color() color.RGBA     { return b.fg }

func (b *Bar) contentSize() (int, int) { return 0, 0 }

func (b *Bar) draw(d *fbDisplay, r Rect) {
	drawShape(d, r, RadiusCircle, &b.bg, 0, b.bg)
	if w := r.W * b.value / 100; w > 0 {
		drawShape(d, Rect{X: r.X, Y: r.Y, W: w, H: r.H}, RadiusCircle, &b.fg, 0, b.fg)
	}
}

// Slider is a Bar with a knob that follows the finger. OnChange runs on
// release with the final value.
type Slider struct {
	Bar
	knob     color.RGBA
	onChange func(v int)
}

func NewSlider(w, h int) *Slider {
	s := &Slider{Bar: Bar{bg: BarBG, fg: ButtonBG}, knob: White}
	s.SetSize(w, h)
	return s
}

func (s *Slider) SetKnobColor(c color.RGBA) { s.knob = c }
func (s *Slider) OnChange(fn func(v int))   { s.onChange = fn }

func (s *Slider) draw(d *fbDisplay, r Rect) {
	s.Bar.draw(d, r)
	k := r.H + 6
	x := r.X + r.W*s.value/100 - k/2
	drawShape(d, Rect{X: x, Y: r.Y - 3, W: k, H: k}, RadiusCircle, &s.knob, 0, s.knob)
}

func (s *Slider) touch(ev TouchEvent, r Rect) func() {
	if r.W <= 0 {
		return nil
	}
	s.SetValue(ev.X * 100 / r.W)
	if ev.Phase != hal.TouchRelease || s.onChange == nil {
		return nil
	}
	fn, v := s.onChange, s.value
	return func() { fn(v) }
}
