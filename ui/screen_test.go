package ui

import (
	"image/color"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jcboard/hal"
)

type testFB struct {
	w, h     int
	buf      []byte
	presents int
}

func newTestFB(w, h int) *testFB { return &testFB{w: w, h: h, buf: make([]byte, w*h*2)} }

func (f *testFB) Width() int              { return f.w }
func (f *testFB) Height() int             { return f.h }
func (f *testFB) Format() hal.PixelFormat { return hal.PixelFormatRGB565 }
func (f *testFB) StrideBytes() int        { return f.w * 2 }
func (f *testFB) Buffer() []byte          { return f.buf }
func (f *testFB) ClearRGB(r, g, b uint8)  {}
func (f *testFB) Present() error          { f.presents++; return nil }

func (f *testFB) at(x, y int) uint16 {
	off := (y*f.w + x) * 2
	return uint16(f.buf[off]) | uint16(f.buf[off+1])<<8
}

func rgb(c color.RGBA) uint16 { return hal.RGB565(c.R, c.G, c.B) }

func tap(s *Screen, x, y int) {
	s.HandleTouch(hal.TouchEvent{X: int16(x), Y: int16(y), Phase: hal.TouchPress})
	s.HandleTouch(hal.TouchEvent{X: int16(x), Y: int16(y), Phase: hal.TouchRelease})
}

func TestPlaceAlignments(t *testing.T) {
	parent := Rect{W: 480, H: 800}
	assert.Equal(t, Rect{X: 140, Y: 50, W: 200, H: 20}, place(parent, TopMid, 0, 50, 200, 20))
	assert.Equal(t, Rect{X: 140, Y: 730, W: 200, H: 20}, place(parent, BottomMid, 0, -50, 200, 20))
	assert.Equal(t, Rect{X: 140, Y: 450, W: 200, H: 60}, place(parent, Center, 0, 80, 200, 60))
	assert.Equal(t, Rect{X: 270, Y: 40, W: 200, H: 20}, place(parent, TopRight, -10, 40, 200, 20))
}

func TestRenderFillsBoxes(t *testing.T) {
	fb := newTestFB(100, 100)
	s := NewScreen(fb)
	s.Update(func() {
		s.SetBackground(Hex(0x003366))
		b := NewBox(20, 20)
		b.SetPos(10, 10)
		b.SetFill(Hex(0xFF0000))
		s.Root().Add(b)
	})

	drawn, err := s.Render()
	require.NoError(t, err)
	assert.True(t, drawn)
	assert.Equal(t, rgb(Hex(0xFF0000)), fb.at(15, 15))
	assert.Equal(t, rgb(Hex(0x003366)), fb.at(50, 50))

	drawn, err = s.Render()
	require.NoError(t, err)
	assert.False(t, drawn, "nothing changed")
	assert.Equal(t, 1, fb.presents)
}

func TestButtonClickRunsOutsideLock(t *testing.T) {
	s := NewScreen(newTestFB(480, 800))
	lbl := NewLabel("Clicked: 0 times")
	clicks := 0
	s.Update(func() {
		btn := NewButton("Click Me!", 200, 60)
		btn.Align(Center, 0, 0)
		btn.OnClick(func() {
			clicks++
			// Taking the lock here would deadlock if handlers ran under it.
			s.Update(func() { lbl.SetText("Clicked: 1 times") })
		})
		s.Root().Add(btn)
		s.Root().Add(lbl)
	})

	tap(s, 240, 400)
	assert.Equal(t, 1, clicks)
	assert.Contains(t, s.Texts(), "Clicked: 1 times")

	tap(s, 10, 10)
	assert.Equal(t, 1, clicks, "tap outside the button")
}

func TestButtonReleaseOutsideCancels(t *testing.T) {
	s := NewScreen(newTestFB(480, 800))
	clicks := 0
	s.Update(func() {
		btn := NewButton("Next", 120, 45)
		btn.SetPos(0, 0)
		btn.OnClick(func() { clicks++ })
		s.Root().Add(btn)
	})
	s.HandleTouch(hal.TouchEvent{X: 10, Y: 10, Phase: hal.TouchPress})
	s.HandleTouch(hal.TouchEvent{X: 300, Y: 300, Phase: hal.TouchMove})
	s.HandleTouch(hal.TouchEvent{X: 300, Y: 300, Phase: hal.TouchRelease})
	assert.Zero(t, clicks)
}

func TestDisabledButtonIgnoresTaps(t *testing.T) {
	s := NewScreen(newTestFB(480, 800))
	var btn *Button
	clicks := 0
	s.Update(func() {
		btn = NewButton("Scan", 120, 45)
		btn.OnClick(func() { clicks++ })
		btn.SetDisabled(true)
		s.Root().Add(btn)
	})
	tap(s, 5, 5)
	assert.Zero(t, clicks)

	s.Update(func() { btn.SetDisabled(false) })
	tap(s, 5, 5)
	assert.Equal(t, 1, clicks)
}

func TestTopmostWidgetWins(t *testing.T) {
	s := NewScreen(newTestFB(200, 200))
	var hit string
	s.Update(func() {
		a := NewButton("A", 100, 100)
		a.OnClick(func() { hit = "A" })
		b := NewButton("B", 50, 50)
		b.OnClick(func() { hit = "B" })
		s.Root().Add(a)
		s.Root().Add(b)
	})
	tap(s, 10, 10)
	assert.Equal(t, "B", hit)
	tap(s, 80, 80)
	assert.Equal(t, "A", hit)
}

func TestHiddenWidgetsAreSkipped(t *testing.T) {
	s := NewScreen(newTestFB(200, 200))
	clicks := 0
	s.Update(func() {
		b := NewButton("Cancel", 100, 100)
		b.OnClick(func() { clicks++ })
		b.SetHidden(true)
		s.Root().Add(b)
	})
	tap(s, 10, 10)
	assert.Zero(t, clicks)
	assert.Empty(t, s.Texts())
}

func TestFindButton(t *testing.T) {
	s := NewScreen(newTestFB(480, 800))
	s.Update(func() {
		b := NewButton("Reset Now", 200, 60)
		b.Align(TopMid, 0, 100)
		s.Root().Add(b)
	})
	x, y, ok := s.Find("reset now")
	require.True(t, ok)
	assert.Equal(t, 240, x)
	assert.Equal(t, 130, y)

	_, _, ok = s.Find("missing")
	assert.False(t, ok)
}

func TestNestedLayoutIsRelativeToParent(t *testing.T) {
	s := NewScreen(newTestFB(480, 800))
	var inner *Box
	s.Update(func() {
		outer := NewBox(200, 200)
		outer.SetPos(100, 100)
		inner = NewBox(20, 20)
		inner.Align(BottomRight, 0, 0)
		outer.Add(inner)
		s.Root().Add(outer)
	})
	_, err := s.Render()
	require.NoError(t, err)
	assert.Equal(t, Rect{X: 280, Y: 280, W: 20, H: 20}, inner.Rect())
}

func TestSpinnerKeepsRendering(t *testing.T) {
	fb := newTestFB(100, 100)
	s := NewScreen(fb)
	var sp *Spinner
	s.Update(func() {
		sp = NewSpinner(50)
		s.Root().Add(sp)
	})
	for i := 0; i < 3; i++ {
		drawn, err := s.Render()
		require.NoError(t, err)
		assert.True(t, drawn)
	}
	s.Update(func() { sp.SetHidden(true) })
	_, _ = s.Render()
	drawn, _ := s.Render()
	assert.False(t, drawn)
}

func TestConcurrentUpdatesAreSerialised(t *testing.T) {
	s := NewScreen(newTestFB(100, 100))
	lbl := NewLabel("")
	s.Update(func() { s.Root().Add(lbl) })

	var wg sync.WaitGroup
	n := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Update(func() { n++ })
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 10; i++ {
			_, _ = s.Render()
		}
	}()
	wg.Wait()
	assert.Equal(t, 50, n)
}
