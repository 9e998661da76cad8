package ui

import (
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jcboard/hal"
)

func TestGuardRejectsReentry(t *testing.T) {
	var g Guard
	require.True(t, g.Enter())
	assert.False(t, g.Enter())
	assert.True(t, g.Busy())
	g.Leave()
	assert.True(t, g.Enter())
}

func TestGuardSingleWinner(t *testing.T) {
	var g Guard
	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.Enter() {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestBarClamps(t *testing.T) {
	b := NewBar(100, 10)
	b.SetValue(150)
	assert.Equal(t, 100, b.Value())
	b.SetValue(-3)
	assert.Equal(t, 0, b.Value())
}

func TestListSelectAndDrag(t *testing.T) {
	s := NewScreen(newTestFB(480, 800))
	var l *List
	selected := -1
	s.Update(func() {
		l = NewList(460, 200)
		l.SetPos(10, 100)
		rows := make([]ListRow, 10)
		for i := range rows {
			rows[i] = ListRow{Title: "AP", Detail: "RSSI: -40 dBm | WPA2 | CH 6"}
		}
		l.SetRows(rows)
		l.OnSelect(func(i int) { selected = i })
		s.Root().Add(l)
	})

	tap(s, 50, 100+l.rowHeight+5)
	assert.Equal(t, 1, selected)

	selected = -1
	s.HandleTouch(hal.TouchEvent{X: 50, Y: 250, Phase: hal.TouchPress})
	s.HandleTouch(hal.TouchEvent{X: 50, Y: 150, Phase: hal.TouchMove})
	s.HandleTouch(hal.TouchEvent{X: 50, Y: 150, Phase: hal.TouchRelease})
	assert.Equal(t, -1, selected, "a drag does not select")
	assert.Equal(t, 100, l.scroll)

	s.Update(func() { l.SetRows(nil) })
	assert.Zero(t, l.scroll)
}

func TestCanvasGetsLocalCoordinates(t *testing.T) {
	s := NewScreen(newTestFB(480, 800))
	var got []TouchEvent
	var c *Canvas
	s.Update(func() {
		c = NewCanvas(460, 550, Hex(0x1a1a2e))
		c.Align(TopMid, 0, 70)
		c.OnTouch(func(ev TouchEvent) { got = append(got, ev) })
		s.Root().Add(c)
	})
	s.HandleTouch(hal.TouchEvent{X: 110, Y: 170, Phase: hal.TouchPress})
	s.HandleTouch(hal.TouchEvent{X: 120, Y: 180, Phase: hal.TouchMove})
	s.HandleTouch(hal.TouchEvent{X: 120, Y: 180, Phase: hal.TouchRelease})

	require.Len(t, got, 3)
	assert.Equal(t, TouchEvent{X: 100, Y: 100, SX: 110, SY: 170, Phase: hal.TouchPress}, got[0])
	assert.Equal(t, hal.TouchRelease, got[2].Phase)

	c.Line(0, 0, 20, 0, 8, Hex(0xFF0000))
	px, ok := c.Pixel(10, 0)
	require.True(t, ok)
	assert.Equal(t, uint8(0xFF), px.R)
	px, _ = c.Pixel(10, 30)
	assert.NotEqual(t, uint8(0xFF), px.R)
}

func TestTextAreaKeepsRecentText(t *testing.T) {
	ta := NewTextArea(220, 200)
	ta.Append("[5] 48 65 6C 6C 6F\r\n")
	ta.Append("Echo sent\n")
	assert.Equal(t, "[5] 48 65 6C 6C 6F\nEcho sent\n", ta.Text())

	for i := 0; i < 500; i++ {
		ta.Append("line of text that scrolls the terminal\n")
	}
	assert.LessOrEqual(t, len(ta.Text()), maxTextAreaBytes)

	ta.Clear()
	assert.Empty(t, ta.Text())
}

func TestWrapRespectsWidth(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog again and again"
	wrapped := FontBody.Wrap(text, 120)
	for _, line := range strings.Split(wrapped, "\n") {
		assert.LessOrEqual(t, FontBody.Width(line), 120, line)
	}
	assert.Equal(t, strings.Fields(text), strings.Fields(wrapped))
}

func TestDrawShapeRing(t *testing.T) {
	fb := newTestFB(100, 100)
	d := newFBDisplay(fb)
	drawShape(d, Rect{W: 100, H: 100}, RadiusCircle, nil, 10, White)
	assert.Equal(t, rgb(White), fb.at(50, 5), "on the ring")
	assert.Zero(t, fb.at(50, 50), "ring centre stays transparent")
	assert.Zero(t, fb.at(1, 1), "outside the circle")
}
