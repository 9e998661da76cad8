package app

import (
	"image/color"
	"log/slog"
	"strings"
	"unicode/utf8"

	"jcboard/hal"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

var (
	fatalFG = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	fatalBG = [3]uint8{0xB0, 0x00, 0x20}
)

// drawFatal paints lines on a red screen at full backlight. The panel may
// not have been brought up yet when NVS fails, so it is initialised here.
func drawFatal(h hal.HAL, log *slog.Logger, lines []string) {
	disp := h.Display()
	if disp == nil {
		return
	}
	if err := disp.Init(); err != nil {
		log.Error("fatal screen: display", "err", err)
		return
	}
	fb := disp.Framebuffer()
	if fb == nil {
		return
	}
	_ = disp.Backlight().SetBrightness(100)
	fb.ClearRGB(fatalBG[0], fatalBG[1], fatalBG[2])

	font := &proggy.TinySZ8pt7b
	_, adv := tinyfont.LineWidth(font, "0")
	fontWidth := int16(adv)
	fontHeight := int16(font.YAdvance)
	if fontWidth <= 0 || fontHeight <= 0 {
		_ = fb.Present()
		return
	}

	d := panicDisplay{fb: fb}
	const margin = 8
	cols := (int16(fb.Width()) - 2*margin) / fontWidth
	y := int16(margin)
	for _, line := range lines {
		for len(line) > 0 {
			if y+fontHeight > int16(fb.Height()) {
				_ = fb.Present()
				return
			}
			chunk, rest := takeRunes(line, cols)
			drawTextLine(d, font, fontWidth, margin, y+fontHeight, chunk, fatalFG)
			y += fontHeight
			line = strings.TrimLeft(rest, " ")
		}
	}
	if err := fb.Present(); err != nil {
		log.Error("fatal screen: present", "err", err)
	}
}

func drawTextLine(d panicDisplay, font tinyfont.Fonter, fontWidth, x, baseline int16, s string, fg color.RGBA) {
	for _, r := range s {
		tinyfont.DrawChar(d, font, x, baseline, r, fg)
		x += fontWidth
	}
}

// panicDisplay draws straight into the framebuffer, bypassing the widget
// tree, which may be the thing that failed.
type panicDisplay struct {
	fb hal.Framebuffer
}

func (d panicDisplay) Size() (x, y int16) {
	return int16(d.fb.Width()), int16(d.fb.Height())
}

func (d panicDisplay) SetPixel(x, y int16, c color.RGBA) {
	if d.fb.Format() == hal.PixelFormatRGB565 {
		hal.PutPixel(d.fb, int(x), int(y), hal.RGB565(c.R, c.G, c.B))
	}
}

func (d panicDisplay) Display() error { return nil }

// takeRunes splits s after n runes.
func takeRunes(s string, n int16) (prefix, rest string) {
	if n <= 0 {
		return s, ""
	}
	i, count := 0, int16(0)
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		count++
	}
	return s[:i], s[i:]
}
