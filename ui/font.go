package ui

import (
	"image/color"
	"strings"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freemono"
	"tinygo.org/x/tinyfont/freesans"
	"tinygo.org/x/tinyfont/proggy"
)

// Font is a tinyfont face with line metrics.
type Font struct {
	face   tinyfont.Fonter
	ascent int
	height int
}

var (
	FontTitle = newFont(&freesans.Bold12pt7b)
	FontBody  = newFont(&freesans.Regular9pt7b)
	FontMono  = newFont(&freemono.Bold9pt7b)
	FontSmall = newFont(&proggy.TinySZ8pt7b)
)

// newFont derives the ascent and line height from the printable ASCII glyph
// extents; YAdvance is used when it is taller.
func newFont(face tinyfont.Fonter) *Font {
	minY, maxY := 0, 0
	for r := rune(0x20); r < 0x7f; r++ {
		info := face.GetGlyph(r).Info()
		top := int(info.YOffset)
		bottom := top + int(info.Height)
		minY = min(minY, top)
		maxY = max(maxY, bottom)
	}
	h := maxY - minY
	if adv := int(face.GetYAdvance()); adv > h {
		h = adv
	}
	return &Font{face: face, ascent: -minY, height: h}
}

// LineHeight is the distance between baselines.
func (f *Font) LineHeight() int { return f.height }

// Width is the advance of s on one line.
func (f *Font) Width(s string) int {
	_, w := tinyfont.LineWidth(f.face, s)
	return int(w)
}

// Measure returns the size of s with each "\n" starting a new line.
func (f *Font) Measure(s string) (w, h int) {
	lines := strings.Split(s, "\n")
	for _, l := range lines {
		w = max(w, f.Width(l))
	}
	return w, len(lines) * f.height
}

// draw writes s with its top-left corner at x, y.
func (f *Font) draw(d drivers.Displayer, x, y int, s string, c color.RGBA) {
	for i, l := range strings.Split(s, "\n") {
		tinyfont.WriteLine(d, f.face, int16(x), int16(y+i*f.height+f.ascent), l, c)
	}
}

// Wrap breaks s into lines no wider than maxW, splitting at spaces and
// inside words longer than a line.
func (f *Font) Wrap(s string, maxW int) string {
	if maxW <= 0 {
		return s
	}
	var out []string
	for _, para := range strings.Split(s, "\n") {
		line := ""
		for _, word := range strings.Fields(para) {
			for f.Width(word) > maxW && len(word) > 1 {
				if line != "" {
					out = append(out, line)
					line = ""
				}
				cut := len(word) - 1
				for cut > 1 && f.Width(word[:cut]) > maxW {
					cut--
				}
				out = append(out, word[:cut])
				word = word[cut:]
			}
			switch {
			case line == "":
				line = word
			case f.Width(line+" "+word) <= maxW:
				line += " " + word
			default:
				out = append(out, line)
				line = word
			}
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
