package ui

import (
	"image/color"
	"math"
)

// RadiusCircle rounds the shorter side fully.
const RadiusCircle = -1

func effectiveRadius(r Rect, radius int) int {
	limit := min(r.W, r.H) / 2
	if radius == RadiusCircle || radius > limit {
		return limit
	}
	return max(radius, 0)
}

// rowSpan returns the horizontal extent of a rounded rectangle on row y.
func rowSpan(r Rect, radius, y int) (x0, x1 int, ok bool) {
	if r.Empty() || y < r.Y || y >= r.Y+r.H {
		return 0, 0, false
	}
	inset := 0
	dy := -1
	switch {
	case y < r.Y+radius:
		dy = r.Y + radius - 1 - y
	case y >= r.Y+r.H-radius:
		dy = y - (r.Y + r.H - radius)
	}
	if dy >= 0 {
		fr := float64(radius) - 0.5
		fy := float64(dy) + 0.5
		inset = radius - int(math.Round(math.Sqrt(max(fr*fr-fy*fy, 0))))
	}
	return r.X + inset, r.X + r.W - inset, true
}

// drawShape fills a rounded rectangle and strokes its border inside r.
// A nil fill leaves the interior untouched.
func drawShape(d *fbDisplay, r Rect, radius int, fill *color.RGBA, border int, bc color.RGBA) {
	radius = effectiveRadius(r, radius)
	inner := r.Inset(border)
	innerRadius := max(radius-border, 0)
	for y := r.Y; y < r.Y+r.H; y++ {
		ox0, ox1, _ := rowSpan(r, radius, y)
		ix0, ix1, inside := rowSpan(inner, innerRadius, y)
		if border <= 0 || inner.Empty() {
			inside, ix0, ix1 = true, ox0, ox1
		}
		if !inside {
			d.hline(ox0, ox1, y, bc)
			continue
		}
		if border > 0 {
			d.hline(ox0, ix0, y, bc)
			d.hline(ix1, ox1, y, bc)
		}
		if fill != nil {
			d.hline(ix0, ix1, y, *fill)
		}
	}
}

// drawHGradient fills r with a left-to-right blend.
func drawHGradient(d *fbDisplay, r Rect, from, to color.RGBA) {
	for x := 0; x < r.W; x++ {
		d.fill(Rect{X: r.X + x, Y: r.Y, W: 1, H: r.H}, lerpColor(from, to, x, max(r.W-1, 1)))
	}
}

// drawArc strokes the ring between radii rIn and rOut around cx, cy for
// angles [start, start+sweep) in degrees, clockwise from 12 o'clock.
func drawArc(d *fbDisplay, cx, cy, rIn, rOut int, start, sweep float64, c color.RGBA) {
	start = math.Mod(start, 360)
	if start < 0 {
		start += 360
	}
	in2, out2 := rIn*rIn, rOut*rOut
	for y := -rOut; y <= rOut; y++ {
		for x := -rOut; x <= rOut; x++ {
			dist := x*x + y*y
			if dist < in2 || dist > out2 {
				continue
			}
			a := math.Atan2(float64(x), float64(-y)) * 180 / math.Pi
			if a < 0 {
				a += 360
			}
			rel := a - start
			if rel < 0 {
				rel += 360
			}
			if rel < sweep {
				d.SetPixel(int16(cx+x), int16(cy+y), c)
			}
		}
	}
}

// fillCircleBuf paints a filled disc on an off-screen surface.
func fillCircleBuf(b *bufDisplay, cx, cy, radius int, c color.RGBA) {
	r2 := radius * radius
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y <= r2 {
				b.SetPixel(int16(cx+x), int16(cy+y), c)
			}
		}
	}
}
