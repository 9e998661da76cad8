package ui

import "image/color"

// Hex converts 0xRRGGBB to an opaque colour.
func Hex(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

var (
	White = Hex(0xFFFFFF)
	Black = Hex(0x000000)

	// Default widget palette.
	ButtonBG       = Hex(0x2196F3)
	ButtonPressed  = Hex(0x1565C0)
	ButtonDisabled = Hex(0x555555)
	BarBG          = Hex(0x333333)
	ListBG         = Hex(0x1E1E1E)
	ListDivider    = Hex(0x333333)
	TextDim        = Hex(0xAAAAAA)
)

func lerpColor(a, b color.RGBA, num, den int) color.RGBA {
	if den <= 0 {
		return a
	}
	mix := func(x, y uint8) uint8 {
		return uint8(int(x) + (int(y)-int(x))*num/den)
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 0xff}
}
