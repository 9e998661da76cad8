//go:build tinygo && bootdebug

package app

import (
	"image/color"
	"machine"

	"jcboard/hal"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// bootStep shows the boot phase on the panel and echoes it to USB CDC, so a
// board that hangs early still says where.
func bootStep(h hal.HAL, step string) {
	line := "bootdiag: " + step
	if l := h.Logger(); l != nil {
		l.WriteLineString(line)
	}
	if usb := machine.USBCDC; usb != nil {
		_, _ = usb.Write([]byte(line + "\r\n"))
	}

	// The panel is only up between display init and the first render.
	disp := h.Display()
	if disp == nil || step != "ui" {
		return
	}
	fb := disp.Framebuffer()
	if fb == nil {
		return
	}
	fb.ClearRGB(0, 0, 0)
	fg := color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	d := panicDisplay{fb: fb}
	tinyfont.WriteLine(d, &proggy.TinySZ8pt7b, 8, 16, "jcboard boot", fg)
	tinyfont.WriteLine(d, &proggy.TinySZ8pt7b, 8, 32, step, fg)
	_ = fb.Present()
}
