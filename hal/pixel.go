package hal

// RGB565 packs 8-bit channels into a panel pixel.
func RGB565(r, g, b uint8) uint16 {
	return uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
}

// RGB888 expands a panel pixel, replicating the high bits into the low ones
// so that full scale maps back to 0xFF.
func RGB888(p uint16) (r, g, b uint8) {
	r5 := uint8(p>>11) & 0x1F
	g6 := uint8(p>>5) & 0x3F
	b5 := uint8(p) & 0x1F
	return r5<<3 | r5>>2, g6<<2 | g6>>4, b5<<3 | b5>>2
}

// PutPixel writes px at x, y of an RGB565 framebuffer. Points outside the
// panel are dropped.
func PutPixel(fb Framebuffer, x, y int, px uint16) {
	if x < 0 || y < 0 || x >= fb.Width() || y >= fb.Height() {
		return
	}
	buf := fb.Buffer()
	off := y*fb.StrideBytes() + x*2
	if off+1 >= len(buf) {
		return
	}
	buf[off] = byte(px)
	buf[off+1] = byte(px >> 8)
}

func fill565(buf []byte, px uint16) {
	lo, hi := byte(px), byte(px>>8)
	for i := 0; i+1 < len(buf); i += 2 {
		buf[i] = lo
		buf[i+1] = hi
	}
}
