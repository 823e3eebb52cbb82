// Package rgb565 packs and unpacks 16-bit RGB565 pixels.
package rgb565

// Pack truncates an 8-bit-per-channel color to RGB565.
func Pack(r, g, b uint8) uint16 {
	return uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
}

// Unpack expands p back to 8 bits per channel; full-scale channels stay 255.
func Unpack(p uint16) (r, g, b uint8) {
	rr := (p >> 11) & 0x1F
	gg := (p >> 5) & 0x3F
	bb := p & 0x1F
	return uint8(rr * 255 / 31), uint8(gg * 255 / 63), uint8(bb * 255 / 31)
}
