package display

import "image"

// frameSize is the byte length of one full RGB565 frame.
const frameSize = Width * Height * 2

// frameRGB565 packs a full RGBA frame into big-endian RGB565, the
// ST7789's native pixel order. dst must be frameSize bytes.
func frameRGB565(img *image.RGBA, dst []byte) {
	i := 0
	for y := 0; y < Height; y++ {
		off := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
		row := img.Pix[off : off+Width*4]
		for x := 0; x < Width; x++ {
			r := row[x*4]
			g := row[x*4+1]
			b := row[x*4+2]
			px := uint16(r&0xf8)<<8 | uint16(g&0xfc)<<3 | uint16(b)>>3
			dst[i] = byte(px >> 8)
			dst[i+1] = byte(px)
			i += 2
		}
	}
}
