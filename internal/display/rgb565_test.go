package display

import (
	"image"
	"image/color"
	"testing"
)

func TestFrameRGB565(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	img.SetRGBA(0, 0, color.RGBA{R: 0xff, A: 0xff})
	img.SetRGBA(1, 0, color.RGBA{G: 0xff, A: 0xff})
	img.SetRGBA(2, 0, color.RGBA{B: 0xff, A: 0xff})
	img.SetRGBA(3, 0, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	// Last pixel of the last row, to catch stride mistakes.
	img.SetRGBA(Width-1, Height-1, color.RGBA{R: 0xff, A: 0xff})

	buf := make([]byte, frameSize)
	frameRGB565(img, buf)

	tests := []struct {
		name string
		off  int
		want uint16
	}{
		{"red", 0, 0xf800},
		{"green", 2, 0x07e0},
		{"blue", 4, 0x001f},
		{"white", 6, 0xffff},
		{"unset is black", 8, 0x0000},
		{"last pixel", frameSize - 2, 0xf800},
	}
	for _, tt := range tests {
		got := uint16(buf[tt.off])<<8 | uint16(buf[tt.off+1])
		if got != tt.want {
			t.Errorf("%s: %#04x, want %#04x", tt.name, got, tt.want)
		}
	}
}
