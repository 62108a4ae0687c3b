package screen

import (
	"image"
	"image/color"
	"image/draw"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/sweeney/desk-monitor/internal/display"
)

// Layout of the 320×240 panel: header bar on top, navigation dots at
// the bottom, item rows in between.
const (
	Width   = display.Width
	Height  = display.Height
	headerH = 30
	dotsH   = 14
	itemsY0 = headerH + 2
	itemsY1 = Height - dotsH - 2

	barX0 = 20
	barX1 = Width - 20
	barY0 = 148
	barY1 = 172
	barW  = barX1 - barX0
)

var (
	colBG         = color.RGBA{0x0a, 0x0a, 0x0a, 0xff}
	colHeader     = color.RGBA{0x14, 0x14, 0x28, 0xff}
	colHeaderText = color.RGBA{0xdd, 0xe6, 0xf0, 0xff}
	colLabel      = color.RGBA{0x77, 0x88, 0x99, 0xff}
	colValue      = color.RGBA{0xe8, 0xe8, 0xe8, 0xff}
	colSep        = color.RGBA{0x1e, 0x1e, 0x2e, 0xff}
	colDotActive  = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colDotIdle    = color.RGBA{0x3a, 0x3a, 0x3a, 0xff}
	colMissing    = color.RGBA{0x88, 0x88, 0x88, 0xff}
	colError      = color.RGBA{0xff, 0x44, 0x44, 0xff}
	colPercent    = color.RGBA{0xf0, 0xf0, 0xf0, 0xff}
	colBarBG      = color.RGBA{0x2a, 0x2a, 0x2a, 0xff}
	colBarFill    = color.RGBA{0xf0, 0xc0, 0x40, 0xff}
	colBarFillLED = color.RGBA{0x60, 0xb0, 0xff, 0xff}
	colHintKey    = color.RGBA{0x88, 0x88, 0x88, 0xff}
	colHintText   = color.RGBA{0x55, 0x55, 0x55, 0xff}

	colCO2Good     = color.RGBA{0x00, 0xe6, 0x76, 0xff}
	colCO2Moderate = color.RGBA{0xff, 0xee, 0x58, 0xff}
	colCO2Poor     = color.RGBA{0xff, 0x98, 0x00, 0xff}
	colCO2Danger   = color.RGBA{0xf4, 0x43, 0x36, 0xff}
)

// Text uses a 7×13 bitmap face upscaled by integer factors: scale 1 is
// 13px tall, scale 2 is 26px, and so on. Glyphs are monospaced, which
// makes width arithmetic exact.
const (
	glyphW      = 7
	glyphH      = 13
	glyphAscent = 11
)

// canvas wraps one RGBA frame with the drawing primitives screens use.
type canvas struct {
	img *image.RGBA
}

func newCanvas() *canvas {
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(colBG), image.Point{}, draw.Src)
	return &canvas{img: img}
}

// fillRect fills the half-open rectangle [x0,x1)×[y0,y1), clipped to
// the frame.
func (c *canvas) fillRect(x0, y0, x1, y1 int, col color.RGBA) {
	draw.Draw(c.img, image.Rect(x0, y0, x1, y1), image.NewUniform(col), image.Point{}, draw.Src)
}

// hline draws a one-pixel horizontal line across the full width.
func (c *canvas) hline(y int, col color.RGBA) {
	c.fillRect(0, y, Width, y+1, col)
}

// text draws s with its top-left corner at (x, y).
func (c *canvas) text(x, y int, s string, scale int, col color.RGBA) {
	if s == "" || scale < 1 {
		return
	}
	w := textWidth(s, 1)
	base := image.NewRGBA(image.Rect(0, 0, w, glyphH))
	d := font.Drawer{
		Dst:  base,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(0, glyphAscent),
	}
	d.DrawString(s)

	for by := 0; by < glyphH; by++ {
		for bx := 0; bx < w; bx++ {
			if base.RGBAAt(bx, by).A == 0 {
				continue
			}
			c.fillRect(x+bx*scale, y+by*scale, x+(bx+1)*scale, y+(by+1)*scale, col)
		}
	}
}

// textWidth returns the rendered width of s at the given scale.
func textWidth(s string, scale int) int {
	return glyphW * scale * utf8.RuneCountInString(s)
}

// header draws the title bar.
func (c *canvas) header(name string) {
	c.fillRect(0, 0, Width, headerH, colHeader)
	c.text(10, 8, name, 1, colHeaderText)
}

// screenDots draws the navigation indicator along the bottom edge.
// Hidden when there is only one screen.
func (c *canvas) screenDots(total, current int) {
	if total <= 1 {
		return
	}
	const r, spacing = 3, 14
	x0 := (Width - (total-1)*spacing) / 2
	y := Height - r - 4
	for i := 0; i < total; i++ {
		col := colDotIdle
		if i == current {
			col = colDotActive
		}
		c.dot(x0+i*spacing, y, r, col)
	}
}

// dot draws a filled circle of radius r centered at (cx, cy).
func (c *canvas) dot(cx, cy, r int, col color.RGBA) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				c.img.SetRGBA(cx+dx, cy+dy, col)
			}
		}
	}
}

// bar draws the horizontal level bar with tick marks at 10% intervals.
func (c *canvas) bar(level float64, fill color.RGBA) {
	c.fillRect(barX0, barY0, barX1, barY1, colBarBG)
	fw := int(float64(barW) * level)
	if fw > 0 {
		c.fillRect(barX0, barY0, barX0+fw, barY1, fill)
	}
	for i := 1; i < 10; i++ {
		tx := barX0 + barW*i/10
		c.fillRect(tx, barY0+2, tx+1, barY1-2, colBG)
	}
}
