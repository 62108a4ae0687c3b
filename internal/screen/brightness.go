package screen

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"math"

	"github.com/sweeney/desk-monitor/internal/display"
	"github.com/sweeney/desk-monitor/internal/state"
)

// BrightnessScreen adjusts the backlight. X dims and Y brightens in 10%
// steps; both are consumed here and never reach the global button
// config. The new level is applied to the panel immediately rather than
// waiting for the next render tick.
type BrightnessScreen struct {
	name string
}

func (s *BrightnessScreen) Name() string { return s.name }

func (s *BrightnessScreen) HandleButton(name string, st *state.Store, dev display.Device) bool {
	var delta float64
	switch name {
	case "X":
		delta = -0.1
	case "Y":
		delta = 0.1
	default:
		return false
	}
	v := st.StepDisplayBrightness(delta)
	if err := dev.SetBacklight(v); err != nil {
		log.Printf("screen: set backlight: %v", err)
	}
	return true
}

func (s *BrightnessScreen) Render(snap state.Snapshot) *image.RGBA {
	c := newCanvas()
	c.header(s.name)
	renderLevel(c, snap.DisplayBrightness, colBarFill)
	c.screenDots(snap.ScreenCount, snap.Screen)
	return c.img
}

// LEDBrightnessScreen adjusts the LED brightness override in 10% steps.
// The first step from the unset override starts from its effective
// value of 1.
type LEDBrightnessScreen struct {
	name string
}

func (s *LEDBrightnessScreen) Name() string { return s.name }

func (s *LEDBrightnessScreen) HandleButton(name string, st *state.Store, _ display.Device) bool {
	switch name {
	case "X":
		st.StepLEDBrightness(-0.1)
	case "Y":
		st.StepLEDBrightness(0.1)
	default:
		return false
	}
	return true
}

func (s *LEDBrightnessScreen) Render(snap state.Snapshot) *image.RGBA {
	c := newCanvas()
	c.header(s.name)
	renderLevel(c, snap.EffectiveLEDBrightness(), colBarFillLED)
	c.screenDots(snap.ScreenCount, snap.Screen)
	return c.img
}

// renderLevel draws the page body both brightness screens share: a
// large centered percentage, the level bar, and the X/Y button hints.
func renderLevel(c *canvas, level float64, fill color.RGBA) {
	pct := fmt.Sprintf("%d%%", int(math.Round(level*100)))
	c.text((Width-textWidth(pct, 6))/2, 38, pct, 6, colPercent)
	c.bar(level, fill)

	c.text(10, 192, "X", 1, colHintKey)
	c.text(30, 193, "dim", 1, colHintText)

	kw := textWidth("Y", 1)
	pw := textWidth("brighten", 1)
	c.text(Width-10-pw-6-kw, 193, "brighten", 1, colHintText)
	c.text(Width-10-kw, 192, "Y", 1, colHintKey)
}
