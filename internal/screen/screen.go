// Package screen renders the UI pages and owns their button behavior.
// Screens draw into plain RGBA frames; the render task decides when to
// push a frame to the panel.
package screen

import (
	"fmt"
	"image"
	"image/color"

	"github.com/sweeney/desk-monitor/internal/config"
	"github.com/sweeney/desk-monitor/internal/display"
	"github.com/sweeney/desk-monitor/internal/state"
)

// Screen is one page of the UI. Render draws a complete frame for the
// given snapshot. HandleButton gives the visible screen first refusal
// on a button press; returning true consumes the event before the
// global button config is consulted.
type Screen interface {
	Name() string
	Render(snap state.Snapshot) *image.RGBA
	HandleButton(name string, st *state.Store, dev display.Device) bool
}

// Build instantiates the configured screens in navigation order.
func Build(cfg *config.Config) []Screen {
	screens := make([]Screen, 0, len(cfg.Screens))
	for _, def := range cfg.Screens {
		switch def.Type {
		case config.ScreenSensor:
			screens = append(screens, &SensorScreen{name: def.Name, items: def.Items})
		case config.ScreenMQTT:
			screens = append(screens, newMQTTScreen(def, cfg))
		case config.ScreenBrightness:
			screens = append(screens, &BrightnessScreen{name: def.Name})
		case config.ScreenLEDBrightness:
			screens = append(screens, &LEDBrightnessScreen{name: def.Name})
		}
	}
	return screens
}

// valueScale picks the text scale that comfortably fills a row of the
// given height.
func valueScale(rowH int) int {
	switch {
	case rowH >= 150:
		return 6
	case rowH >= 100:
		return 4
	case rowH >= 70:
		return 3
	default:
		return 2
	}
}

// formatValue renders a value for display. A missing value shows as
// "---". The format verb applies to numeric values only, so a string
// payload arriving in a numeric slot degrades to its raw text instead
// of printf garbage.
func formatValue(v state.Value, ok bool, format string) string {
	if !ok {
		return "---"
	}
	if v.Numeric && format != "" {
		return fmt.Sprintf(format, v.Num)
	}
	return v.Text
}

// drawRow renders one label/value/unit row starting at yTop. The unit
// sits to the right of the value, aligned to its baseline.
func drawRow(c *canvas, yTop, rowH int, label, value, unit string, valCol color.RGBA) {
	vs := valueScale(rowH)
	us := vs / 2
	if us < 1 {
		us = 1
	}
	c.text(10, yTop+4, label, 1, colLabel)
	c.text(10, yTop+20, value, vs, valCol)
	if unit != "" {
		vw := textWidth(value, vs)
		uy := yTop + 20 + glyphH*vs - glyphH*us - 2
		c.text(14+vw, uy, unit, us, colLabel)
	}
}
