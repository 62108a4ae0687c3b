package screen

import (
	"image"
	"image/color"

	"github.com/sweeney/desk-monitor/internal/config"
	"github.com/sweeney/desk-monitor/internal/display"
	"github.com/sweeney/desk-monitor/internal/state"
)

// SensorScreen shows fields of the most recent SCD30 reading. Items
// come from the config; three rows fit comfortably at 320×240.
type SensorScreen struct {
	name  string
	items []config.Item
}

func (s *SensorScreen) Name() string { return s.name }

func (s *SensorScreen) HandleButton(string, *state.Store, display.Device) bool { return false }

func (s *SensorScreen) Render(snap state.Snapshot) *image.RGBA {
	c := newCanvas()
	c.header(s.name)
	if n := len(s.items); n > 0 {
		rowH := (itemsY1 - itemsY0) / n
		for i, item := range s.items {
			yTop := itemsY0 + i*rowH
			v, ok := sensorField(snap, item.Source)
			col := colValue
			if item.Source == config.FieldCO2 {
				col = co2Color(v.Num, ok)
			}
			drawRow(c, yTop, rowH, item.Label, formatValue(v, ok, item.Format), item.Unit, col)
			if i < n-1 {
				c.hline(yTop+rowH, colSep)
			}
		}
	}
	c.screenDots(snap.ScreenCount, snap.Screen)
	return c.img
}

// sensorField reads one reading field as a display value. Before the
// first poll completes every field is unset.
func sensorField(snap state.Snapshot, field string) (state.Value, bool) {
	if !snap.HasSensor {
		return state.Value{}, false
	}
	switch field {
	case config.FieldCO2:
		return state.Int(snap.Sensor.CO2), true
	case config.FieldTemperature:
		return state.Float(snap.Sensor.Temperature), true
	case config.FieldHumidity:
		return state.Float(snap.Sensor.Humidity), true
	}
	return state.Value{}, false
}

// co2Color maps a CO2 reading in ppm to its tier color: green below
// 800, yellow from 800, orange from 1200, red from 1500.
func co2Color(ppm float64, ok bool) color.RGBA {
	switch {
	case !ok:
		return colMissing
	case ppm >= 1500:
		return colCO2Danger
	case ppm >= 1200:
		return colCO2Poor
	case ppm >= 800:
		return colCO2Moderate
	default:
		return colCO2Good
	}
}
