package screen

import (
	"image"

	"github.com/sweeney/desk-monitor/internal/config"
	"github.com/sweeney/desk-monitor/internal/display"
	"github.com/sweeney/desk-monitor/internal/state"
)

// MQTTScreen shows the last value received for each configured
// subscription. Labels and units come from the subscription definition,
// not the screen item.
type MQTTScreen struct {
	name string
	rows []mqttRow
}

type mqttRow struct {
	sub    config.Subscription
	format string
}

func newMQTTScreen(def config.ScreenDef, cfg *config.Config) *MQTTScreen {
	s := &MQTTScreen{name: def.Name}
	for _, it := range def.Items {
		// Item references are validated at load time.
		sub, _ := cfg.Subscription(it.SubscriptionID)
		s.rows = append(s.rows, mqttRow{sub: sub, format: it.Format})
	}
	return s
}

func (s *MQTTScreen) Name() string { return s.name }

func (s *MQTTScreen) HandleButton(string, *state.Store, display.Device) bool { return false }

func (s *MQTTScreen) Render(snap state.Snapshot) *image.RGBA {
	c := newCanvas()
	c.header(s.name)
	n := len(s.rows)
	if n > 0 {
		rowH := (itemsY1 - itemsY0) / n
		for i, row := range s.rows {
			yTop := itemsY0 + i*rowH
			if sv, ok := snap.Subscriptions[row.sub.ID]; ok {
				drawRow(c, yTop, rowH, row.sub.Label, formatValue(sv.Value, true, row.format), row.sub.Unit, colValue)
			} else {
				// Unset is a state, not a fault: the row renders as a
				// red tile until the first message arrives.
				c.text(10, yTop+4, row.sub.Label, 1, colError)
				c.text(10, yTop+20, "no data", valueScale(rowH), colError)
			}
			if i < n-1 {
				c.hline(yTop+rowH, colSep)
			}
		}
	}
	c.screenDots(snap.ScreenCount, snap.Screen)
	return c.img
}
