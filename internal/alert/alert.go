// Package alert matches the configured alert rules against live
// values. Evaluation is pure: no I/O, no stored state, same snapshot in
// same rule out.
package alert

import (
	"github.com/sweeney/desk-monitor/internal/config"
	"github.com/sweeney/desk-monitor/internal/state"
)

// Evaluate returns the first rule whose condition matches the snapshot,
// or nil when none does and the LED should fall back to the idle
// waveform. Rules must already be sorted by priority descending, ties
// in declaration order; config.Load guarantees that.
func Evaluate(snap state.Snapshot, rules []config.Alert) *config.Alert {
	for i := range rules {
		if v, ok := resolve(rules[i].Source, snap); ok && matches(rules[i].Cond, v) {
			return &rules[i]
		}
	}
	return nil
}

// resolve looks up a rule's source in the snapshot. Data that has not
// arrived yet (no reading, no message on the topic) resolves not-ok,
// and the rule cannot match.
func resolve(src config.Source, snap state.Snapshot) (state.Value, bool) {
	switch src.Kind {
	case config.SourceSensor:
		if !snap.HasSensor {
			return state.Value{}, false
		}
		switch src.Field {
		case config.FieldCO2:
			return state.Int(snap.Sensor.CO2), true
		case config.FieldTemperature:
			return state.Float(snap.Sensor.Temperature), true
		case config.FieldHumidity:
			return state.Float(snap.Sensor.Humidity), true
		}
	case config.SourceMQTT:
		if sv, ok := snap.Subscriptions[src.Field]; ok {
			return sv.Value, true
		}
	}
	return state.Value{}, false
}

// matches applies a parsed condition to a value. Numeric literal
// against a numeric value compares as numbers; equality operators fall
// back to comparing the raw text otherwise. An ordering operator
// against a non-numeric value never matches — the loader already
// guarantees its literal is numeric.
func matches(c config.Condition, v state.Value) bool {
	if c.Numeric && v.Numeric {
		switch c.Op {
		case config.OpGT:
			return v.Num > c.Num
		case config.OpLT:
			return v.Num < c.Num
		case config.OpGE:
			return v.Num >= c.Num
		case config.OpLE:
			return v.Num <= c.Num
		case config.OpEQ:
			return v.Num == c.Num
		case config.OpNE:
			return v.Num != c.Num
		}
		return false
	}
	switch c.Op {
	case config.OpEQ:
		return v.Text == c.Text
	case config.OpNE:
		return v.Text != c.Text
	}
	return false
}
