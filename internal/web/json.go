package web

import (
	"encoding/json"
	"time"
)

// StatusJSON is the JSON representation of the daemon status.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	UptimeSeconds int64                `json:"uptime_seconds"`
	StartTime     string               `json:"start_time"`
	Timestamp     string               `json:"timestamp"`
	Screen        ScreenJSON           `json:"screen"`
	Brightness    BrightnessJSON       `json:"brightness"`
	Sensor        *SensorJSON          `json:"sensor,omitempty"`
	Values        map[string]ValueJSON `json:"values"`
	Alert         *AlertJSON           `json:"alert,omitempty"`
	MQTT          MQTTStatus           `json:"mqtt"`
}

// ScreenJSON reports the current screen position.
type ScreenJSON struct {
	Index int    `json:"index"`
	Count int    `json:"count"`
	Name  string `json:"name"`
}

// BrightnessJSON reports the backlight and LED levels.
type BrightnessJSON struct {
	Display     float64 `json:"display"`
	LED         float64 `json:"led"`
	LEDOverride bool    `json:"led_override"`
}

// SensorJSON is the latest reading. Omitted until the first poll
// succeeds.
type SensorJSON struct {
	CO2         int     `json:"co2"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	AgeSeconds  int64   `json:"age_seconds"`
}

// ValueJSON is one subscription's latest value. Value carries a number
// for numeric payloads, a string otherwise, and null until the first
// message arrives.
type ValueJSON struct {
	Label      string `json:"label"`
	Value      any    `json:"value"`
	Unit       string `json:"unit,omitempty"`
	AgeSeconds int64  `json:"age_seconds,omitempty"`
}

// AlertJSON describes the active LED rule. Omitted when no rule
// matches.
type AlertJSON struct {
	Source    string `json:"source"`
	Condition string `json:"condition"`
	Priority  int    `json:"priority"`
	Mode      string `json:"mode"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

func formatJSON(v view) []byte {
	sj := StatusJSON{
		Status: StatusInner{
			UptimeSeconds: int64(v.Uptime.Truncate(time.Second).Seconds()),
			StartTime:     v.Started.UTC().Format(time.RFC3339),
			Timestamp:     v.Now.UTC().Format(time.RFC3339),
			Screen: ScreenJSON{
				Index: v.Screen,
				Count: v.ScreenCount,
				Name:  v.ScreenName,
			},
			Brightness: BrightnessJSON{
				Display:     v.DisplayBrightness,
				LED:         v.LEDBrightness,
				LEDOverride: v.LEDOverride,
			},
			Values: make(map[string]ValueJSON, len(v.Subs)),
			MQTT:   MQTTStatus{Connected: v.MQTTConnected, Broker: v.Broker},
		},
	}

	if v.HasSensor {
		sj.Status.Sensor = &SensorJSON{
			CO2:         v.Sensor.CO2,
			Temperature: v.Sensor.Temperature,
			Humidity:    v.Sensor.Humidity,
			AgeSeconds:  ageSeconds(v.Now, v.Sensor.At),
		}
	}

	for _, row := range v.Subs {
		vj := ValueJSON{Label: row.Label, Unit: row.Unit}
		if row.Set {
			if row.Value.Numeric {
				vj.Value = row.Value.Num
			} else {
				vj.Value = row.Value.Text
			}
			vj.AgeSeconds = ageSeconds(v.Now, row.At)
		}
		sj.Status.Values[row.ID] = vj
	}

	if v.Alert != nil {
		sj.Status.Alert = &AlertJSON{
			Source:    v.Alert.Source.String(),
			Condition: v.Alert.Cond.String(),
			Priority:  v.Alert.Priority,
			Mode:      string(v.Alert.Waveform.Mode),
		}
	}

	data, _ := json.MarshalIndent(sj, "", "  ")
	return data
}

func ageSeconds(now, t time.Time) int64 {
	d := now.Sub(t)
	if d < 0 {
		d = 0
	}
	return int64(d.Truncate(time.Second).Seconds())
}
