package config

import (
	"strings"
	"testing"
)

const validYAML = `
mqtt:
  broker: 192.168.1.200
  username: desk
  password: secret
sensor:
  measurement_interval: 5
  temperature_offset: 2.5
  publish_topic: home/desk/climate
display:
  brightness: 0.8
  fps: 4
subscriptions:
  - id: office_temp
    topic: home/office/temperature
    label: Office
    unit: "°C"
  - id: power
    topic: home/energy/power
    unit: W
    value_path: payload.value
screens:
  - name: Air
    type: sensor
    items:
      - label: CO2
        source: co2
        unit: ppm
        format: "%.0f"
      - label: Temp
        source: temperature
        unit: "°C"
        format: "%.1f"
  - name: Home
    type: mqtt
    items:
      - subscription_id: office_temp
      - subscription_id: power
        format: "%.0f"
  - name: Backlight
    type: brightness
  - name: LED
    type: led_brightness
buttons:
  A: {action: prev_screen}
  B: {action: next_screen}
  X: {action: mqtt_publish, topic: cmnd/desk/lamp, payload: TOGGLE}
alerts:
  - source: sensor.co2
    condition: "> 1500"
    color: [1.0, 0.0, 0.0]
    mode: blink
    blink_hz: 2.0
    priority: 10
  - source: mqtt.power
    condition: "> 2000"
    color: [1.0, 0.5, 0.0]
    mode: pulse
    pulse_period: 1.5
    priority: 5
led_idle:
  color: [0.0, 0.1, 0.0]
`

func mustParse(t *testing.T, yaml string) *Config {
	t.Helper()
	cfg, err := Parse(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	return cfg
}

func TestParseValidConfig(t *testing.T) {
	cfg := mustParse(t, validYAML)

	if cfg.MQTT.Broker != "192.168.1.200" {
		t.Errorf("broker = %q", cfg.MQTT.Broker)
	}
	if cfg.MQTT.Port != DefaultPort {
		t.Errorf("port = %d, want default %d", cfg.MQTT.Port, DefaultPort)
	}
	if got := cfg.MQTT.BrokerURL(); got != "tcp://192.168.1.200:1883" {
		t.Errorf("BrokerURL = %q", got)
	}
	if cfg.MQTT.ClientID != DefaultClientID {
		t.Errorf("client_id = %q, want default", cfg.MQTT.ClientID)
	}
	if cfg.Sensor.PublishTopic != "home/desk/climate" {
		t.Errorf("publish_topic = %q", cfg.Sensor.PublishTopic)
	}
	if cfg.Display.Brightness != 0.8 {
		t.Errorf("brightness = %g", cfg.Display.Brightness)
	}
	if len(cfg.Subscriptions) != 2 {
		t.Fatalf("subscriptions = %d, want 2", len(cfg.Subscriptions))
	}
	if cfg.Subscriptions[1].Label != "power" {
		t.Errorf("missing label should default to id, got %q", cfg.Subscriptions[1].Label)
	}
	if cfg.Subscriptions[1].ValuePath != "payload.value" {
		t.Errorf("value_path = %q", cfg.Subscriptions[1].ValuePath)
	}
	if len(cfg.Screens) != 4 {
		t.Fatalf("screens = %d, want 4", len(cfg.Screens))
	}
	if cfg.Screens[2].Type != ScreenBrightness || cfg.Screens[3].Type != ScreenLEDBrightness {
		t.Errorf("unexpected screen types: %v %v", cfg.Screens[2].Type, cfg.Screens[3].Type)
	}
	if len(cfg.Buttons) != 3 {
		t.Errorf("buttons = %d, want 3", len(cfg.Buttons))
	}
	if b := cfg.Buttons["X"]; b.Action != ActionPublish || b.Topic != "cmnd/desk/lamp" {
		t.Errorf("button X = %+v", b)
	}
}

func TestParseAlertOrdering(t *testing.T) {
	cfg := mustParse(t, validYAML)
	if len(cfg.Alerts) != 2 {
		t.Fatalf("alerts = %d, want 2", len(cfg.Alerts))
	}
	if cfg.Alerts[0].Priority != 10 || cfg.Alerts[1].Priority != 5 {
		t.Errorf("alerts not sorted by priority: %d, %d", cfg.Alerts[0].Priority, cfg.Alerts[1].Priority)
	}
	a := cfg.Alerts[0]
	if a.Source.Kind != SourceSensor || a.Source.Field != "co2" {
		t.Errorf("alert 0 source = %v", a.Source)
	}
	if a.Cond.Op != OpGT || !a.Cond.Numeric || a.Cond.Num != 1500 {
		t.Errorf("alert 0 cond = %+v", a.Cond)
	}
	if a.Waveform.Mode != ModeBlink || a.Waveform.BlinkHz != 2.0 {
		t.Errorf("alert 0 waveform = %+v", a.Waveform)
	}
	if a.Waveform.BlinkDuty != DefaultBlinkDuty {
		t.Errorf("alert 0 blink_duty = %g, want default", a.Waveform.BlinkDuty)
	}
	if cfg.Alerts[1].Waveform.PulsePeriod != 1.5 {
		t.Errorf("alert 1 pulse_period = %g", cfg.Alerts[1].Waveform.PulsePeriod)
	}
}

func TestParseAlertPriorityTiesKeepDeclarationOrder(t *testing.T) {
	cfg := mustParse(t, `
mqtt: {broker: localhost}
screens:
  - name: S
    type: sensor
alerts:
  - {source: sensor.co2, condition: "> 1", color: [1, 0, 0], priority: 5}
  - {source: sensor.humidity, condition: "> 2", color: [0, 1, 0], priority: 7}
  - {source: sensor.temperature, condition: "> 3", color: [0, 0, 1], priority: 5}
`)
	fields := make([]string, len(cfg.Alerts))
	for i, a := range cfg.Alerts {
		fields[i] = a.Source.Field
	}
	want := [3]string{"humidity", "co2", "temperature"}
	for i := range want {
		if fields[i] != want[i] {
			t.Fatalf("alert order = %v, want %v", fields, want)
		}
	}
}

func TestParseIdleDefaults(t *testing.T) {
	cfg := mustParse(t, `
mqtt: {broker: localhost}
screens:
  - name: S
    type: sensor
`)
	if cfg.LEDIdle.Mode != ModeSolid {
		t.Errorf("idle mode = %q, want solid", cfg.LEDIdle.Mode)
	}
	if cfg.LEDIdle.Color != (RGB{}) {
		t.Errorf("idle color = %+v, want off", cfg.LEDIdle.Color)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing broker", `
screens: [{name: S, type: sensor}]
`},
		{"no screens", `
mqtt: {broker: localhost}
`},
		{"unknown screen type", `
mqtt: {broker: localhost}
screens: [{name: S, type: video}]
`},
		{"unknown sensor field", `
mqtt: {broker: localhost}
screens:
  - name: S
    type: sensor
    items: [{label: P, source: pressure}]
`},
		{"mqtt item without subscription", `
mqtt: {broker: localhost}
screens:
  - name: S
    type: mqtt
    items: [{subscription_id: nope}]
`},
		{"items on brightness screen", `
mqtt: {broker: localhost}
screens:
  - name: S
    type: brightness
    items: [{label: x, source: co2}]
`},
		{"bad item format", `
mqtt: {broker: localhost}
screens:
  - name: S
    type: sensor
    items: [{label: C, source: co2, format: "%d"}]
`},
		{"duplicate subscription id", `
mqtt: {broker: localhost}
subscriptions:
  - {id: a, topic: t1}
  - {id: a, topic: t2}
screens: [{name: S, type: sensor}]
`},
		{"invalid button name", `
mqtt: {broker: localhost}
screens: [{name: S, type: sensor}]
buttons:
  Z: {action: next_screen}
`},
		{"publish button without topic", `
mqtt: {broker: localhost}
screens: [{name: S, type: sensor}]
buttons:
  A: {action: mqtt_publish}
`},
		{"alert with unknown subscription", `
mqtt: {broker: localhost}
screens: [{name: S, type: sensor}]
alerts:
  - {source: mqtt.nope, condition: "> 1", color: [1, 0, 0]}
`},
		{"alert ordered op on string literal", `
mqtt: {broker: localhost}
screens: [{name: S, type: sensor}]
alerts:
  - {source: sensor.co2, condition: "> 'high'", color: [1, 0, 0]}
`},
		{"alert without color", `
mqtt: {broker: localhost}
screens: [{name: S, type: sensor}]
alerts:
  - {source: sensor.co2, condition: "> 1"}
`},
		{"color out of range", `
mqtt: {broker: localhost}
screens: [{name: S, type: sensor}]
alerts:
  - {source: sensor.co2, condition: "> 1", color: [2, 0, 0]}
`},
		{"bad blink duty", `
mqtt: {broker: localhost}
screens: [{name: S, type: sensor}]
alerts:
  - {source: sensor.co2, condition: "> 1", color: [1, 0, 0], mode: blink, blink_duty: 1.5}
`},
		{"brightness out of range", `
mqtt: {broker: localhost}
display: {brightness: 1.5}
screens: [{name: S, type: sensor}]
`},
		{"interval too short", `
mqtt: {broker: localhost}
sensor: {measurement_interval: 1}
screens: [{name: S, type: sensor}]
`},
		{"ha url without token", `
mqtt: {broker: localhost}
ha: {url: "http://ha.local:8123"}
screens: [{name: S, type: sensor}]
`},
		{"unknown top-level key", `
mqtt: {broker: localhost}
screens: [{name: S, type: sensor}]
frobnicate: true
`},
	}
	for _, tt := range tests {
		if _, err := Parse(strings.NewReader(tt.yaml)); err == nil {
			t.Errorf("%s: expected error, got none", tt.name)
		}
	}
}
