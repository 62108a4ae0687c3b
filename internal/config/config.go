// Package config loads and validates the desk-monitor YAML configuration.
// Load parses alert conditions into typed predicates and pre-sorts the alert
// list by priority, so runtime evaluation never re-parses or re-orders
// anything. The returned Config is immutable after load; there is no reload.
package config

import "fmt"

// Error describes an invalid configuration value. Configuration errors are
// fatal: the process reports them and exits before any task starts.
type Error struct {
	Path string // location in the YAML document, e.g. "alerts[2].condition"
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Path, e.Msg)
}

func errf(path, format string, args ...any) *Error {
	return &Error{Path: path, Msg: fmt.Sprintf(format, args...)}
}

// Config is the complete, validated device configuration.
type Config struct {
	MQTT          MQTT
	Sensor        Sensor
	Display       Display
	HA            HA
	Subscriptions []Subscription
	Screens       []ScreenDef
	Buttons       map[string]Button
	// Alerts is sorted by priority descending; ties keep declaration order.
	Alerts  []Alert
	LEDIdle Waveform
}

// Subscription returns the subscription with the given id.
func (c *Config) Subscription(id string) (Subscription, bool) {
	for _, s := range c.Subscriptions {
		if s.ID == id {
			return s, true
		}
	}
	return Subscription{}, false
}

// MQTT describes the broker connection.
type MQTT struct {
	Broker            string
	Port              int
	ClientID          string
	Username          string
	Password          string
	Keepalive         int    // seconds
	AvailabilityTopic string // "" disables the online/offline LWT topic
}

// BrokerURL returns the broker address in the form paho expects.
func (m MQTT) BrokerURL() string {
	return fmt.Sprintf("tcp://%s:%d", m.Broker, m.Port)
}

// Sensor describes the SCD30 and its polling behavior.
type Sensor struct {
	MeasurementInterval int     // seconds between readings, min 2
	TemperatureOffset   float64 // °C subtracted by the sensor itself
	Altitude            int     // meters, for pressure compensation
	PublishTopic        string  // "" disables the reading publish side-channel
}

// Display describes the LCD.
type Display struct {
	Brightness   float64 // initial backlight level in [0,1]
	FPS          int     // render loop rate
	BacklightPWM bool    // dim with software PWM instead of on/off
}

// HA describes the optional Home Assistant REST endpoint used to seed
// subscription values at startup.
type HA struct {
	URL   string
	Token string
}

// Enabled reports whether prefetch is configured.
func (h HA) Enabled() bool { return h.URL != "" && h.Token != "" }

// Subscription is one configured MQTT data source.
type Subscription struct {
	ID        string
	Topic     string
	Label     string // display label, defaults to ID
	Unit      string
	ValuePath string // dotted path into a JSON payload; "" takes the raw payload
	EntityID  string // Home Assistant entity for startup prefetch; "" disables
}

// ScreenType selects a screen variant. The set is closed: rendering
// dispatches on this tag.
type ScreenType string

const (
	ScreenSensor        ScreenType = "sensor"
	ScreenMQTT          ScreenType = "mqtt"
	ScreenBrightness    ScreenType = "brightness"
	ScreenLEDBrightness ScreenType = "led_brightness"
)

// ScreenDef describes one screen in navigation order.
type ScreenDef struct {
	Name  string
	Type  ScreenType
	Items []Item
}

// Item is one row on a sensor or mqtt screen. Sensor screens use
// Label/Source/Unit; mqtt screens use SubscriptionID (label and unit come
// from the subscription). Format is an fmt verb applied to the value,
// e.g. "%.1f"; empty renders the value as-is.
type Item struct {
	Label          string
	Source         string
	Unit           string
	SubscriptionID string
	Format         string
}

// Action is a global button action.
type Action string

const (
	ActionPrevScreen Action = "prev_screen"
	ActionNextScreen Action = "next_screen"
	ActionPublish    Action = "mqtt_publish"
)

// Button maps a physical button to an action. Topic/Payload apply to
// ActionPublish only.
type Button struct {
	Action  Action
	Topic   string
	Payload string
}

// Mode is an LED animation mode.
type Mode string

const (
	ModeSolid Mode = "solid"
	ModePulse Mode = "pulse"
	ModeBlink Mode = "blink"
)

// RGB is a color with components in [0,1].
type RGB struct {
	R, G, B float64
}

// Waveform describes how the LED behaves while a rule (or idle) is active.
type Waveform struct {
	Color       RGB
	Mode        Mode
	PulsePeriod float64 // seconds per pulse cycle
	BlinkHz     float64 // blink cycles per second
	BlinkDuty   float64 // fraction of each blink cycle spent on, in (0,1)
}

// Alert is one LED rule: when Cond matches the value named by Source, the
// waveform overrides the idle configuration. Higher priority wins.
type Alert struct {
	Source   Source
	Cond     Condition
	Waveform Waveform
	Priority int
}

// Defaults applied by Load when the YAML omits a value.
const (
	DefaultPort                = 1883
	DefaultClientID            = "desk-monitor"
	DefaultKeepalive           = 60
	DefaultMeasurementInterval = 5
	DefaultBrightness          = 1.0
	DefaultFPS                 = 5
	DefaultPulsePeriod         = 2.0
	DefaultBlinkHz             = 2.0
	DefaultBlinkDuty           = 0.5
)
