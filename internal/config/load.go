package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Raw mirror of the YAML document. Pointer fields distinguish "absent"
// (take the default) from a legitimate zero value.
type rawConfig struct {
	MQTT          rawMQTT              `yaml:"mqtt"`
	Sensor        rawSensor            `yaml:"sensor"`
	Display       rawDisplay           `yaml:"display"`
	HA            rawHA                `yaml:"ha"`
	Subscriptions []rawSubscription    `yaml:"subscriptions"`
	Screens       []rawScreen          `yaml:"screens"`
	Buttons       map[string]rawButton `yaml:"buttons"`
	Alerts        []rawAlert           `yaml:"alerts"`
	LEDIdle       rawWaveform          `yaml:"led_idle"`
}

type rawMQTT struct {
	Broker            string `yaml:"broker"`
	Port              *int   `yaml:"port"`
	ClientID          string `yaml:"client_id"`
	Username          string `yaml:"username"`
	Password          string `yaml:"password"`
	Keepalive         *int   `yaml:"keepalive"`
	AvailabilityTopic string `yaml:"availability_topic"`
}

type rawSensor struct {
	MeasurementInterval *int    `yaml:"measurement_interval"`
	TemperatureOffset   float64 `yaml:"temperature_offset"`
	Altitude            int     `yaml:"altitude"`
	PublishTopic        string  `yaml:"publish_topic"`
}

type rawDisplay struct {
	Brightness   *float64 `yaml:"brightness"`
	FPS          *int     `yaml:"fps"`
	BacklightPWM bool     `yaml:"backlight_pwm"`
}

type rawHA struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

type rawSubscription struct {
	ID        string `yaml:"id"`
	Topic     string `yaml:"topic"`
	Label     string `yaml:"label"`
	Unit      string `yaml:"unit"`
	ValuePath string `yaml:"value_path"`
	EntityID  string `yaml:"entity_id"`
}

type rawScreen struct {
	Name  string    `yaml:"name"`
	Type  string    `yaml:"type"`
	Items []rawItem `yaml:"items"`
}

type rawItem struct {
	Label          string `yaml:"label"`
	Source         string `yaml:"source"`
	Unit           string `yaml:"unit"`
	SubscriptionID string `yaml:"subscription_id"`
	Format         string `yaml:"format"`
}

type rawButton struct {
	Action  string `yaml:"action"`
	Topic   string `yaml:"topic"`
	Payload string `yaml:"payload"`
}

type rawAlert struct {
	Source      string    `yaml:"source"`
	Condition   string    `yaml:"condition"`
	Color       []float64 `yaml:"color"`
	Mode        string    `yaml:"mode"`
	PulsePeriod *float64  `yaml:"pulse_period"`
	BlinkHz     *float64  `yaml:"blink_hz"`
	BlinkDuty   *float64  `yaml:"blink_duty"`
	Priority    int       `yaml:"priority"`
}

type rawWaveform struct {
	Color       []float64 `yaml:"color"`
	Mode        string    `yaml:"mode"`
	PulsePeriod *float64  `yaml:"pulse_period"`
	BlinkHz     *float64  `yaml:"blink_hz"`
	BlinkDuty   *float64  `yaml:"blink_duty"`
}

// Load reads, parses, and validates the configuration file at path.
// Any validation failure is returned as a *Error and is fatal to startup.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads and validates a YAML configuration document.
func Parse(r io.Reader) (*Config, error) {
	var raw rawConfig
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errf("", "empty configuration")
		}
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return build(&raw)
}

func build(raw *rawConfig) (*Config, error) {
	cfg := &Config{}

	if raw.MQTT.Broker == "" {
		return nil, errf("mqtt.broker", "required")
	}
	cfg.MQTT = MQTT{
		Broker:            raw.MQTT.Broker,
		Port:              intOr(raw.MQTT.Port, DefaultPort),
		ClientID:          stringOr(raw.MQTT.ClientID, DefaultClientID),
		Username:          raw.MQTT.Username,
		Password:          raw.MQTT.Password,
		Keepalive:         intOr(raw.MQTT.Keepalive, DefaultKeepalive),
		AvailabilityTopic: raw.MQTT.AvailabilityTopic,
	}
	if cfg.MQTT.Port <= 0 || cfg.MQTT.Port > 65535 {
		return nil, errf("mqtt.port", "out of range: %d", cfg.MQTT.Port)
	}

	cfg.Sensor = Sensor{
		MeasurementInterval: intOr(raw.Sensor.MeasurementInterval, DefaultMeasurementInterval),
		TemperatureOffset:   raw.Sensor.TemperatureOffset,
		Altitude:            raw.Sensor.Altitude,
		PublishTopic:        raw.Sensor.PublishTopic,
	}
	if cfg.Sensor.MeasurementInterval < 2 {
		return nil, errf("sensor.measurement_interval", "must be at least 2 seconds, got %d", cfg.Sensor.MeasurementInterval)
	}

	cfg.Display = Display{
		Brightness:   floatOr(raw.Display.Brightness, DefaultBrightness),
		FPS:          intOr(raw.Display.FPS, DefaultFPS),
		BacklightPWM: raw.Display.BacklightPWM,
	}
	if cfg.Display.Brightness < 0 || cfg.Display.Brightness > 1 {
		return nil, errf("display.brightness", "must be in [0,1], got %g", cfg.Display.Brightness)
	}
	if cfg.Display.FPS < 1 {
		return nil, errf("display.fps", "must be at least 1, got %d", cfg.Display.FPS)
	}

	cfg.HA = HA{URL: raw.HA.URL, Token: raw.HA.Token}
	if (raw.HA.URL == "") != (raw.HA.Token == "") {
		return nil, errf("ha", "url and token must be set together")
	}

	subIDs := make(map[string]bool, len(raw.Subscriptions))
	for i, s := range raw.Subscriptions {
		path := fmt.Sprintf("subscriptions[%d]", i)
		if s.ID == "" {
			return nil, errf(path+".id", "required")
		}
		if s.Topic == "" {
			return nil, errf(path+".topic", "required")
		}
		if subIDs[s.ID] {
			return nil, errf(path+".id", "duplicate id %q", s.ID)
		}
		subIDs[s.ID] = true
		cfg.Subscriptions = append(cfg.Subscriptions, Subscription{
			ID:        s.ID,
			Topic:     s.Topic,
			Label:     stringOr(s.Label, s.ID),
			Unit:      s.Unit,
			ValuePath: s.ValuePath,
			EntityID:  s.EntityID,
		})
	}

	if len(raw.Screens) == 0 {
		return nil, errf("screens", "at least one screen must be defined")
	}
	for i, sc := range raw.Screens {
		path := fmt.Sprintf("screens[%d]", i)
		if sc.Name == "" {
			return nil, errf(path+".name", "required")
		}
		def := ScreenDef{Name: sc.Name, Type: ScreenType(sc.Type)}
		switch def.Type {
		case ScreenSensor:
			for j, it := range sc.Items {
				ipath := fmt.Sprintf("%s.items[%d]", path, j)
				if it.Label == "" {
					return nil, errf(ipath+".label", "required")
				}
				switch it.Source {
				case FieldCO2, FieldTemperature, FieldHumidity:
				default:
					return nil, errf(ipath+".source", "unknown sensor field %q", it.Source)
				}
				if err := checkFormat(ipath+".format", it.Format); err != nil {
					return nil, err
				}
				def.Items = append(def.Items, Item{
					Label:  it.Label,
					Source: it.Source,
					Unit:   it.Unit,
					Format: it.Format,
				})
			}
		case ScreenMQTT:
			for j, it := range sc.Items {
				ipath := fmt.Sprintf("%s.items[%d]", path, j)
				if it.SubscriptionID == "" {
					return nil, errf(ipath+".subscription_id", "required")
				}
				if !subIDs[it.SubscriptionID] {
					return nil, errf(ipath+".subscription_id", "no subscription with id %q", it.SubscriptionID)
				}
				if err := checkFormat(ipath+".format", it.Format); err != nil {
					return nil, err
				}
				def.Items = append(def.Items, Item{
					SubscriptionID: it.SubscriptionID,
					Format:         it.Format,
				})
			}
		case ScreenBrightness, ScreenLEDBrightness:
			if len(sc.Items) > 0 {
				return nil, errf(path+".items", "%s screens take no items", def.Type)
			}
		default:
			return nil, errf(path+".type", "unknown screen type %q", sc.Type)
		}
		cfg.Screens = append(cfg.Screens, def)
	}

	cfg.Buttons = make(map[string]Button, len(raw.Buttons))
	for name, b := range raw.Buttons {
		path := "buttons." + name
		switch name {
		case "A", "B", "X", "Y":
		default:
			return nil, errf("buttons", "invalid button name %q: must be A, B, X, or Y", name)
		}
		action := Action(b.Action)
		switch action {
		case ActionPrevScreen, ActionNextScreen:
		case ActionPublish:
			if b.Topic == "" {
				return nil, errf(path+".topic", "required for %s", ActionPublish)
			}
		default:
			return nil, errf(path+".action", "unknown action %q", b.Action)
		}
		cfg.Buttons[name] = Button{Action: action, Topic: b.Topic, Payload: b.Payload}
	}

	for i, a := range raw.Alerts {
		path := fmt.Sprintf("alerts[%d]", i)
		src, err := parseSource(path+".source", a.Source)
		if err != nil {
			return nil, err
		}
		if src.Kind == SourceMQTT && !subIDs[src.Field] {
			return nil, errf(path+".source", "no subscription with id %q", src.Field)
		}
		cond, err := parseCondition(path+".condition", a.Condition)
		if err != nil {
			return nil, err
		}
		wf, err := buildWaveform(path, rawWaveform{
			Color:       a.Color,
			Mode:        a.Mode,
			PulsePeriod: a.PulsePeriod,
			BlinkHz:     a.BlinkHz,
			BlinkDuty:   a.BlinkDuty,
		}, true)
		if err != nil {
			return nil, err
		}
		cfg.Alerts = append(cfg.Alerts, Alert{
			Source:   src,
			Cond:     cond,
			Waveform: wf,
			Priority: a.Priority,
		})
	}
	// Highest priority first; ties keep declaration order.
	sort.SliceStable(cfg.Alerts, func(i, j int) bool {
		return cfg.Alerts[i].Priority > cfg.Alerts[j].Priority
	})

	idle, err := buildWaveform("led_idle", raw.LEDIdle, false)
	if err != nil {
		return nil, err
	}
	cfg.LEDIdle = idle

	return cfg, nil
}

func buildWaveform(path string, raw rawWaveform, colorRequired bool) (Waveform, error) {
	wf := Waveform{
		Mode:        Mode(stringOr(raw.Mode, string(ModeSolid))),
		PulsePeriod: floatOr(raw.PulsePeriod, DefaultPulsePeriod),
		BlinkHz:     floatOr(raw.BlinkHz, DefaultBlinkHz),
		BlinkDuty:   floatOr(raw.BlinkDuty, DefaultBlinkDuty),
	}
	switch wf.Mode {
	case ModeSolid, ModePulse, ModeBlink:
	default:
		return Waveform{}, errf(path+".mode", "unknown mode %q", raw.Mode)
	}

	if raw.Color == nil {
		if colorRequired {
			return Waveform{}, errf(path+".color", "required")
		}
		// Idle defaults to off.
	} else {
		if len(raw.Color) != 3 {
			return Waveform{}, errf(path+".color", "must be [R, G, B], got %d components", len(raw.Color))
		}
		for _, v := range raw.Color {
			if v < 0 || v > 1 {
				return Waveform{}, errf(path+".color", "components must be in [0,1], got %g", v)
			}
		}
		wf.Color = RGB{R: raw.Color[0], G: raw.Color[1], B: raw.Color[2]}
	}

	if wf.PulsePeriod <= 0 {
		return Waveform{}, errf(path+".pulse_period", "must be positive, got %g", wf.PulsePeriod)
	}
	if wf.BlinkHz <= 0 {
		return Waveform{}, errf(path+".blink_hz", "must be positive, got %g", wf.BlinkHz)
	}
	if wf.BlinkDuty <= 0 || wf.BlinkDuty >= 1 {
		return Waveform{}, errf(path+".blink_duty", "must be in (0,1), got %g", wf.BlinkDuty)
	}
	return wf, nil
}

// checkFormat rejects printf formats that cannot render a number, so a
// typo fails at load instead of garbling the display.
func checkFormat(path, f string) error {
	if f == "" {
		return nil
	}
	if s := fmt.Sprintf(f, 1.0); strings.Contains(s, "%!") {
		return errf(path, "invalid value format %q", f)
	}
	return nil
}

func intOr(p *int, def int) int {
	if p != nil {
		return *p
	}
	return def
}

func floatOr(p *float64, def float64) float64 {
	if p != nil {
		return *p
	}
	return def
}

func stringOr(s, def string) string {
	if s != "" {
		return s
	}
	return def
}
