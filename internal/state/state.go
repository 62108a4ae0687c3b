// Package state holds the values shared between the daemon's periodic
// tasks: the latest sensor reading, the latest value per MQTT
// subscription, screen navigation, and brightness. One mutex guards
// everything; critical sections only copy fields and never touch I/O.
//
// Each field group has a single writer (sensor: the poller,
// subscriptions: the gateway, navigation and brightness: the button
// dispatcher), so writers never race each other. Readers take a
// consistent copy and work on that.
package state

import (
	"math"
	"strconv"
	"sync"
	"time"
)

// SensorReading is one complete measurement. It is overwritten
// wholesale on every poll, never field by field.
type SensorReading struct {
	CO2         int     // ppm
	Temperature float64 // °C
	Humidity    float64 // %RH
	At          time.Time
}

// Value is a scalar decoded from an MQTT payload. Text always carries
// the raw form; Num is set when the payload parses as a number.
type Value struct {
	Num     float64
	Text    string
	Numeric bool
}

// Float returns a numeric Value.
func Float(f float64) Value {
	return Value{Num: f, Text: strconv.FormatFloat(f, 'f', -1, 64), Numeric: true}
}

// Int returns a numeric Value.
func Int(i int) Value {
	return Value{Num: float64(i), Text: strconv.Itoa(i), Numeric: true}
}

// Parse returns a numeric Value when s parses as a number, otherwise a
// text Value carrying s unchanged.
func Parse(s string) Value {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Value{Num: f, Text: s, Numeric: true}
	}
	return Value{Text: s}
}

// SubscriptionValue is the last value seen for one configured
// subscription. Absent from the store until the first message arrives.
type SubscriptionValue struct {
	Value
	At time.Time
}

// Snapshot is a consistent copy of the whole store, taken under a
// single lock acquisition.
type Snapshot struct {
	Sensor    SensorReading
	HasSensor bool

	Subscriptions map[string]SubscriptionValue

	Screen      int
	ScreenCount int

	DisplayBrightness float64
	LEDBrightness     float64
	HasLEDBrightness  bool

	Version uint64
}

// EffectiveLEDBrightness is the multiplier the LED animator applies:
// the override when set, full brightness otherwise.
func (s Snapshot) EffectiveLEDBrightness() float64 {
	if s.HasLEDBrightness {
		return s.LEDBrightness
	}
	return 1.0
}

// Store is the shared state. Construct with New; the zero value is not
// usable.
type Store struct {
	mu sync.Mutex

	sensor    SensorReading
	hasSensor bool

	subs map[string]SubscriptionValue

	screen      int
	screenCount int

	displayBrightness float64
	ledBrightness     float64
	hasLEDBrightness  bool

	version uint64
}

// New returns a store for a fixed list of screenCount screens, starting
// at screen 0 with the given display brightness. screenCount must be at
// least 1 (the config loader guarantees it).
func New(screenCount int, displayBrightness float64) *Store {
	return &Store{
		subs:              make(map[string]SubscriptionValue),
		screenCount:       screenCount,
		displayBrightness: clamp01(displayBrightness),
	}
}

// SetSensor stores a complete reading. Called only by the sensor
// poller.
func (s *Store) SetSensor(r SensorReading) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sensor = r
	s.hasSensor = true
	s.version++
}

// Sensor returns the latest reading; ok is false until the first poll
// succeeds.
func (s *Store) Sensor() (SensorReading, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sensor, s.hasSensor
}

// SetSubscription stores the latest value for a subscription id. Called
// only by the message gateway (and the Home Assistant prefetch, which
// runs before the gateway starts).
func (s *Store) SetSubscription(id string, v SubscriptionValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[id] = v
	s.version++
}

// Subscription returns the latest value for id; ok is false until a
// first value arrives.
func (s *Store) Subscription(id string) (SubscriptionValue, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.subs[id]
	return v, ok
}

// Subscriptions returns a copy of every stored subscription value.
func (s *Store) Subscriptions() map[string]SubscriptionValue {
	s.mu.Lock()
	defer s.mu.Unlock()
	subs := make(map[string]SubscriptionValue, len(s.subs))
	for id, v := range s.subs {
		subs[id] = v
	}
	return subs
}

// AdvanceScreen moves the screen index by delta, wrapping modulo the
// screen count, and returns the new index.
func (s *Store) AdvanceScreen(delta int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.screenCount
	s.screen = ((s.screen+delta)%n + n) % n
	s.version++
	return s.screen
}

// SetScreen jumps to index i. An out-of-range index (a stale persisted
// value after the screen list changed) resets to 0.
func (s *Store) SetScreen(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= s.screenCount {
		i = 0
	}
	s.screen = i
	s.version++
}

// Screen returns the current screen index.
func (s *Store) Screen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen
}

// ScreenCount returns the fixed number of screens.
func (s *Store) ScreenCount() int {
	return s.screenCount
}

// SetDisplayBrightness sets the display brightness, clamped to [0,1].
func (s *Store) SetDisplayBrightness(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.displayBrightness = clamp01(v)
	s.version++
}

// StepDisplayBrightness adjusts the display brightness by delta,
// clamped to [0,1], and returns the new value. The result is snapped to
// a whole percent so repeated ±10% steps land on exact levels.
func (s *Store) StepDisplayBrightness(delta float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.displayBrightness = snapPercent(clamp01(s.displayBrightness + delta))
	s.version++
	return s.displayBrightness
}

// DisplayBrightness returns the current display brightness.
func (s *Store) DisplayBrightness() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.displayBrightness
}

// SetLEDBrightness sets the LED brightness override, clamped to [0,1].
func (s *Store) SetLEDBrightness(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledBrightness = clamp01(v)
	s.hasLEDBrightness = true
	s.version++
}

// StepLEDBrightness adjusts the LED brightness override by delta and
// returns the new value. An unset override steps from its effective
// value of 1.0.
func (s *Store) StepLEDBrightness(delta float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := 1.0
	if s.hasLEDBrightness {
		cur = s.ledBrightness
	}
	s.ledBrightness = snapPercent(clamp01(cur + delta))
	s.hasLEDBrightness = true
	s.version++
	return s.ledBrightness
}

// ClearLEDBrightness removes the override; the LED returns to full
// brightness.
func (s *Store) ClearLEDBrightness() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledBrightness = 0
	s.hasLEDBrightness = false
	s.version++
}

// LEDBrightness returns the override; ok is false when unset.
func (s *Store) LEDBrightness() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledBrightness, s.hasLEDBrightness
}

// Version returns the mutation counter. It increments on every write,
// so an unchanged version means an unchanged store.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Snapshot copies the whole store out under one lock acquisition.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	subs := make(map[string]SubscriptionValue, len(s.subs))
	for id, v := range s.subs {
		subs[id] = v
	}
	return Snapshot{
		Sensor:            s.sensor,
		HasSensor:         s.hasSensor,
		Subscriptions:     subs,
		Screen:            s.screen,
		ScreenCount:       s.screenCount,
		DisplayBrightness: s.displayBrightness,
		LEDBrightness:     s.ledBrightness,
		HasLEDBrightness:  s.hasLEDBrightness,
		Version:           s.version,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// snapPercent rounds to a whole percent so float error from repeated
// steps never accumulates into the displayed level.
func snapPercent(v float64) float64 {
	return math.Round(v*100) / 100
}
