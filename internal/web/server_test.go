package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/desk-monitor/internal/config"
	"github.com/sweeney/desk-monitor/internal/state"
)

var (
	startTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	nowTime   = time.Date(2026, 1, 1, 0, 2, 30, 0, time.UTC)
)

func statusConfig() *config.Config {
	return &config.Config{
		MQTT: config.MQTT{Broker: "192.168.1.200", Port: 1883, ClientID: "desk-monitor"},
		Subscriptions: []config.Subscription{
			{ID: "office_temp", Topic: "home/office/temp", Label: "Office", Unit: "C"},
		},
		Screens: []config.ScreenDef{
			{Name: "Climate", Type: config.ScreenSensor, Items: []config.Item{
				{Label: "CO2", Source: "co2", Unit: "ppm"},
			}},
			{Name: "Backlight", Type: config.ScreenBrightness},
		},
		Alerts: []config.Alert{
			{
				Source:   config.Source{Kind: config.SourceSensor, Field: config.FieldCO2},
				Cond:     config.Condition{Op: config.OpGT, Num: 1400, Text: "1400", Numeric: true},
				Waveform: config.Waveform{Color: config.RGB{R: 1}, Mode: config.ModePulse, PulsePeriod: 2},
				Priority: 10,
			},
		},
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *state.Store, *bool) {
	t.Helper()
	connected := false
	store := state.New(2, 0.5)
	srv := New(":0", store, statusConfig(), func() bool { return connected })
	srv.start = startTime
	srv.now = func() time.Time { return nowTime }
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, store, &connected
}

func getStatus(t *testing.T, ts *httptest.Server) StatusJSON {
	t.Helper()
	resp, err := http.Get(ts.URL + "/status.json")
	if err != nil {
		t.Fatalf("GET /status.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	return sj
}

func TestJSONEndpoint(t *testing.T) {
	ts, store, connected := newTestServer(t)
	store.SetSensor(state.SensorReading{
		CO2: 640, Temperature: 21.46, Humidity: 41.2,
		At: nowTime.Add(-10 * time.Second),
	})
	store.SetSubscription("office_temp", state.SubscriptionValue{
		Value: state.Float(21.5),
		At:    nowTime.Add(-30 * time.Second),
	})
	*connected = true

	sj := getStatus(t, ts)

	if sj.Status.Sensor == nil {
		t.Fatal("expected sensor in JSON")
	}
	if sj.Status.Sensor.CO2 != 640 {
		t.Errorf("sensor CO2: got %d, want 640", sj.Status.Sensor.CO2)
	}
	if sj.Status.Sensor.AgeSeconds != 10 {
		t.Errorf("sensor age: got %d, want 10", sj.Status.Sensor.AgeSeconds)
	}

	vj, ok := sj.Status.Values["office_temp"]
	if !ok {
		t.Fatal("expected office_temp in values")
	}
	if vj.Label != "Office" {
		t.Errorf("value label: got %q, want Office", vj.Label)
	}
	if vj.Value != 21.5 {
		t.Errorf("value: got %v, want 21.5", vj.Value)
	}
	if vj.AgeSeconds != 30 {
		t.Errorf("value age: got %d, want 30", vj.AgeSeconds)
	}

	if sj.Status.Screen.Index != 0 || sj.Status.Screen.Name != "Climate" {
		t.Errorf("screen: got %d %q, want 0 Climate", sj.Status.Screen.Index, sj.Status.Screen.Name)
	}
	if sj.Status.Screen.Count != 2 {
		t.Errorf("screen count: got %d, want 2", sj.Status.Screen.Count)
	}
	if sj.Status.Brightness.Display != 0.5 {
		t.Errorf("display brightness: got %v, want 0.5", sj.Status.Brightness.Display)
	}
	if sj.Status.Brightness.LED != 1.0 || sj.Status.Brightness.LEDOverride {
		t.Errorf("led brightness: got %v override=%v, want 1.0 without override",
			sj.Status.Brightness.LED, sj.Status.Brightness.LEDOverride)
	}
	if sj.Status.Alert != nil {
		t.Errorf("alert: got %+v, want none at 640 ppm", sj.Status.Alert)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Status.MQTT.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("MQTT.Broker: got %q, want tcp://192.168.1.200:1883", sj.Status.MQTT.Broker)
	}
	if sj.Status.UptimeSeconds != 150 {
		t.Errorf("uptime: got %d, want 150", sj.Status.UptimeSeconds)
	}
}

func TestJSONBeforeFirstData(t *testing.T) {
	ts, _, _ := newTestServer(t)

	sj := getStatus(t, ts)

	if sj.Status.Sensor != nil {
		t.Errorf("sensor before first reading: got %+v, want omitted", sj.Status.Sensor)
	}
	vj, ok := sj.Status.Values["office_temp"]
	if !ok {
		t.Fatal("expected office_temp in values even when unset")
	}
	if vj.Value != nil {
		t.Errorf("unset value: got %v, want null", vj.Value)
	}
	if sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=false")
	}
}

func TestJSONActiveAlert(t *testing.T) {
	ts, store, _ := newTestServer(t)
	store.SetSensor(state.SensorReading{CO2: 1600, Temperature: 22, Humidity: 40, At: nowTime})

	sj := getStatus(t, ts)

	if sj.Status.Alert == nil {
		t.Fatal("expected active alert at 1600 ppm")
	}
	if sj.Status.Alert.Source != "sensor.co2" {
		t.Errorf("alert source: got %q, want sensor.co2", sj.Status.Alert.Source)
	}
	if sj.Status.Alert.Condition != "> 1400" {
		t.Errorf("alert condition: got %q, want > 1400", sj.Status.Alert.Condition)
	}
	if sj.Status.Alert.Priority != 10 {
		t.Errorf("alert priority: got %d, want 10", sj.Status.Alert.Priority)
	}
	if sj.Status.Alert.Mode != "pulse" {
		t.Errorf("alert mode: got %q, want pulse", sj.Status.Alert.Mode)
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, store, _ := newTestServer(t)
	store.SetSensor(state.SensorReading{CO2: 640, Temperature: 21.5, Humidity: 41, At: nowTime})

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "640 ppm") {
		t.Error("expected the CO2 reading on the page")
	}
	if !strings.Contains(string(body), "waiting for data") {
		t.Error("expected the unset subscription placeholder on the page")
	}
}

func TestHTMLEndpointIndexHTML(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET /index.html: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nonexistent")
	if err != nil {
		t.Fatalf("GET /nonexistent: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, store, connected := newTestServer(t)

	sj1 := getStatus(t, ts)
	if sj1.Status.Screen.Index != 0 {
		t.Errorf("initial screen: got %d, want 0", sj1.Status.Screen.Index)
	}
	if sj1.Status.MQTT.Connected {
		t.Error("expected disconnected initially")
	}

	store.AdvanceScreen(1)
	store.StepLEDBrightness(-0.1)
	*connected = true

	sj2 := getStatus(t, ts)
	if sj2.Status.Screen.Index != 1 || sj2.Status.Screen.Name != "Backlight" {
		t.Errorf("screen after advance: got %d %q, want 1 Backlight",
			sj2.Status.Screen.Index, sj2.Status.Screen.Name)
	}
	if sj2.Status.Brightness.LED != 0.9 || !sj2.Status.Brightness.LEDOverride {
		t.Errorf("led after step: got %v override=%v, want 0.9 with override",
			sj2.Status.Brightness.LED, sj2.Status.Brightness.LEDOverride)
	}
	if !sj2.Status.MQTT.Connected {
		t.Error("expected connected after update")
	}
}
