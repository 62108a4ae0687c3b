// Package web provides an HTTP status server for the desk-monitor
// daemon: a human-readable page mirroring what the LCD and LED show,
// plus a JSON view of the same snapshot.
package web

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/sweeney/desk-monitor/internal/alert"
	"github.com/sweeney/desk-monitor/internal/config"
	"github.com/sweeney/desk-monitor/internal/state"
)

// Server serves the status page over HTTP.
type Server struct {
	httpServer *http.Server
	store      *state.Store
	cfg        *config.Config
	connected  func() bool

	start time.Time
	now   func() time.Time
}

// New creates a Server that reads state from the given store. connected
// reports broker connectivity; nil reads as never connected.
func New(addr string, store *state.Store, cfg *config.Config, connected func() bool) *Server {
	if connected == nil {
		connected = func() bool { return false }
	}
	s := &Server{
		store:     store,
		cfg:       cfg,
		connected: connected,
		start:     time.Now(),
		now:       time.Now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/status.json", s.handleJSON)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, s.view())
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(formatJSON(s.view()))
}

// view is one consistent read of everything the endpoints show. The
// active alert is recomputed from the same snapshot the animator sees,
// so the page always agrees with the LED.
type view struct {
	Now     time.Time
	Started time.Time
	Uptime  time.Duration

	Screen      int
	ScreenCount int
	ScreenName  string

	DisplayBrightness float64
	LEDBrightness     float64
	LEDOverride       bool

	Sensor    state.SensorReading
	HasSensor bool

	Subs []subRow

	Alert *config.Alert

	MQTTConnected bool
	Broker        string
}

// subRow joins one configured subscription with its latest value, if
// any has arrived.
type subRow struct {
	ID    string
	Label string
	Unit  string
	Value state.Value
	At    time.Time
	Set   bool
}

func (s *Server) view() view {
	snap := s.store.Snapshot()
	now := s.now()

	v := view{
		Now:               now,
		Started:           s.start,
		Uptime:            now.Sub(s.start),
		Screen:            snap.Screen,
		ScreenCount:       snap.ScreenCount,
		ScreenName:        s.cfg.Screens[snap.Screen].Name,
		DisplayBrightness: snap.DisplayBrightness,
		LEDBrightness:     snap.EffectiveLEDBrightness(),
		LEDOverride:       snap.HasLEDBrightness,
		Sensor:            snap.Sensor,
		HasSensor:         snap.HasSensor,
		Alert:             alert.Evaluate(snap, s.cfg.Alerts),
		MQTTConnected:     s.connected(),
		Broker:            s.cfg.MQTT.BrokerURL(),
	}
	for _, sub := range s.cfg.Subscriptions {
		row := subRow{ID: sub.ID, Label: sub.Label, Unit: sub.Unit}
		if sv, ok := snap.Subscriptions[sub.ID]; ok {
			row.Value, row.At, row.Set = sv.Value, sv.At, true
		}
		v.Subs = append(v.Subs, row)
	}
	return v
}
