package button

import (
	"context"
	"log"
	"time"

	"github.com/sweeney/desk-monitor/internal/config"
	"github.com/sweeney/desk-monitor/internal/display"
	"github.com/sweeney/desk-monitor/internal/screen"
	"github.com/sweeney/desk-monitor/internal/state"
)

const (
	pollInterval  = 20 * time.Millisecond
	debounceCount = 2
)

// Publisher enqueues outbound MQTT messages.
type Publisher interface {
	Publish(topic, payload string)
}

// Dispatcher polls the buttons at 50 Hz and routes confirmed presses.
// The visible screen gets first refusal; unconsumed presses fall
// through to the global button config.
type Dispatcher struct {
	reader  Reader
	store   *state.Store
	screens []screen.Screen
	buttons map[string]config.Button
	dev     display.Device
	pub     Publisher

	interval time.Duration
	deb      *Debouncer
}

// NewDispatcher wires the dispatcher to its collaborators. dev is
// passed through to screens whose button handlers adjust the backlight.
func NewDispatcher(reader Reader, store *state.Store, screens []screen.Screen, buttons map[string]config.Button, dev display.Device, pub Publisher) *Dispatcher {
	return &Dispatcher{
		reader:   reader,
		store:    store,
		screens:  screens,
		buttons:  buttons,
		dev:      dev,
		pub:      pub,
		interval: pollInterval,
		deb:      NewDebouncer(debounceCount),
	}
}

// Run polls until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	log.Printf("button: polling started")
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Printf("button: polling stopped")
			return
		case <-ticker.C:
			d.tick()
		}
	}
}

func (d *Dispatcher) tick() {
	sample, err := d.reader.Poll()
	if err != nil {
		log.Printf("button: poll: %v", err)
		return
	}
	for i, fired := range d.deb.Feed(sample) {
		if fired {
			d.press(Names[i])
		}
	}
}

func (d *Dispatcher) press(name string) {
	current := d.screens[d.store.Screen()]
	if current.HandleButton(name, d.store, d.dev) {
		return
	}

	cfg, ok := d.buttons[name]
	if !ok {
		return
	}
	switch cfg.Action {
	case config.ActionPrevScreen:
		d.store.AdvanceScreen(-1)
	case config.ActionNextScreen:
		d.store.AdvanceScreen(1)
	case config.ActionPublish:
		d.pub.Publish(cfg.Topic, cfg.Payload)
	}
}
