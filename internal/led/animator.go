package led

import (
	"context"
	"log"
	"time"

	"github.com/sweeney/desk-monitor/internal/alert"
	"github.com/sweeney/desk-monitor/internal/config"
	"github.com/sweeney/desk-monitor/internal/display"
	"github.com/sweeney/desk-monitor/internal/state"
)

const tickInterval = 50 * time.Millisecond

// Animator drives the RGB LED. Each tick it evaluates the alert rules
// against the current state and writes the winning waveform's color,
// scaled by the LED brightness override. The waveform phase is zeroed
// at the instant the winning rule changes, so a blink always starts
// with its on-phase and a pulse always starts at half brightness.
type Animator struct {
	store *state.Store
	rules []config.Alert
	idle  config.Waveform
	dev   display.LED

	interval time.Duration
	now      func() time.Time

	active  *config.Alert
	since   time.Time
	last    [3]uint8
	written bool
}

// NewAnimator returns an Animator ticking at 50ms, fast enough that a
// 2s pulse renders smoothly.
func NewAnimator(store *state.Store, cfg *config.Config, dev display.LED) *Animator {
	return &Animator{
		store:    store,
		rules:    cfg.Alerts,
		idle:     cfg.LEDIdle,
		dev:      dev,
		interval: tickInterval,
		now:      time.Now,
	}
}

// Run animates until ctx is cancelled, then switches the LED off.
func (a *Animator) Run(ctx context.Context) {
	a.since = a.now()
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if err := a.dev.SetRGB(0, 0, 0); err != nil {
				log.Printf("led: off: %v", err)
			}
			return
		case <-ticker.C:
			a.tick()
		}
	}
}

func (a *Animator) tick() {
	snap := a.store.Snapshot()
	match := alert.Evaluate(snap, a.rules)
	now := a.now()
	if match != a.active {
		a.active = match
		a.since = now
	}

	wf := a.idle
	if a.active != nil {
		wf = a.active.Waveform
	}
	level := Level(wf, now.Sub(a.since).Seconds()) * snap.EffectiveLEDBrightness()
	r := wf.Color.R * level
	g := wf.Color.G * level
	b := wf.Color.B * level

	q := quantize(r, g, b)
	if a.written && q == a.last {
		return
	}
	if err := a.dev.SetRGB(r, g, b); err != nil {
		log.Printf("led: set color: %v", err)
		a.written = false
		return
	}
	a.last = q
	a.written = true
}
