// Package render drives the panel: a fixed-rate loop that re-renders
// the current screen whenever the shared state has changed since the
// last pushed frame.
package render

import (
	"context"
	"log"
	"time"

	"github.com/sweeney/desk-monitor/internal/display"
	"github.com/sweeney/desk-monitor/internal/screen"
	"github.com/sweeney/desk-monitor/internal/state"
)

// Renderer owns the display for the process lifetime. Nothing else
// pushes frames.
type Renderer struct {
	store   *state.Store
	screens []screen.Screen
	dev     display.Device
	frame   time.Duration

	last     uint64
	rendered bool
}

// New returns a Renderer ticking at the configured frame rate.
func New(store *state.Store, screens []screen.Screen, dev display.Device, fps int) *Renderer {
	if fps < 1 {
		fps = 1
	}
	return &Renderer{
		store:   store,
		screens: screens,
		dev:     dev,
		frame:   time.Second / time.Duration(fps),
	}
}

// Run renders until ctx is cancelled.
func (r *Renderer) Run(ctx context.Context) {
	log.Printf("render: loop started (%v per frame)", r.frame)
	ticker := time.NewTicker(r.frame)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Printf("render: loop stopped")
			return
		case <-ticker.C:
			r.tick()
		}
	}
}

// tick pushes a frame when the state version moved, so a static screen
// costs nothing per tick. A failed push leaves the version unrecorded
// and the frame is retried next tick.
func (r *Renderer) tick() {
	if r.rendered && r.store.Version() == r.last {
		return
	}
	snap := r.store.Snapshot()
	s := r.screens[snap.Screen]
	if err := r.dev.Push(s.Render(snap)); err != nil {
		log.Printf("render: push %s: %v", s.Name(), err)
		return
	}
	r.last = snap.Version
	r.rendered = true
}
