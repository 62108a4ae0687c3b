package render

import (
	"errors"
	"image"
	"testing"

	"github.com/sweeney/desk-monitor/internal/display"
	"github.com/sweeney/desk-monitor/internal/screen"
	"github.com/sweeney/desk-monitor/internal/state"
)

// stubScreen counts renders and returns a blank frame.
type stubScreen struct {
	name  string
	count int
}

func (s *stubScreen) Name() string { return s.name }

func (s *stubScreen) Render(state.Snapshot) *image.RGBA {
	s.count++
	return image.NewRGBA(image.Rect(0, 0, screen.Width, screen.Height))
}

func (s *stubScreen) HandleButton(string, *state.Store, display.Device) bool { return false }

func newTestRenderer(screenCount int) (*Renderer, []*stubScreen, *display.FakeDevice, *state.Store) {
	stubs := make([]*stubScreen, screenCount)
	screens := make([]screen.Screen, screenCount)
	for i := range stubs {
		stubs[i] = &stubScreen{name: string(rune('a' + i))}
		screens[i] = stubs[i]
	}
	dev := display.NewFakeDevice()
	st := state.New(screenCount, 1.0)
	return New(st, screens, dev, 4), stubs, dev, st
}

func TestTickSkipsUnchangedState(t *testing.T) {
	r, _, dev, st := newTestRenderer(2)

	r.tick()
	r.tick()
	r.tick()
	if got := dev.FrameCount(); got != 1 {
		t.Errorf("frames after three static ticks = %d, want 1", got)
	}

	st.SetSensor(state.SensorReading{CO2: 600})
	r.tick()
	if got := dev.FrameCount(); got != 2 {
		t.Errorf("frames after state change = %d, want 2", got)
	}
}

func TestTickRendersCurrentScreen(t *testing.T) {
	r, stubs, _, st := newTestRenderer(2)

	r.tick()
	st.AdvanceScreen(1)
	r.tick()

	if stubs[0].count != 1 || stubs[1].count != 1 {
		t.Errorf("render counts = %d, %d, want 1, 1", stubs[0].count, stubs[1].count)
	}
}

func TestTickRetriesFailedPush(t *testing.T) {
	r, _, dev, _ := newTestRenderer(1)

	dev.PushError = errors.New("spi write failed")
	r.tick()
	if got := dev.FrameCount(); got != 0 {
		t.Fatalf("frames after failed push = %d, want 0", got)
	}

	// No state change in between: the frame must still be retried.
	dev.PushError = nil
	r.tick()
	if got := dev.FrameCount(); got != 1 {
		t.Errorf("frames after retry = %d, want 1", got)
	}
}
