package display

import (
	"image"
	"sync"
)

// FakeDevice is a test double that records pushed frames and backlight
// changes. Safe for concurrent use so renderer and button tasks can
// share it in tests.
type FakeDevice struct {
	mu sync.Mutex

	// Frames contains every frame pushed, in order.
	Frames []*image.RGBA

	// Backlights contains every backlight value set, in order.
	Backlights []float64

	// PushError, if set, is returned by Push.
	PushError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeDevice creates a FakeDevice for testing.
func NewFakeDevice() *FakeDevice {
	return &FakeDevice{}
}

// Push records the frame.
func (f *FakeDevice) Push(img *image.RGBA) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PushError != nil {
		return f.PushError
	}
	f.Frames = append(f.Frames, img)
	return nil
}

// SetBacklight records the backlight value.
func (f *FakeDevice) SetBacklight(v float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Backlights = append(f.Backlights, v)
	return nil
}

// Close marks the device as closed.
func (f *FakeDevice) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// FrameCount returns how many frames were pushed.
func (f *FakeDevice) FrameCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Frames)
}

// LastFrame returns the most recently pushed frame, or nil.
func (f *FakeDevice) LastFrame() *image.RGBA {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Frames) == 0 {
		return nil
	}
	return f.Frames[len(f.Frames)-1]
}

// LastBacklight returns the most recent backlight value and whether one
// was ever set.
func (f *FakeDevice) LastBacklight() (float64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Backlights) == 0 {
		return 0, false
	}
	return f.Backlights[len(f.Backlights)-1], true
}

// FakeLED is a test double that records every color written.
type FakeLED struct {
	mu sync.Mutex

	// Colors contains every (r, g, b) triple set, in order.
	Colors [][3]float64

	// SetError, if set, is returned by SetRGB.
	SetError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeLED creates a FakeLED for testing.
func NewFakeLED() *FakeLED {
	return &FakeLED{}
}

// SetRGB records the color.
func (f *FakeLED) SetRGB(r, g, b float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetError != nil {
		return f.SetError
	}
	f.Colors = append(f.Colors, [3]float64{r, g, b})
	return nil
}

// Close marks the LED as closed.
func (f *FakeLED) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// Writes returns how many colors were set.
func (f *FakeLED) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Colors)
}

// Last returns the most recent color, or zeros when none was set.
func (f *FakeLED) Last() [3]float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Colors) == 0 {
		return [3]float64{}
	}
	return f.Colors[len(f.Colors)-1]
}
