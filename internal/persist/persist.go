// Package persist saves and restores the small slice of UI state that
// should survive a restart: the selected screen, the backlight level,
// and the LED brightness override. Persistence failures are warnings,
// never fatal — losing a save costs one restart's worth of UI position.
package persist

import (
	"encoding/json"
	"errors"
	"log"
	"os"

	"github.com/sweeney/desk-monitor/internal/state"
)

// Saved is the state file contents. A nil LEDBrightness means no
// override was active.
type Saved struct {
	Screen        int      `json:"screen"`
	Brightness    float64  `json:"brightness"`
	LEDBrightness *float64 `json:"led_brightness,omitempty"`
}

func (s Saved) equal(o Saved) bool {
	if s.Screen != o.Screen || s.Brightness != o.Brightness {
		return false
	}
	if (s.LEDBrightness == nil) != (o.LEDBrightness == nil) {
		return false
	}
	return s.LEDBrightness == nil || *s.LEDBrightness == *o.LEDBrightness
}

// Load reads the state file. A missing file is a normal first boot; a
// corrupt file is logged and ignored. ok reports whether anything
// usable was read.
func Load(path string) (Saved, bool) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Saved{}, false
	}
	if err != nil {
		log.Printf("persist: read %s: %v", path, err)
		return Saved{}, false
	}
	var s Saved
	if err := json.Unmarshal(data, &s); err != nil {
		log.Printf("persist: parse %s: %v", path, err)
		return Saved{}, false
	}
	return s, true
}

// Save writes the state file atomically (temp file, then rename), so a
// power cut mid-write never leaves a truncated file behind.
func Save(path string, s Saved) {
	data, err := json.Marshal(s)
	if err != nil {
		log.Printf("persist: encode: %v", err)
		return
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		log.Printf("persist: write %s: %v", tmp, err)
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		log.Printf("persist: rename %s: %v", tmp, err)
	}
}

// Current captures the persistable slice of the store.
func Current(store *state.Store) Saved {
	s := Saved{
		Screen:     store.Screen(),
		Brightness: store.DisplayBrightness(),
	}
	if v, ok := store.LEDBrightness(); ok {
		s.LEDBrightness = &v
	}
	return s
}

// Apply restores saved state into the store. Out-of-range values are
// normalized by the store's own setters, so a state file written by an
// older configuration (more screens, wider ranges) cannot corrupt the
// run.
func Apply(s Saved, store *state.Store) {
	store.SetScreen(s.Screen)
	store.SetDisplayBrightness(s.Brightness)
	if s.LEDBrightness != nil {
		store.SetLEDBrightness(*s.LEDBrightness)
	}
}
