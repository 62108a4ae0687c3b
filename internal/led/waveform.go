// Package led animates the status LED. A periodic task evaluates the
// alert rules each tick and writes the active waveform's color to the
// LED driver.
package led

import (
	"math"

	"github.com/sweeney/desk-monitor/internal/config"
)

// Level returns the waveform's brightness multiplier at t seconds after
// its rule became active:
//
//	solid: 1
//	pulse: 0.5 + 0.5·sin(2πt/period), so activation starts at half
//	blink: 1 while frac(t·hz) < duty, else 0
func Level(w config.Waveform, t float64) float64 {
	switch w.Mode {
	case config.ModePulse:
		return 0.5 + 0.5*math.Sin(2*math.Pi*t/w.PulsePeriod)
	case config.ModeBlink:
		x := t * w.BlinkHz
		if x-math.Floor(x) < w.BlinkDuty {
			return 1
		}
		return 0
	default:
		return 1
	}
}

// quantize maps a color to the 8 bits per channel the hardware can
// actually resolve. Writes that don't change the quantized color are
// skipped.
func quantize(r, g, b float64) [3]uint8 {
	return [3]uint8{q8(r), q8(g), q8(b)}
}

func q8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(v * 255))
}
