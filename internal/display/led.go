//go:build linux

package display

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealLED drives the HAT's RGB LED with three software-PWM lines. The
// LED is common-anode, so the lines are requested active-low and the
// duty logic stays uninverted.
type RealLED struct {
	chip    *gpiocdev.Chip
	r, g, b *softPWM
}

// NewRealLED opens the three LED lines.
func NewRealLED() (*RealLED, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	l := &RealLED{chip: chip}
	for _, ch := range []struct {
		pin int
		dst **softPWM
	}{
		{PinLEDR, &l.r},
		{PinLEDG, &l.g},
		{PinLEDB, &l.b},
	} {
		pwm, err := newSoftPWM(chip, ch.pin, gpiocdev.AsActiveLow)
		if err != nil {
			l.Close()
			return nil, fmt.Errorf("request led pin %d: %w", ch.pin, err)
		}
		*ch.dst = pwm
	}
	return l, nil
}

// SetRGB sets the LED color; components are fractions in [0,1].
func (l *RealLED) SetRGB(r, g, b float64) error {
	l.r.SetDuty(r)
	l.g.SetDuty(g)
	l.b.SetDuty(b)
	return nil
}

// Close switches the LED off and releases its lines.
func (l *RealLED) Close() error {
	var errs []error
	for _, pwm := range []*softPWM{l.r, l.g, l.b} {
		if pwm == nil {
			continue
		}
		if err := pwm.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if l.chip != nil {
		if err := l.chip.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
