//go:build !linux

package display

import (
	"errors"
	"image"
)

var errUnsupported = errors.New("display: not supported on this platform (requires Linux)")

// RealDevice is not available on non-Linux platforms.
type RealDevice struct{}

// NewRealDevice returns an error on non-Linux platforms.
func NewRealDevice(pwm bool) (*RealDevice, error) {
	return nil, errUnsupported
}

func (d *RealDevice) Push(img *image.RGBA) error { return errUnsupported }

func (d *RealDevice) SetBacklight(v float64) error { return errUnsupported }

func (d *RealDevice) Close() error { return nil }

// RealLED is not available on non-Linux platforms.
type RealLED struct{}

// NewRealLED returns an error on non-Linux platforms.
func NewRealLED() (*RealLED, error) {
	return nil, errUnsupported
}

func (l *RealLED) SetRGB(r, g, b float64) error { return errUnsupported }

func (l *RealLED) Close() error { return nil }
