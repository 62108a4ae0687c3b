//go:build !linux

package sensor

import "errors"

var errUnsupported = errors.New("sensor: I2C requires linux")

// RealDevice is a stub for non-Linux builds.
type RealDevice struct{}

// NewRealDevice always fails on non-Linux platforms.
func NewRealDevice(interval int, tempOffset float64, altitude int) (*RealDevice, error) {
	return nil, errUnsupported
}

func (d *RealDevice) Poll() (Reading, error) { return Reading{}, errUnsupported }

func (d *RealDevice) Close() error { return nil }
