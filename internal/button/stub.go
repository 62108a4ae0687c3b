//go:build !linux

package button

import "errors"

var errUnsupported = errors.New("button: GPIO requires linux")

// RealReader is a stub for non-Linux builds.
type RealReader struct{}

// NewRealReader always fails on non-Linux platforms.
func NewRealReader() (*RealReader, error) {
	return nil, errUnsupported
}

func (r *RealReader) Poll() ([4]bool, error) { return [4]bool{}, errUnsupported }

func (r *RealReader) Close() error { return nil }
