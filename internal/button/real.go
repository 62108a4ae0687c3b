//go:build linux

package button

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealReader reads the buttons through the Linux GPIO character device.
type RealReader struct {
	chip  *gpiocdev.Chip
	lines *gpiocdev.Lines
}

// NewRealReader requests the four button lines as pulled-up active-low
// inputs, so a pressed button reads as 1.
func NewRealReader() (*RealReader, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	lines, err := chip.RequestLines(
		[]int{PinA, PinB, PinX, PinY},
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.AsActiveLow,
	)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request button lines: %w", err)
	}

	return &RealReader{chip: chip, lines: lines}, nil
}

// Poll reads all four lines in one request.
func (r *RealReader) Poll() ([4]bool, error) {
	var raw [4]int
	if err := r.lines.Values(raw[:]); err != nil {
		return [4]bool{}, fmt.Errorf("read buttons: %w", err)
	}
	var pressed [4]bool
	for i, v := range raw {
		pressed[i] = v != 0
	}
	return pressed, nil
}

// Close releases GPIO resources.
func (r *RealReader) Close() error {
	var errs []error
	if r.lines != nil {
		if err := r.lines.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button lines: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
