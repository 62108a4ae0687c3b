// Package display drives the Display HAT Mini's ST7789 panel, its
// backlight, and its RGB LED. The real implementations talk SPI and
// GPIO; fakes record everything for tests.
package display

import "image"

// Panel dimensions in landscape orientation.
const (
	Width  = 320
	Height = 240
)

// Display HAT Mini pin assignment (BCM numbering). The panel sits on
// SPI0 chip-select 1; the LED is a common-anode RGB part, so its lines
// are driven active-low.
const (
	PinDC        = 9
	PinBacklight = 13
	PinLEDR      = 17
	PinLEDG      = 27
	PinLEDB      = 22
)

// SPIPort is the periph.io name of the panel's SPI port.
const SPIPort = "SPI0.1"

// Device is a pixel display plus its backlight.
type Device interface {
	// Push writes a full Width×Height frame to the panel.
	Push(img *image.RGBA) error

	// SetBacklight sets the backlight to a fraction in [0,1]. Without
	// PWM anything above zero switches it fully on.
	SetBacklight(v float64) error

	// Close releases the display resources.
	Close() error
}

// LED is the front RGB status LED.
type LED interface {
	// SetRGB sets the LED color; components are fractions in [0,1].
	SetRGB(r, g, b float64) error

	// Close switches the LED off and releases its lines.
	Close() error
}
