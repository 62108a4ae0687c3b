// Package button reads the four front-panel buttons and dispatches
// configured actions on debounced press edges. Edge interrupts are not
// usable across kernel versions on this hardware, so input is sampled
// by polling.
package button

// Names of the four buttons, in polling order.
var Names = [4]string{"A", "B", "X", "Y"}

// BCM lines for the buttons. All are wired active-low with an internal
// pull-up.
const (
	PinA = 5
	PinB = 6
	PinX = 16
	PinY = 24
)

// Reader samples the four button lines. Poll returns pressed states in
// Names order.
type Reader interface {
	Poll() ([4]bool, error)

	// Close releases GPIO resources.
	Close() error
}
