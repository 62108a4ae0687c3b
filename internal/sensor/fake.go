package sensor

import "errors"

// FakeDevice is a test double that returns scripted readings.
type FakeDevice struct {
	// Samples are returned by successive Poll calls. The last sample
	// repeats once exhausted.
	Samples []Reading

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// PollError, if set, will be returned by Poll()
	PollError error
}

// NewFakeDevice creates a FakeDevice with the given samples.
func NewFakeDevice(samples ...Reading) *FakeDevice {
	return &FakeDevice{Samples: samples}
}

// Poll returns the next scripted reading.
func (f *FakeDevice) Poll() (Reading, error) {
	if f.PollError != nil {
		return Reading{}, f.PollError
	}
	if len(f.Samples) == 0 {
		return Reading{}, errors.New("no samples configured")
	}
	r := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return r, nil
}

// Close marks the device as closed.
func (f *FakeDevice) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the device to the beginning of samples.
func (f *FakeDevice) Reset() {
	f.index = 0
	f.Closed = false
}
