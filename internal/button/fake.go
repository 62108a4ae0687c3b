package button

import "errors"

// FakeReader is a test double that returns scripted button samples.
type FakeReader struct {
	// Samples contains scripted pressed states in Names order. Each
	// call to Poll consumes the next sample; the last sample repeats
	// once exhausted.
	Samples [][4]bool

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// PollError, if set, will be returned by Poll()
	PollError error
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples ...[4]bool) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Poll returns the next scripted sample.
func (f *FakeReader) Poll() ([4]bool, error) {
	if f.PollError != nil {
		return [4]bool{}, f.PollError
	}
	if len(f.Samples) == 0 {
		return [4]bool{}, errors.New("no samples configured")
	}
	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return sample, nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the reader to the beginning of samples.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Closed = false
}
