package hw

import "errors"

// FakeAnalog is a test double that returns scripted analog samples.
type FakeAnalog struct {
	// Samples contains scripted readings. Each Read consumes the next;
	// when exhausted, the last sample repeats.
	Samples []int

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakeAnalog creates a FakeAnalog with the given samples.
func NewFakeAnalog(samples []int) *FakeAnalog {
	return &FakeAnalog{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeAnalog) Read() (int, error) {
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	if len(f.Samples) == 0 {
		return 0, errors.New("no samples configured")
	}
	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return sample, nil
}

// Close marks the reader as closed.
func (f *FakeAnalog) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the reader to the beginning of samples.
func (f *FakeAnalog) Reset() {
	f.index = 0
	f.Closed = false
}

// FakeInput is a test double for a digital input line.
type FakeInput struct {
	// States contains scripted levels; the last repeats when exhausted.
	States []bool

	index    int
	Closed   bool
	GetError error
}

// NewFakeInput creates a FakeInput with the given scripted states.
func NewFakeInput(states []bool) *FakeInput {
	return &FakeInput{States: states}
}

// Get returns the next scripted state, repeating the last when exhausted.
// With no states configured it reads as deasserted.
func (f *FakeInput) Get() (bool, error) {
	if f.GetError != nil {
		return false, f.GetError
	}
	if len(f.States) == 0 {
		return false, nil
	}
	s := f.States[f.index]
	if f.index < len(f.States)-1 {
		f.index++
	}
	return s, nil
}

// Close marks the input as closed.
func (f *FakeInput) Close() error {
	f.Closed = true
	return nil
}

// FakePin is a test double for a digital output line that records
// every write.
type FakePin struct {
	// State is the level after the most recent Set.
	State bool
	// Writes records every level passed to Set, in order.
	Writes []bool

	Closed   bool
	SetError error
}

// NewFakePin creates a FakePin, initially low.
func NewFakePin() *FakePin {
	return &FakePin{}
}

// Set records and applies the level.
func (f *FakePin) Set(on bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.State = on
	f.Writes = append(f.Writes, on)
	return nil
}

// Close marks the pin as closed.
func (f *FakePin) Close() error {
	f.Closed = true
	return nil
}
