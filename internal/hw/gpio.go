//go:build linux

package hw

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// DefaultChip is the GPIO character device on a Raspberry Pi.
const DefaultChip = "gpiochip0"

// RealOutput drives a GPIO line through the Linux character device.
type RealOutput struct {
	line *gpiocdev.Line
}

// NewRealOutput requests the given line as an output, initially low.
func NewRealOutput(chip string, offset int) (*RealOutput, error) {
	line, err := gpiocdev.RequestLine(chip, offset, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request output line %d: %w", offset, err)
	}
	return &RealOutput{line: line}, nil
}

// Set drives the line high or low.
func (o *RealOutput) Set(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := o.line.SetValue(v); err != nil {
		return fmt.Errorf("set line: %w", err)
	}
	return nil
}

// Close drives the line low and releases it, so a daemon restart never
// leaves a relay or emitter latched on.
func (o *RealOutput) Close() error {
	if err := o.line.SetValue(0); err != nil {
		o.line.Close()
		return fmt.Errorf("clear line on close: %w", err)
	}
	return o.line.Close()
}

// RealInput reads a GPIO line through the Linux character device.
type RealInput struct {
	line      *gpiocdev.Line
	activeLow bool
}

// NewRealInput requests the given line as an input with pull-up.
// With activeLow set, a raw 0 reads as asserted — the wiring for a
// button that shorts the line to ground.
func NewRealInput(chip string, offset int, activeLow bool) (*RealInput, error) {
	line, err := gpiocdev.RequestLine(chip, offset, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		return nil, fmt.Errorf("request input line %d: %w", offset, err)
	}
	return &RealInput{line: line, activeLow: activeLow}, nil
}

// Get returns the logical state of the line.
func (i *RealInput) Get() (bool, error) {
	v, err := i.line.Value()
	if err != nil {
		return false, fmt.Errorf("read line: %w", err)
	}
	if i.activeLow {
		return v == 0, nil
	}
	return v == 1, nil
}

// Close releases the line.
func (i *RealInput) Close() error {
	return i.line.Close()
}
