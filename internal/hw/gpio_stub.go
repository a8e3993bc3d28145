//go:build !linux

package hw

import "errors"

// DefaultChip is the GPIO character device on a Raspberry Pi.
const DefaultChip = "gpiochip0"

var errNotSupported = errors.New("hw: gpio not supported on this platform (requires Linux)")

// RealOutput is not available on non-Linux platforms.
type RealOutput struct{}

// NewRealOutput returns an error on non-Linux platforms.
func NewRealOutput(chip string, offset int) (*RealOutput, error) {
	return nil, errNotSupported
}

// Set is not implemented on non-Linux platforms.
func (o *RealOutput) Set(on bool) error { return errNotSupported }

// Close is not implemented on non-Linux platforms.
func (o *RealOutput) Close() error { return nil }

// RealInput is not available on non-Linux platforms.
type RealInput struct{}

// NewRealInput returns an error on non-Linux platforms.
func NewRealInput(chip string, offset int, activeLow bool) (*RealInput, error) {
	return nil, errNotSupported
}

// Get is not implemented on non-Linux platforms.
func (i *RealInput) Get() (bool, error) { return false, errNotSupported }

// Close is not implemented on non-Linux platforms.
func (i *RealInput) Close() error { return nil }
