// Package hw abstracts the hardware the sketches touch: the analog front
// end (an MCU ADC bridge streaming readings over a serial port) and the
// digital GPIO lines. Real implementations need a serial device and the
// Linux GPIO character device; fakes allow testing without hardware.
package hw

import "errors"

// ErrNoSample is returned by an AnalogReader before the first reading
// has arrived from the bridge.
var ErrNoSample = errors.New("hw: no sample received yet")

// AnalogReader returns the most recent analog sensor reading. Sampling
// cadence is owned by the tick loop, not by the reader: Read never blocks
// waiting for fresh data, it reports whatever arrived last.
type AnalogReader interface {
	Read() (int, error)
	Close() error
}

// InputPin reads a single digital input line.
type InputPin interface {
	Get() (bool, error)
	Close() error
}

// OutputPin drives a single digital output line.
type OutputPin interface {
	Set(on bool) error
	Close() error
}

// Default GPIO line offsets (BCM numbering).
const (
	DefaultPinSwitch    = 17 // clapper: relay driving the switched load
	DefaultPinIndicator = 22 // dreamer: per-saccade indicator LED
	DefaultPinStimulus  = 23 // dreamer: stimulus LED pair
	DefaultPinEmitter   = 24 // dreamer: IR emitter/phototransistor power rail
	DefaultPinOverride  = 27 // dreamer: manual override button (active low)
)
