// Package logic contains the pure detection state machines for the clapper
// and dreamer sketches. This package has NO external dependencies (no GPIO,
// serial, MQTT, OS, or time.Sleep). Time is always injectable via time.Time
// parameters, and all windows are counted in ticks.
package logic

import "time"

// EventType identifies something the detection logic decided on a tick.
type EventType string

const (
	// Clapper events.
	EventClap          EventType = "CLAP"           // first clap detected, now armed
	EventToggleOn      EventType = "TOGGLE_ON"      // confirming clap, switch flipped on
	EventToggleOff     EventType = "TOGGLE_OFF"     // confirming clap, switch flipped off
	EventWindowExpired EventType = "WINDOW_EXPIRED" // no second clap in time, disarmed

	// Dreamer events.
	EventSaccade    EventType = "SACCADE"     // eye movement detected
	EventStimulus   EventType = "STIMULUS"    // saccade count hit threshold, run pulse sequence
	EventStaleReset EventType = "STALE_RESET" // inactivity timeout discarded partial progress
)

// Event is a single decision emitted by a policy on one tick.
// Fields beyond Type are populated where they make sense:
// Switch for TOGGLE_* events, EventCount for SACCADE/STIMULUS.
type Event struct {
	Time       time.Time
	Type       EventType
	Switch     bool // switch state after a toggle
	EventCount int  // saccade count after this event (0 after STIMULUS)
}

// Input is one tick's worth of sensor readings.
type Input struct {
	Time     time.Time
	Sample   int  // raw analog reading from the mic/phototransistor bridge
	Override bool // manual override input held (dreamer only)
}

// Counts tracks how many of each event fired since startup.
// Reported in heartbeats and on the status page.
type Counts struct {
	Claps       int
	Toggles     int
	Expired     int
	Saccades    int
	Stimuli     int
	StaleResets int
}
