package logic

// DreamerConfig holds the dreamer's tuning constants.
type DreamerConfig struct {
	// DetectThreshold is the minimum absolute sample delta that counts as
	// a saccade. Absolute, unlike the clapper: the phototransistor swings
	// both ways as the eye moves under the lid.
	DetectThreshold int
	// EdgeThreshold is how many saccades trigger the stimulus sequence.
	EdgeThreshold int
	// ResetTicks is how many event-free ticks stale partial progress
	// survives before being discarded.
	ResetTicks int
}

// Dreamer accumulates detected saccades toward the stimulus threshold and
// discards stale progress after a period of inactivity. The saccade count
// stays within [0, EdgeThreshold]; reaching the threshold is consumed on
// the same tick (STIMULUS event, count back to zero), so it is never
// observed above it.
type Dreamer struct {
	cfg    DreamerConfig
	prev   int
	events int // saccades since last stimulus or reset
	idle   int // ticks since the last saccade
	counts Counts
}

// NewDreamer creates a dreamer seeded with an initial sensor reading.
func NewDreamer(cfg DreamerConfig, seed int) *Dreamer {
	return &Dreamer{cfg: cfg, prev: seed}
}

// Tick processes one sample and returns any events to act on.
// A tick either detects a saccade (resetting the idle counter) or
// increments the idle counter — never both.
func (d *Dreamer) Tick(in Input) []Event {
	delta := in.Sample - d.prev
	if delta < 0 {
		delta = -delta
	}
	d.prev = in.Sample

	var events []Event
	if delta >= d.cfg.DetectThreshold {
		d.events++
		d.idle = 0
		d.counts.Saccades++
		events = append(events, Event{Time: in.Time, Type: EventSaccade, EventCount: d.events})
		if d.events >= d.cfg.EdgeThreshold {
			d.events = 0
			d.counts.Stimuli++
			events = append(events, Event{Time: in.Time, Type: EventStimulus})
		}
	} else {
		d.idle++
		if d.idle >= d.cfg.ResetTicks {
			stale := d.events > 0
			d.idle = 0
			d.events = 0
			if stale {
				d.counts.StaleResets++
				events = append(events, Event{Time: in.Time, Type: EventStaleReset})
			}
		}
	}

	// Override is read last in the tick order. While held it pins the
	// idle counter, so accumulated saccades never go stale under the
	// operator's finger.
	if in.Override {
		d.idle = 0
	}
	return events
}

// EventCount returns the current saccade count.
func (d *Dreamer) EventCount() int {
	return d.events
}

// IdleTicks returns how many ticks have passed without a saccade.
func (d *Dreamer) IdleTicks() int {
	return d.idle
}

// CountsSnapshot returns a copy of the event counts.
func (d *Dreamer) CountsSnapshot() Counts {
	return d.counts
}
