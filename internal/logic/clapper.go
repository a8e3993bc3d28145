package logic

// ClapperConfig holds the clapper's tuning constants.
type ClapperConfig struct {
	// DetectThreshold is the minimum rising sample delta that counts as a clap.
	DetectThreshold int
	// DoubleClapWindow is how many ticks a second clap may trail the first.
	DoubleClapWindow int
}

// Clapper is the double-clap flip-flop switch state machine.
// It is fed one sample per tick and decides when the switched output
// should toggle. Two states: idle and armed (waiting for the confirming
// clap inside the window).
type Clapper struct {
	cfg      ClapperConfig
	prev     int
	armed    bool
	window   int // ticks since arming
	switchOn bool
	counts   Counts
}

// NewClapper creates a clapper seeded with an initial sensor reading, so the
// first real tick compares against a genuine sample instead of zero.
func NewClapper(cfg ClapperConfig, seed int) *Clapper {
	return &Clapper{cfg: cfg, prev: seed}
}

// Tick processes one sample and returns any events to act on.
// A clap is a rising delta only — the mic bias recovering after a spike
// produces a negative delta of similar size, which must not re-trigger.
func (c *Clapper) Tick(in Input) []Event {
	delta := in.Sample - c.prev
	c.prev = in.Sample
	clap := delta >= c.cfg.DetectThreshold

	if !c.armed {
		if !clap {
			return nil
		}
		c.armed = true
		c.window = 0
		c.counts.Claps++
		return []Event{{Time: in.Time, Type: EventClap}}
	}

	// The window advances before the sample is judged, so a clap landing
	// exactly DoubleClapWindow ticks after the first is a new first clap,
	// not a confirmation.
	c.window++
	if c.window >= c.cfg.DoubleClapWindow {
		c.armed = false
		c.counts.Expired++
		events := []Event{{Time: in.Time, Type: EventWindowExpired}}
		if clap {
			c.armed = true
			c.window = 0
			c.counts.Claps++
			events = append(events, Event{Time: in.Time, Type: EventClap})
		}
		return events
	}

	if clap {
		c.armed = false
		c.switchOn = !c.switchOn
		c.counts.Claps++
		c.counts.Toggles++
		typ := EventToggleOff
		if c.switchOn {
			typ = EventToggleOn
		}
		return []Event{{Time: in.Time, Type: typ, Switch: c.switchOn}}
	}
	return nil
}

// Armed reports whether the first clap of a pair has been heard.
func (c *Clapper) Armed() bool {
	return c.armed
}

// SwitchOn returns the current flip-flop output state.
func (c *Clapper) SwitchOn() bool {
	return c.switchOn
}

// WindowTicks returns how many ticks have elapsed since arming.
func (c *Clapper) WindowTicks() int {
	return c.window
}

// CountsSnapshot returns a copy of the event counts.
func (c *Clapper) CountsSnapshot() Counts {
	return c.counts
}
