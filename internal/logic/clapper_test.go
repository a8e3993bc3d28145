package logic

import (
	"testing"
	"time"
)

var clapperCfg = ClapperConfig{DetectThreshold: 5, DoubleClapWindow: 100}

// tickDeltas feeds a sequence of deltas to the clapper by synthesizing
// absolute samples, collecting all emitted events.
func tickDeltas(c *Clapper, deltas []int) []Event {
	var events []Event
	sample := c.prev
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, d := range deltas {
		sample += d
		evs := c.Tick(Input{Time: now.Add(time.Duration(i) * 4 * time.Millisecond), Sample: sample})
		events = append(events, evs...)
	}
	return events
}

func TestNewClapperSeed(t *testing.T) {
	c := NewClapper(clapperCfg, 512)
	if c.Armed() {
		t.Error("new clapper should start idle")
	}
	if c.SwitchOn() {
		t.Error("new clapper switch should start off")
	}

	// First tick repeating the seed value is a zero delta: no event.
	events := c.Tick(Input{Sample: 512})
	if len(events) != 0 {
		t.Errorf("expected no events on zero delta, got %d", len(events))
	}
}

func TestSingleClapArms(t *testing.T) {
	c := NewClapper(clapperCfg, 100)
	events := c.Tick(Input{Sample: 106}) // delta 6 >= 5
	if len(events) != 1 || events[0].Type != EventClap {
		t.Fatalf("expected CLAP, got %v", events)
	}
	if !c.Armed() {
		t.Error("should be armed after first clap")
	}
	if c.WindowTicks() != 0 {
		t.Errorf("window should reset to 0 on arming, got %d", c.WindowTicks())
	}
	if c.SwitchOn() {
		t.Error("single clap must not toggle")
	}
}

func TestRisingDeltaOnly(t *testing.T) {
	c := NewClapper(clapperCfg, 200)
	// A falling delta of any size is not a clap.
	events := c.Tick(Input{Sample: 100})
	if len(events) != 0 {
		t.Errorf("falling delta should not arm, got %v", events)
	}
	if c.Armed() {
		t.Error("falling delta armed the clapper")
	}
}

// TestDoubleClapScenario is the concrete sequence from the bench notes:
// delta 6, then 50 quiet ticks, then delta 7 — a single toggle.
func TestDoubleClapScenario(t *testing.T) {
	c := NewClapper(clapperCfg, 300)

	deltas := []int{0, 0, 6}
	events := tickDeltas(c, deltas)
	if len(events) != 1 || events[0].Type != EventClap {
		t.Fatalf("expected CLAP after delta 6, got %v", events)
	}
	if !c.Armed() || c.WindowTicks() != 0 {
		t.Fatalf("after first clap: armed=%v window=%d, want armed window=0", c.Armed(), c.WindowTicks())
	}

	quiet := make([]int, 50)
	events = tickDeltas(c, quiet)
	if len(events) != 0 {
		t.Fatalf("quiet ticks emitted events: %v", events)
	}
	if !c.Armed() || c.WindowTicks() != 50 {
		t.Fatalf("after 50 quiet ticks: armed=%v window=%d, want armed window=50", c.Armed(), c.WindowTicks())
	}

	events = tickDeltas(c, []int{7})
	if len(events) != 1 || events[0].Type != EventToggleOn {
		t.Fatalf("expected TOGGLE_ON after confirming clap, got %v", events)
	}
	if c.Armed() {
		t.Error("should be idle after toggle")
	}
	if !c.SwitchOn() {
		t.Error("switch should be on after first toggle")
	}
}

func TestWindowExpiryNoToggle(t *testing.T) {
	c := NewClapper(clapperCfg, 300)

	tickDeltas(c, []int{6}) // arm

	// 99 quiet ticks keep it armed, the 100th expires the window.
	events := tickDeltas(c, make([]int, 99))
	if len(events) != 0 {
		t.Fatalf("expected no events before window expiry, got %v", events)
	}
	if !c.Armed() {
		t.Fatal("should still be armed one tick before expiry")
	}

	events = tickDeltas(c, []int{0})
	if len(events) != 1 || events[0].Type != EventWindowExpired {
		t.Fatalf("expected WINDOW_EXPIRED, got %v", events)
	}
	if c.Armed() {
		t.Error("should be idle after expiry")
	}
	if c.SwitchOn() {
		t.Error("expired window must not toggle")
	}

	// A clap after expiry starts a fresh pair, it does not confirm the old one.
	events = tickDeltas(c, []int{6})
	if len(events) != 1 || events[0].Type != EventClap {
		t.Fatalf("expected fresh CLAP after expiry, got %v", events)
	}
	if c.SwitchOn() {
		t.Error("switch toggled on what should be a first clap")
	}
}

// TestToggleIsInvolution verifies that applying the double-clap sequence
// twice returns the switch to its original state.
func TestToggleIsInvolution(t *testing.T) {
	c := NewClapper(clapperCfg, 400)

	pair := []int{6, 0, 0, 7}
	tickDeltas(c, pair)
	if !c.SwitchOn() {
		t.Fatal("switch should be on after first pair")
	}
	events := tickDeltas(c, pair)
	if c.SwitchOn() {
		t.Error("switch should be off after second pair")
	}
	found := false
	for _, e := range events {
		if e.Type == EventToggleOff {
			found = true
			if e.Switch {
				t.Error("TOGGLE_OFF event should carry Switch=false")
			}
		}
	}
	if !found {
		t.Error("second pair did not emit TOGGLE_OFF")
	}
}

func TestToggleExactlyOncePerPair(t *testing.T) {
	c := NewClapper(clapperCfg, 250)

	toggles := 0
	for _, e := range tickDeltas(c, []int{6, 0, 7, 0, 0}) {
		if e.Type == EventToggleOn || e.Type == EventToggleOff {
			toggles++
		}
	}
	if toggles != 1 {
		t.Errorf("expected exactly 1 toggle, got %d", toggles)
	}

	counts := c.CountsSnapshot()
	if counts.Claps != 2 {
		t.Errorf("expected 2 claps counted, got %d", counts.Claps)
	}
	if counts.Toggles != 1 {
		t.Errorf("expected 1 toggle counted, got %d", counts.Toggles)
	}
}

func TestClapOnExpiryTickStartsNewPair(t *testing.T) {
	c := NewClapper(clapperCfg, 250)

	// 99 quiet ticks, then a clap landing on the very tick the window
	// closes: the expiry wins and the clap arms a fresh pair.
	deltas := []int{6}
	deltas = append(deltas, make([]int, 99)...)
	deltas = append(deltas, 7)
	events := tickDeltas(c, deltas)

	var types []EventType
	for _, e := range events {
		types = append(types, e.Type)
	}
	if len(types) != 3 || types[1] != EventWindowExpired || types[2] != EventClap {
		t.Fatalf("expected CLAP, WINDOW_EXPIRED, CLAP, got %v", types)
	}
	if c.SwitchOn() {
		t.Error("boundary clap must not toggle")
	}
	if !c.Armed() || c.WindowTicks() != 0 {
		t.Errorf("boundary clap should re-arm with a fresh window, armed=%v window=%d", c.Armed(), c.WindowTicks())
	}
}

func TestEventsSeparatedByFullWindowDoNotToggle(t *testing.T) {
	c := NewClapper(clapperCfg, 250)

	// Second clap arrives exactly at the window bound: the window expires
	// on the 100th quiet tick, so tick 101's clap starts a new pair.
	deltas := []int{6}
	deltas = append(deltas, make([]int, 100)...)
	deltas = append(deltas, 7)
	events := tickDeltas(c, deltas)

	for _, e := range events {
		if e.Type == EventToggleOn || e.Type == EventToggleOff {
			t.Fatalf("claps %d ticks apart must not toggle", 101)
		}
	}
	if !c.Armed() {
		t.Error("late clap should have re-armed")
	}
}
