package internal

import (
	"encoding/json"
	"testing"
	"time"

	"clapdream/internal/hw"
	"clapdream/internal/logic"
	"clapdream/internal/loop"
	"clapdream/internal/mqtt"
)

// tickAll drives the loop's per-tick path by hand: read sensor, evaluate
// policy, publish, act — the same ordering loop.Loop enforces.
func tickAll(t *testing.T, n int, sensor *hw.FakeAnalog, policy loop.Policy, actor loop.Actor, pub mqtt.Publisher, period time.Duration) {
	t.Helper()
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		sample, err := sensor.Read()
		if err != nil {
			t.Fatalf("tick %d: sensor read error: %v", i, err)
		}
		events := policy.Tick(logic.Input{Time: start.Add(time.Duration(i) * period), Sample: sample})
		for _, e := range events {
			if err := pub.Publish(e); err != nil {
				t.Fatalf("tick %d: publish error: %v", i, err)
			}
			if err := actor.Act(e); err != nil {
				t.Fatalf("tick %d: act error: %v", i, err)
			}
		}
	}
}

// TestClapperFullFlow runs a double clap through the fakes and verifies
// the relay toggles exactly once and the payloads are well formed.
func TestClapperFullFlow(t *testing.T) {
	// Quiet, clap (+20), decay, quiet, clap (+25), quiet.
	samples := []int{
		100, 100, 100,
		120, // clap 1
		104, 100, 100, 100,
		125, // clap 2
		102, 100, 100,
	}

	sensor := hw.NewFakeAnalog(samples)
	pub := mqtt.NewFakePublisher("clapper")
	relay := hw.NewFakePin()

	seed, err := sensor.Read()
	if err != nil {
		t.Fatal(err)
	}
	policy := logic.NewClapper(logic.ClapperConfig{DetectThreshold: 5, DoubleClapWindow: 100}, seed)
	actor := &loop.ClapperActor{Switch: relay}

	tickAll(t, len(samples)-1, sensor, policy, actor, pub, 4*time.Millisecond)

	if len(pub.Events) != 2 {
		t.Fatalf("expected 2 events, got %d: %v", len(pub.Events), pub.Events)
	}
	if pub.Events[0].Type != logic.EventClap {
		t.Errorf("event 0: got %s, want CLAP", pub.Events[0].Type)
	}
	if pub.Events[1].Type != logic.EventToggleOn {
		t.Errorf("event 1: got %s, want TOGGLE_ON", pub.Events[1].Type)
	}

	if len(relay.Writes) != 1 || !relay.Writes[0] {
		t.Errorf("relay writes: got %v, want [true]", relay.Writes)
	}

	for i, payload := range pub.Payloads {
		var parsed mqtt.Payload
		if err := json.Unmarshal(payload, &parsed); err != nil {
			t.Errorf("payload %d: invalid JSON: %v", i, err)
		}
		if parsed.Sketch.Name != "clapper" {
			t.Errorf("payload %d: name %q", i, parsed.Sketch.Name)
		}
		if parsed.Sketch.Timestamp == "" {
			t.Errorf("payload %d: missing timestamp", i)
		}
	}
}

// TestClapperSecondPairRestoresSwitch applies two double claps and checks
// the relay ends where it began.
func TestClapperSecondPairRestoresSwitch(t *testing.T) {
	samples := []int{
		100,
		120, 100, // pair 1, clap 1
		125, 100, // pair 1, clap 2
		130, 100, // pair 2, clap 1
		128, 100, // pair 2, clap 2
	}

	sensor := hw.NewFakeAnalog(samples)
	pub := mqtt.NewFakePublisher("clapper")
	relay := hw.NewFakePin()

	seed, _ := sensor.Read()
	policy := logic.NewClapper(logic.ClapperConfig{DetectThreshold: 5, DoubleClapWindow: 100}, seed)
	actor := &loop.ClapperActor{Switch: relay}

	tickAll(t, len(samples)-1, sensor, policy, actor, pub, 4*time.Millisecond)

	want := []bool{true, false}
	if len(relay.Writes) != 2 || relay.Writes[0] != want[0] || relay.Writes[1] != want[1] {
		t.Errorf("relay writes: got %v, want %v", relay.Writes, want)
	}
	if relay.State {
		t.Error("relay should end off, where it began")
	}
}

// TestDreamerFullFlow drives twenty saccades through the fakes and
// verifies one stimulus sequence with the emitter power suspended for
// its duration.
func TestDreamerFullFlow(t *testing.T) {
	// Alternate ±40 around the resting level: every tick is a saccade.
	samples := make([]int, 21)
	samples[0] = 500
	for i := 1; i < len(samples); i++ {
		if i%2 == 1 {
			samples[i] = 540
		} else {
			samples[i] = 500
		}
	}

	sensor := hw.NewFakeAnalog(samples)
	pub := mqtt.NewFakePublisher("dreamer")
	ind, stim, emit := hw.NewFakePin(), hw.NewFakePin(), hw.NewFakePin()

	seed, _ := sensor.Read()
	policy := logic.NewDreamer(logic.DreamerConfig{DetectThreshold: 30, EdgeThreshold: 20, ResetTicks: 1200}, seed)
	actor := &loop.DreamerActor{
		Indicator:      ind,
		Stimulus:       stim,
		Emitter:        emit,
		PulseCount:     6,
		PulseOn:        500 * time.Millisecond,
		PulseOff:       500 * time.Millisecond,
		IndicatorPulse: 50 * time.Millisecond,
		Sleep:          func(time.Duration) {},
	}
	if err := actor.Init(); err != nil {
		t.Fatal(err)
	}

	tickAll(t, len(samples)-1, sensor, policy, actor, pub, 250*time.Millisecond)

	saccades, stimuli := 0, 0
	for _, e := range pub.Events {
		switch e.Type {
		case logic.EventSaccade:
			saccades++
		case logic.EventStimulus:
			stimuli++
		}
	}
	if saccades != 20 {
		t.Errorf("saccades: got %d, want 20", saccades)
	}
	if stimuli != 1 {
		t.Errorf("stimuli: got %d, want 1", stimuli)
	}

	// Emitter: on at init, off entering the sequence, on leaving it.
	wantEmit := []bool{true, false, true}
	if len(emit.Writes) != len(wantEmit) {
		t.Fatalf("emitter writes: got %v, want %v", emit.Writes, wantEmit)
	}
	for i, w := range wantEmit {
		if emit.Writes[i] != w {
			t.Errorf("emitter write %d: got %v, want %v", i, emit.Writes[i], w)
		}
	}

	// Init off + 6 pulse cycles.
	if len(stim.Writes) != 13 {
		t.Errorf("stimulus writes: got %d, want 13", len(stim.Writes))
	}

	// Indicator blinked once per saccade.
	if len(ind.Writes) != 1+2*20 {
		t.Errorf("indicator writes: got %d, want %d", len(ind.Writes), 1+2*20)
	}
}

// TestDreamerQuietNightPublishesNothing runs a long quiet stretch and
// verifies no events reach the broker and no outputs move.
func TestDreamerQuietNightPublishesNothing(t *testing.T) {
	sensor := hw.NewFakeAnalog([]int{500})
	pub := mqtt.NewFakePublisher("dreamer")
	ind, stim, emit := hw.NewFakePin(), hw.NewFakePin(), hw.NewFakePin()

	seed, _ := sensor.Read()
	policy := logic.NewDreamer(logic.DreamerConfig{DetectThreshold: 30, EdgeThreshold: 20, ResetTicks: 1200}, seed)
	actor := &loop.DreamerActor{Indicator: ind, Stimulus: stim, Emitter: emit, Sleep: func(time.Duration) {}}

	tickAll(t, 3000, sensor, policy, actor, pub, 250*time.Millisecond)

	if len(pub.Events) != 0 {
		t.Errorf("quiet night published %d events", len(pub.Events))
	}
	if len(ind.Writes) != 0 || len(stim.Writes) != 0 || len(emit.Writes) != 0 {
		t.Error("quiet night moved outputs")
	}
}
