package loop

import (
	"time"

	"clapdream/internal/hw"
	"clapdream/internal/logic"
)

// ClapperActor drives the clapper's single output: the relay switching
// the load. Toggle events carry the new state; everything else is
// diagnostics only.
type ClapperActor struct {
	Switch hw.OutputPin
}

// Act applies a clapper event to the relay.
func (a *ClapperActor) Act(e logic.Event) error {
	switch e.Type {
	case logic.EventToggleOn, logic.EventToggleOff:
		return a.Switch.Set(e.Switch)
	}
	return nil
}

// Override is a no-op: the clapper has no override input.
func (a *ClapperActor) Override(held bool) error {
	return nil
}

// DreamerActor drives the dreamer's outputs: the per-saccade indicator,
// the stimulus LEDs, and the power rail feeding the IR emitter and
// phototransistor.
type DreamerActor struct {
	Indicator hw.OutputPin
	Stimulus  hw.OutputPin
	Emitter   hw.OutputPin

	PulseCount     int
	PulseOn        time.Duration
	PulseOff       time.Duration
	IndicatorPulse time.Duration

	// Sleep is injectable for tests; nil means time.Sleep.
	Sleep func(time.Duration)
}

// Init puts the outputs in their resting state: emitter powered,
// indicator and stimulus dark.
func (a *DreamerActor) Init() error {
	if err := a.Emitter.Set(true); err != nil {
		return err
	}
	if err := a.Indicator.Set(false); err != nil {
		return err
	}
	return a.Stimulus.Set(false)
}

func (a *DreamerActor) sleep(d time.Duration) {
	if a.Sleep != nil {
		a.Sleep(d)
		return
	}
	time.Sleep(d)
}

// Act applies a dreamer event to the outputs. A STIMULUS event blocks for
// the whole pulse sequence; sampling is deliberately unavailable while
// the wearer is being flashed.
func (a *DreamerActor) Act(e logic.Event) error {
	switch e.Type {
	case logic.EventSaccade:
		if err := a.Indicator.Set(true); err != nil {
			return err
		}
		a.sleep(a.IndicatorPulse)
		return a.Indicator.Set(false)

	case logic.EventStimulus:
		return a.runStimulus()
	}
	return nil
}

// runStimulus suspends the sensor/emitter power, runs the configured
// ON/OFF cycles, and restores power. The rail comes back on even if a
// pulse write fails partway.
func (a *DreamerActor) runStimulus() error {
	if err := a.Emitter.Set(false); err != nil {
		return err
	}

	var firstErr error
	for i := 0; i < a.PulseCount; i++ {
		if err := a.Stimulus.Set(true); err != nil && firstErr == nil {
			firstErr = err
		}
		a.sleep(a.PulseOn)
		if err := a.Stimulus.Set(false); err != nil && firstErr == nil {
			firstErr = err
		}
		a.sleep(a.PulseOff)
	}

	if err := a.Emitter.Set(true); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Override forces the stimulus and emitter on while the button is held.
// On release the outputs return to their resting state; the detector's
// view of the world is untouched either way.
func (a *DreamerActor) Override(held bool) error {
	if held {
		if err := a.Emitter.Set(true); err != nil {
			return err
		}
		return a.Stimulus.Set(true)
	}
	if err := a.Stimulus.Set(false); err != nil {
		return err
	}
	return a.Emitter.Set(true)
}
