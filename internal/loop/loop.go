// Package loop runs the shared periodic sampling skeleton both sketches
// hang off: a tick source drives sample → policy → outputs, and the loop
// blocks between ticks. The tick source is a 1-slot channel, so ticks
// that arrive while a slow output sequence is running coalesce into at
// most one pending tick instead of queuing.
package loop

import (
	"log"
	"os"
	"syscall"
	"time"

	"clapdream/internal/hw"
	"clapdream/internal/logic"
	"clapdream/internal/mqtt"
	"clapdream/internal/status"
)

// Policy decides what one tick's sample means. Implementations are pure
// state machines (logic.Clapper, logic.Dreamer).
type Policy interface {
	Tick(logic.Input) []logic.Event
}

// Actor drives hardware outputs for decided events. Act may block (the
// dreamer's stimulus sequence sleeps through its pulse cycles); sampling
// is unavailable for its duration.
type Actor interface {
	Act(logic.Event) error
	Override(held bool) error
}

// Loop wires a sensor, a policy, and an actor together and owns the
// per-tick ordering: read sensor, read override, evaluate policy, publish
// diagnostics, drive outputs, apply override, update status.
type Loop struct {
	Sketch    string
	Sensor    hw.AnalogReader
	Override  hw.InputPin // nil when the sketch has no override input
	Policy    Policy
	Actor     Actor
	Publisher mqtt.Publisher
	Conn      mqtt.ConnectionStatus // may be nil
	Tracker   *status.Tracker       // may be nil

	// UpdateTracker pushes the sketch-specific fields into the tracker
	// after each tick. May be nil.
	UpdateTracker func(tr *status.Tracker, overrideHeld bool)

	Heartbeat time.Duration // 0 disables
	Now       func() time.Time

	lastHeartbeat time.Time
	overrideHeld  bool
}

// Run processes ticks until a signal arrives. Diagnostics publishing is
// advisory throughout: failures are logged and the loop keeps going.
func (l *Loop) Run(tick <-chan time.Time, sig <-chan os.Signal) error {
	now := l.Now
	if now == nil {
		now = time.Now
	}
	l.lastHeartbeat = now()

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			l.publishShutdown(now(), s)
			return nil

		case <-tick:
			l.runTick(now())
		}
	}
}

func (l *Loop) runTick(t time.Time) {
	sample, err := l.Sensor.Read()
	if err != nil {
		log.Printf("sensor read error: %v", err)
		return
	}

	held := false
	if l.Override != nil {
		held, err = l.Override.Get()
		if err != nil {
			// A flaky button must not stall detection. Treat as released.
			log.Printf("override read error: %v", err)
			held = false
		}
	}

	events := l.Policy.Tick(logic.Input{Time: t, Sample: sample, Override: held})

	for _, event := range events {
		log.Printf("%s event: %s", l.Sketch, event.Type)
		if l.Publisher != nil {
			if err := l.Publisher.Publish(event); err != nil {
				log.Printf("publish error: %v", err)
				// Don't crash on publish failure
			}
		}
		if err := l.Actor.Act(event); err != nil {
			log.Printf("output error for %s: %v", event.Type, err)
		}
	}

	// Override forcing is reapplied every held tick, not just on the
	// transition: a stimulus sequence firing mid-hold releases the pins
	// and the next tick must grab them back.
	if held {
		if err := l.Actor.Override(true); err != nil {
			log.Printf("override output error: %v", err)
		}
	} else if l.overrideHeld {
		if err := l.Actor.Override(false); err != nil {
			log.Printf("override release error: %v", err)
		}
	}
	l.overrideHeld = held

	if l.Tracker != nil {
		if l.UpdateTracker != nil {
			l.UpdateTracker(l.Tracker, held)
		}
		if l.Conn != nil {
			l.Tracker.SetMQTTConnected(l.Conn.IsConnected())
		}
	}

	l.checkHeartbeat(t)
}

// checkHeartbeat publishes a periodic system event with a full status
// snapshot, so a silent sketch is distinguishable from a dead one.
func (l *Loop) checkHeartbeat(t time.Time) {
	if l.Heartbeat <= 0 || l.Publisher == nil {
		return
	}
	if t.Sub(l.lastHeartbeat) < l.Heartbeat {
		return
	}
	l.lastHeartbeat = t

	event := mqtt.SystemEvent{Timestamp: t, Event: "HEARTBEAT"}
	if l.Tracker != nil {
		snap := l.Tracker.Snapshot()
		log.Printf("heartbeat: uptime=%v counts=%+v", snap.Uptime().Truncate(time.Second), snap.Counts)
		event.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
	}
	if err := l.Publisher.PublishSystem(event); err != nil {
		log.Printf("heartbeat publish error: %v", err)
	}
}

func (l *Loop) publishShutdown(t time.Time, s os.Signal) {
	if l.Publisher == nil {
		return
	}
	signalName := "UNKNOWN"
	if s == syscall.SIGINT {
		signalName = "SIGINT"
	} else if s == syscall.SIGTERM {
		signalName = "SIGTERM"
	}
	event := mqtt.SystemEvent{
		Timestamp: t,
		Event:     "SHUTDOWN",
		Reason:    signalName,
		Retained:  true,
	}
	if l.Tracker != nil {
		if l.Conn != nil {
			l.Tracker.SetMQTTConnected(l.Conn.IsConnected())
		}
		event.RawPayload = status.FormatStatusEvent(l.Tracker.Snapshot(), "SHUTDOWN", signalName)
	}
	if err := l.Publisher.PublishSystem(event); err != nil {
		log.Printf("failed to publish shutdown event: %v", err)
	} else {
		log.Printf("published shutdown event")
	}
}

// SeedSample reads the sensor until it yields a first sample, so the
// detectors start with a real previous value instead of zero. The bridge
// needs a beat after the port opens before its first line lands.
func SeedSample(sensor hw.AnalogReader, timeout time.Duration, sleep func(time.Duration)) (int, error) {
	if sleep == nil {
		sleep = time.Sleep
	}
	deadline := time.Now().Add(timeout)
	for {
		sample, err := sensor.Read()
		if err == nil {
			return sample, nil
		}
		if err != hw.ErrNoSample || time.Now().After(deadline) {
			return 0, err
		}
		sleep(20 * time.Millisecond)
	}
}
