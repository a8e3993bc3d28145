// Package status provides a thread-safe status tracker for the sketch
// daemons. It is read by the HTTP status page and embedded in MQTT
// lifecycle events.
package status

import (
	"sync"
	"time"

	"clapdream/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	Sketch          string
	TickMs          int64
	DetectThreshold int
	HeartbeatMs     int64
	Broker          string
	HTTPAddr        string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
// Armed/SwitchOn are meaningful for the clapper, SaccadeCount/IdleTicks/
// OverrideHeld for the dreamer; the other sketch's fields stay zero.
type Snapshot struct {
	Armed         bool
	SwitchOn      bool
	SaccadeCount  int
	IdleTicks     int
	OverrideHeld  bool
	Seeded        bool // initial sensor reading obtained
	Counts        logic.Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// UpdateClapper sets the clapper state. Called from the loop on every tick.
func (t *Tracker) UpdateClapper(armed, switchOn bool, counts logic.Counts) {
	t.mu.Lock()
	t.snap.Armed = armed
	t.snap.SwitchOn = switchOn
	t.snap.Seeded = true
	t.snap.Counts = counts
	t.mu.Unlock()
}

// UpdateDreamer sets the dreamer state. Called from the loop on every tick.
func (t *Tracker) UpdateDreamer(saccades, idle int, override bool, counts logic.Counts) {
	t.mu.Lock()
	t.snap.SaccadeCount = saccades
	t.snap.IdleTicks = idle
	t.snap.OverrideHeld = override
	t.snap.Seeded = true
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
