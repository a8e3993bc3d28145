// Package mqtt provides the diagnostics channel for the sketches.
// Publishing is advisory: failures are logged by callers and never gate
// the sampling loop.
package mqtt

import (
	"encoding/json"
	"time"

	"clapdream/internal/logic"
)

// EventsTopic returns the MQTT topic for a sketch's detection events.
func EventsTopic(sketch string) string {
	return "hobby/" + sketch + "/events"
}

// SystemTopic returns the MQTT topic for a sketch's lifecycle events.
func SystemTopic(sketch string) string {
	return "hobby/" + sketch + "/system"
}

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a detection event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Sketch SketchPayload `json:"sketch"`
}

// SketchPayload contains the detection event details.
type SketchPayload struct {
	Name         string `json:"name"`
	Timestamp    string `json:"timestamp"`
	Event        string `json:"event"`
	Switch       string `json:"switch,omitempty"`        // ON/OFF after a clapper toggle
	SaccadeCount *int   `json:"saccade_count,omitempty"` // dreamer saccade count after the event
}

// FormatPayload creates the JSON payload for a detection event.
func FormatPayload(sketch string, event logic.Event) ([]byte, error) {
	p := Payload{
		Sketch: SketchPayload{
			Name:      sketch,
			Timestamp: event.Time.UTC().Format(time.RFC3339),
			Event:     string(event.Type),
		},
	}
	switch event.Type {
	case logic.EventToggleOn, logic.EventToggleOff:
		p.Sketch.Switch = "OFF"
		if event.Switch {
			p.Sketch.Switch = "ON"
		}
	case logic.EventSaccade, logic.EventStimulus:
		count := event.EventCount
		p.Sketch.SaccadeCount = &count
	}
	return json.Marshal(p)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
