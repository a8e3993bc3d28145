package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	Sketch        string     `json:"sketch"`
	Armed         bool       `json:"armed,omitempty"`
	Switch        string     `json:"switch,omitempty"`
	SaccadeCount  int        `json:"saccade_count,omitempty"`
	IdleTicks     int        `json:"idle_ticks,omitempty"`
	Override      bool       `json:"override,omitempty"`
	Ready         bool       `json:"ready"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Counts        CountsJSON `json:"event_counts"`
	Config        ConfigJSON `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Claps       int `json:"claps"`
	Toggles     int `json:"toggles"`
	Expired     int `json:"expired_windows"`
	Saccades    int `json:"saccades"`
	Stimuli     int `json:"stimuli"`
	StaleResets int `json:"stale_resets"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	TickMs          int64  `json:"tick_ms"`
	DetectThreshold int    `json:"detect_threshold"`
	HeartbeatMs     int64  `json:"heartbeat_ms"`
	Broker          string `json:"broker"`
	HTTPAddr        string `json:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	sw := ""
	if snap.Config.Sketch == "clapper" {
		sw = "OFF"
		if snap.SwitchOn {
			sw = "ON"
		}
	}

	return StatusInner{
		Sketch:        snap.Config.Sketch,
		Armed:         snap.Armed,
		Switch:        sw,
		SaccadeCount:  snap.SaccadeCount,
		IdleTicks:     snap.IdleTicks,
		Override:      snap.OverrideHeld,
		Ready:         snap.Seeded,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Claps:       snap.Counts.Claps,
			Toggles:     snap.Counts.Toggles,
			Expired:     snap.Counts.Expired,
			Saccades:    snap.Counts.Saccades,
			Stimuli:     snap.Counts.Stimuli,
			StaleResets: snap.Counts.StaleResets,
		},
		Config: ConfigJSON{
			TickMs:          snap.Config.TickMs,
			DetectThreshold: snap.Config.DetectThreshold,
			HeartbeatMs:     snap.Config.HeartbeatMs,
			Broker:          snap.Config.Broker,
			HTTPAddr:        snap.Config.HTTPAddr,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
