package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"clapdream/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"onOff": func(b bool) string {
		if b {
			return "ON"
		}
		return "OFF"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>{{.Config.Sketch}}</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>{{.Config.Sketch}}</h1>

<h2>State</h2>
<table>
{{if eq .Config.Sketch "clapper"}}
<tr><th>Switch</th><td class="{{if .SwitchOn}}on{{else}}off{{end}}">{{onOff .SwitchOn}}</td></tr>
<tr><th>Armed</th><td>{{if .Armed}}waiting for second clap{{else}}idle{{end}}</td></tr>
{{else}}
<tr><th>Saccades</th><td>{{.SaccadeCount}}</td></tr>
<tr><th>Idle ticks</th><td>{{.IdleTicks}}</td></tr>
<tr><th>Override</th><td class="{{if .OverrideHeld}}on{{else}}off{{end}}">{{if .OverrideHeld}}held{{else}}released{{end}}</td></tr>
{{end}}
<tr><th>Ready</th><td>{{if .Seeded}}yes{{else}}no{{end}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
</table>

<h2>Event Counts</h2>
<table>
{{if eq .Config.Sketch "clapper"}}
<tr><th>Claps</th><td>{{.Counts.Claps}}</td></tr>
<tr><th>Toggles</th><td>{{.Counts.Toggles}}</td></tr>
<tr><th>Expired windows</th><td>{{.Counts.Expired}}</td></tr>
{{else}}
<tr><th>Saccades</th><td>{{.Counts.Saccades}}</td></tr>
<tr><th>Stimuli</th><td>{{.Counts.Stimuli}}</td></tr>
<tr><th>Stale resets</th><td>{{.Counts.StaleResets}}</td></tr>
{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Tick</th><td>{{.Config.TickMs}}ms</td></tr>
<tr><th>Detect threshold</th><td>{{.Config.DetectThreshold}}</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
