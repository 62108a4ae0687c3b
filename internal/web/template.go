package web

import (
	"fmt"
	"html/template"
	"io"
	"math"
	"time"
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
	"ago": func(now, t time.Time) string {
		d := now.Sub(t).Truncate(time.Second)
		if d < 0 {
			d = 0
		}
		return d.String() + " ago"
	},
	"pct": func(f float64) string {
		return fmt.Sprintf("%d%%", int(math.Round(f*100)))
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Desk Monitor</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.alert { color: red; font-weight: bold; }
.ok { color: green; }
.unset { color: orange; }
.age { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Desk Monitor</h1>

<h2>Sensor</h2>
<table>
{{if .HasSensor}}<tr><th>CO2</th><td>{{.Sensor.CO2}} ppm</td></tr>
<tr><th>Temperature</th><td>{{printf "%.1f" .Sensor.Temperature}} C</td></tr>
<tr><th>Humidity</th><td>{{printf "%.1f" .Sensor.Humidity}} %</td></tr>
<tr><th>Updated</th><td class="age">{{ago .Now .Sensor.At}}</td></tr>
{{else}}<tr><th>Reading</th><td class="unset">none yet</td></tr>
{{end}}</table>

{{if .Subs}}<h2>Values</h2>
<table>
{{range .Subs}}<tr><th>{{.Label}}</th><td>{{if .Set}}{{.Value.Text}}{{with .Unit}} {{.}}{{end}} <span class="age">({{ago $.Now .At}})</span>{{else}}<span class="unset">waiting for data</span>{{end}}</td></tr>
{{end}}</table>
{{end}}
<h2>Alert</h2>
<table>
{{with .Alert}}<tr><th>Active</th><td class="alert">{{.Source}} {{.Cond}}</td></tr>
<tr><th>Priority</th><td>{{.Priority}}</td></tr>
<tr><th>LED</th><td>{{.Waveform.Mode}}</td></tr>
{{else}}<tr><th>Active</th><td class="ok">none</td></tr>
{{end}}</table>

<h2>Display</h2>
<table>
<tr><th>Screen</th><td>{{.ScreenName}}</td></tr>
<tr><th>Index</th><td>{{.Screen}} of {{.ScreenCount}}</td></tr>
<tr><th>Backlight</th><td>{{pct .DisplayBrightness}}</td></tr>
<tr><th>LED brightness</th><td>{{pct .LEDBrightness}}{{if not .LEDOverride}} (default){{end}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Broker}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.Started.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
</table>

<p><a href="/status.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, v view) {
	indexTmpl.Execute(w, v)
}
