package report

import (
	"html/template"
	"strings"
)

// The HTML body mirrors the plain rendering; both are derived from the same
// Report value so the section policy lives in one place.
var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"join": func(s []string) string {
		if len(s) == 0 {
			return "-"
		}
		return strings.Join(s, ",")
	},
}).Parse(`<html>
<body style="font-family: sans-serif; max-width: 720px;">
<h2>Reddit engagement queue</h2>
{{if .RoutineNote}}<p><em>{{.RoutineNote}}</em></p>{{end}}
<p>Items collected: <strong>{{.Collected}}</strong>{{if .ArtifactPath}}<br>Saved: <code>{{.ArtifactPath}}</code>{{end}}</p>
{{range .Sections}}
<h3>{{.Title}}</h3>
{{if .Items}}<ol>
{{range .Items}}<li>
  <a href="{{.URL}}">{{.Title}}</a><br>
  <small>[{{.Feed}}] {{.Category}} &middot; prio {{.Priority}} &middot; age {{.AgeHours}}h &middot; {{join .Signals}}</small>
  {{if .Snippet}}<br><small>{{.Snippet}}</small>{{end}}
  {{if .Opener}}<br><small>Opener: {{.Opener}}</small>{{end}}
</li>
{{end}}</ol>{{else}}<p>none</p>{{end}}
{{end}}
{{if not .Collected}}<p>No new items in the selected backfill window.</p>{{end}}
</body>
</html>
`))

func renderHTML(rep Report) (string, error) {
	var sb strings.Builder
	if err := htmlTemplate.Execute(&sb, rep); err != nil {
		return "", err
	}
	return sb.String(), nil
}
