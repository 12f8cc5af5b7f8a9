package render

import (
	"html/template"
	"io"
	"strings"

	"github.com/buildbot-tools/bbinfo/internal/buildbot"
)

// HTML renders reports as a standalone HTML page with one section per
// builder, matching the look of the status mails the tool grew out of.
type HTML struct{}

func (h *HTML) ContentType() string {
	return "text/html; charset=utf-8"
}

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<meta charset=utf-8>
<html>
<head>
<title>Buildbot Info</title>
<style>
body {font-family : Tahoma, Helvetica, sans-serif;}
.outcome {font-variant : small-caps; font-weight : bold;}
.success {background-color : green; color : white;}
.failure {background-color : red; color : white;}
li.build {padding-bottom : 0.333em;}
</style>
</head>
<body>
{{- if .Builders}}
<h1>Builds for {{.Master}}</h1>
{{- range .Builders}}
<div class="builder" id="{{.ID}}">
<h2><a href="{{.URL}}">{{.Name}}</a></h2>
<ul>
{{- range .Builds}}
<li class="build"><span class="outcome {{.StatusClass}}">{{.StatusLabel}}</span> <a href="{{.WebURL}}">Build {{.Number}}</a> on branch {{.Branch}} <a href="{{.RevURL}}">rev {{.Revision}}</a> {{.Completed}}<br></li>
{{- end}}
</ul>
</div>
{{- end}}
{{- end}}
</body>
</html>
`))

type htmlPage struct {
	Master   string
	Builders []htmlBuilder
}

type htmlBuilder struct {
	Name   string
	ID     string
	URL    string
	Builds []htmlBuild
}

type htmlBuild struct {
	StatusClass string
	StatusLabel string
	WebURL      string
	Number      int
	Branch      string
	RevURL      string
	Revision    string
	Completed   string
}

func (h *HTML) Render(w io.Writer, report *Report) error {
	page := htmlPage{Master: report.Master}

	for _, row := range report.Rows {
		if len(page.Builders) == 0 || page.Builders[len(page.Builders)-1].Name != row.Builder {
			page.Builders = append(page.Builders, htmlBuilder{
				Name: row.Builder,
				ID:   anchorID(row.Builder),
				URL:  buildbot.BuilderURL(report.Master, row.Builder),
			})
		}

		current := &page.Builders[len(page.Builders)-1]
		current.Builds = append(current.Builds, htmlBuild{
			StatusClass: strings.ToLower(string(row.Build.Status)),
			StatusLabel: strings.ToUpper(string(row.Build.Status)),
			WebURL:      row.Build.WebURL,
			Number:      row.Build.Number,
			Branch:      row.Build.Branch,
			RevURL:      revisionURL(report.RepoURL, row.Build.Revision),
			Revision:    row.Build.Revision,
			Completed:   completedLabel(row.Build.CompletedAt),
		})
	}

	return htmlTemplate.Execute(w, page)
}

// anchorID turns a builder name into a fragment identifier, lowercased with
// whitespace runs collapsed to dashes.
func anchorID(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}
