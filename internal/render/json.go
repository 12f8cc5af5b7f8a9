package render

import (
	"encoding/json"
	"io"

	"github.com/buildbot-tools/bbinfo/internal/buildbot"
)

// JSON renders reports as an indented JSON array with one element per
// selected build.
type JSON struct{}

func (j *JSON) ContentType() string {
	return "application/json"
}

type jsonRow struct {
	Master  string         `json:"master"`
	Builder string         `json:"builder"`
	Number  int            `json:"number"`
	Build   buildbot.Build `json:"build"`
}

func (j *JSON) Render(w io.Writer, report *Report) error {
	rows := make([]jsonRow, 0, len(report.Rows))
	for _, row := range report.Rows {
		rows = append(rows, jsonRow{
			Master:  report.Master,
			Builder: row.Builder,
			Number:  row.Build.Number,
			Build:   row.Build,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
