package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Text renders reports in the plain text format suited to terminals, cron
// mail and pipes. An empty report produces no output.
type Text struct{}

func (t *Text) ContentType() string {
	return "text/plain; charset=utf-8"
}

func (t *Text) Render(w io.Writer, report *Report) error {
	if len(report.Rows) == 0 {
		return nil
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "\n%s\n%s\n", report.Master, strings.Repeat("=", len(report.Master)))

	builder := ""
	for _, row := range report.Rows {
		if row.Builder != builder {
			builder = row.Builder
			fmt.Fprintf(&buf, "\n%s\n", builder)
		}
		fmt.Fprintf(&buf, "  [%s] Build %d on branch %s rev %s %s\n",
			strings.ToUpper(string(row.Build.Status)),
			row.Build.Number,
			row.Build.Branch,
			row.Build.Revision,
			completedLabel(row.Build.CompletedAt),
		)
	}

	_, err := w.Write(buf.Bytes())
	return err
}
