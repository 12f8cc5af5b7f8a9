// Package render turns selected builds into the report formats the CLI and
// the report server expose: plain text, HTML, JSON and email.
//
// Renderers group consecutive rows by builder and never reorder them; the
// selection engine already delivers rows in a stable order.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/buildbot-tools/bbinfo/internal/digest"
	bbErrors "github.com/buildbot-tools/bbinfo/internal/errors"
)

// timestampFormat is how completion times appear in text and HTML reports.
const timestampFormat = "02 Jan 2006 15:04"

// Report is one rendering of selected builds from a single master.
type Report struct {
	// Master is the URL of the master the rows came from. It doubles as the
	// master's display name.
	Master string

	// RepoURL is the repository URL revision links point into. Empty
	// disables revision links.
	RepoURL string

	// GeneratedAt is when the selection ran.
	GeneratedAt time.Time

	// Rows are the selected builds, in selection order.
	Rows []digest.Row
}

// Renderer writes a report in one output format.
type Renderer interface {
	Render(w io.Writer, report *Report) error
	ContentType() string
}

// Formats lists the format names ByFormat accepts.
func Formats() []string {
	return []string{"text", "html", "json"}
}

// ByFormat returns the renderer for a format name. The empty string selects
// the text format.
func ByFormat(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return &Text{}, nil
	case "html":
		return &HTML{}, nil
	case "json":
		return &JSON{}, nil
	default:
		return nil, bbErrors.NewInvalidCriteriaError(nil,
			fmt.Sprintf("unknown output format %q", format),
			fmt.Sprintf("Supported formats are %s", strings.Join(Formats(), ", ")))
	}
}

// completedLabel describes when a build finished, phrased to follow the rest
// of the build line.
func completedLabel(t *time.Time) string {
	if t == nil {
		return "(not completed)"
	}
	return "at " + t.Format(timestampFormat)
}

// revisionURL builds the link target for a revision, or "#" when no
// repository URL is known.
func revisionURL(repoURL, revision string) string {
	if repoURL == "" || revision == "" {
		return "#"
	}
	return strings.TrimRight(repoURL, "/") + "/rev/" + revision
}
