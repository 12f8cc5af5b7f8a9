package buildbot

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Build is one entry in a builder's history. Values are built fresh from each
// fetch and never mutated afterwards.
type Build struct {
	// Builder is the name of the builder that ran the build.
	Builder string `json:"builder" yaml:"builder"`

	// Number is the build's ordinal within its builder's history. Higher
	// numbers were started later.
	Number int `json:"number" yaml:"number"`

	// StartedAt is when the build began, nil if the master did not report
	// a start time.
	StartedAt *time.Time `json:"started_at" yaml:"started_at"`

	// CompletedAt is when the build finished. It is nil while the build is
	// still running or if it never completed.
	CompletedAt *time.Time `json:"completed_at" yaml:"completed_at"`

	Branch   string `json:"branch" yaml:"branch"`
	Revision string `json:"revision" yaml:"revision"`

	// Status is the build outcome as reported by the master.
	Status Status `json:"status" yaml:"status"`

	// Summary holds the step summary lines the master attached to the build.
	Summary []string `json:"summary,omitempty" yaml:"summary,omitempty"`

	// Reason is why the build was triggered.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`

	// WebURL is the build's page on the master.
	WebURL string `json:"web_url" yaml:"web_url"`
}

// Completed reports whether the build has finished.
func (b Build) Completed() bool {
	return b.CompletedAt != nil
}

// BuilderURL returns the web page for a builder on the given master.
func BuilderURL(masterURL, name string) string {
	return fmt.Sprintf("%s/all/builders/%s", strings.TrimRight(masterURL, "/"), url.PathEscape(name))
}

// BuildURL returns the web page for a numbered build on the given master.
func BuildURL(masterURL, name string, number int) string {
	return fmt.Sprintf("%s/builds/%d", BuilderURL(masterURL, name), number)
}
