package buildbot

import (
	"fmt"
	"strings"
)

// Status is the outcome of a build as reported by the master.
type Status string

// Build outcomes a buildbot master reports.
const (
	StatusSuccess   Status = "success"
	StatusWarnings  Status = "warnings"
	StatusFailure   Status = "failure"
	StatusSkipped   Status = "skipped"
	StatusException Status = "exception"
	StatusRetry     Status = "retry"
	StatusCancelled Status = "cancelled"
)

// KnownStatuses returns every outcome a master can report.
func KnownStatuses() []Status {
	return []Status{
		StatusSuccess,
		StatusWarnings,
		StatusFailure,
		StatusSkipped,
		StatusException,
		StatusRetry,
		StatusCancelled,
	}
}

// ParseStatus converts a user-supplied string into a Status. Input is
// case-insensitive. Values decoded off the wire are not parsed with this
// function; they are preserved verbatim so newer masters with unknown
// outcomes still render.
func ParseStatus(s string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range KnownStatuses() {
		if status == known {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown build status %q (valid values: %s)", s, statusList())
}

func statusList() string {
	known := KnownStatuses()
	names := make([]string, len(known))
	for i, s := range known {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// String implements fmt.Stringer.
func (s Status) String() string {
	return string(s)
}
