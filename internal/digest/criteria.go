package digest

import (
	"fmt"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/buildbot-tools/bbinfo/internal/buildbot"
	bbErrors "github.com/buildbot-tools/bbinfo/internal/errors"
)

// DefaultMaxBuilds is how many recent builds are reported per builder when
// the criteria do not say otherwise.
const DefaultMaxBuilds = 1

// Criteria selects which builders and builds a digest covers. A Criteria
// value is immutable once handed to the engine; validate it at the boundary
// that built it, before selection runs.
type Criteria struct {
	// Patterns are shell-style globs matched against builder names. A
	// builder is considered if it matches at least one pattern. Empty means
	// every builder is considered.
	Patterns []string

	// SinceMinutes drops builds that completed more than this many minutes
	// before the selection run, and all builds that never completed. Zero
	// disables the cutoff.
	SinceMinutes int

	// MaxBuilds caps how many of a builder's most recent builds are
	// reported. Must be at least 1.
	MaxBuilds int

	// Statuses, when non-empty, reports a builder only if every one of its
	// selected builds has a status in this set.
	Statuses []buildbot.Status
}

// CutoffAt returns the oldest completion time the criteria still report,
// relative to now. The zero time means no cutoff.
func (c Criteria) CutoffAt(now time.Time) time.Time {
	if c.SinceMinutes <= 0 {
		return time.Time{}
	}
	return now.Add(-time.Duration(c.SinceMinutes) * time.Minute)
}

// Validate checks the criteria for values the engine cannot honor.
func (c Criteria) Validate() error {
	if c.MaxBuilds < 1 {
		return bbErrors.NewInvalidCriteriaError(nil,
			fmt.Sprintf("max builds must be at least 1, got %d", c.MaxBuilds))
	}

	if c.SinceMinutes < 0 {
		return bbErrors.NewInvalidCriteriaError(nil,
			fmt.Sprintf("since minutes cannot be negative, got %d", c.SinceMinutes))
	}

	for _, pattern := range c.Patterns {
		if !doublestar.ValidatePattern(pattern) {
			return bbErrors.NewInvalidCriteriaError(nil,
				fmt.Sprintf("malformed builder pattern %q", pattern),
				"Patterns use shell glob syntax: *, ? and [...]")
		}
	}

	for _, status := range c.Statuses {
		if _, err := buildbot.ParseStatus(string(status)); err != nil {
			return bbErrors.NewInvalidCriteriaError(err, "")
		}
	}

	return nil
}
