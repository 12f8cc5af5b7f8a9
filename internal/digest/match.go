package digest

import "github.com/bmatcuk/doublestar/v4"

// MatchAny reports whether the builder name matches at least one of the
// given shell glob patterns (*, ? and [...] wildcards). An empty pattern set
// matches everything. Matching is case-sensitive: patterns must use the same
// casing the master uses for its builder names.
func MatchAny(patterns []string, name string) bool {
	if len(patterns) == 0 {
		return true
	}

	for _, pattern := range patterns {
		// Match only errors on malformed patterns, which Validate rejects
		// up front. A malformed pattern reaching this point matches nothing.
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}
