// Package digest selects the builds a fleet digest reports: which builders
// to look at, how far back, how many builds per builder, and whether their
// statuses must be uniform. It consumes any Source of builders and builds
// and produces an ordered stream of (builder, build) rows.
package digest

import (
	"context"
	"sort"
	"time"

	"github.com/buildbot-tools/bbinfo/internal/buildbot"
	bbErrors "github.com/buildbot-tools/bbinfo/internal/errors"
)

// Source is the read-only view of a master the selection engine needs.
// *buildbot.Client satisfies it; tests substitute fakes.
type Source interface {
	// ListBuilders enumerates builder names. The enumeration order fixes the
	// cross-builder order of the engine's output.
	ListBuilders(ctx context.Context) ([]string, error)

	// ListBuilds returns a builder's recent history in no particular order.
	ListBuilds(ctx context.Context, name string) ([]buildbot.Build, error)
}

// Row is one selected (builder, build) pair.
type Row struct {
	Builder string
	Build   buildbot.Build
}

// Iterator is a lazy, forward-only walk over selected builds. Builders are
// fetched one at a time as the caller pulls, so stopping early never pays
// for builders that were not reached. Restarting means calling Select again;
// nothing is cached between runs.
type Iterator struct {
	ctx      context.Context
	src      Source
	criteria Criteria
	cutoff   time.Time

	started  bool
	done     bool
	builders []string
	pending  []Row
	row      Row
	err      error
}

// Select runs the selection engine against a source. The recency cutoff is
// fixed here so one run uses one consistent notion of now. The criteria are
// assumed validated; see Criteria.Validate.
func Select(ctx context.Context, src Source, criteria Criteria) *Iterator {
	return &Iterator{ctx: ctx, src: src, criteria: criteria, cutoff: criteria.CutoffAt(time.Now())}
}

// Next advances to the next selected build. It returns false when the
// sequence is exhausted or a fetch failed; Err tells the two apart. Rows
// already returned remain valid after a failure, the run is just incomplete.
func (it *Iterator) Next() bool {
	if it.done {
		return false
	}

	if !it.started {
		it.started = true
		names, err := it.src.ListBuilders(it.ctx)
		if err != nil {
			return it.fail("", err)
		}
		it.builders = names
	}

	for {
		if len(it.pending) > 0 {
			it.row = it.pending[0]
			it.pending = it.pending[1:]
			return true
		}

		if len(it.builders) == 0 {
			it.done = true
			return false
		}

		name := it.builders[0]
		it.builders = it.builders[1:]

		// Builders matching no pattern are skipped without fetching their
		// builds.
		if !MatchAny(it.criteria.Patterns, name) {
			continue
		}

		builds, err := it.src.ListBuilds(it.ctx, name)
		if err != nil {
			return it.fail(name, err)
		}

		for _, build := range winnow(builds, it.criteria, it.cutoff) {
			it.pending = append(it.pending, Row{Builder: name, Build: build})
		}
	}
}

// Row returns the current pair. It is only valid after Next returned true.
func (it *Iterator) Row() Row {
	return it.row
}

// Err returns the error that terminated the walk, tagged with the builder in
// progress when the fault happened, or nil after a clean exhaustion.
func (it *Iterator) Err() error {
	return it.err
}

func (it *Iterator) fail(builder string, err error) bool {
	it.done = true
	if builder != "" {
		err = bbErrors.ForBuilder(err, builder)
	}
	it.err = err
	return false
}

// Winnow applies the per-builder selection steps to one fetched history, for
// callers that drive their own fetch loop (the live watch view does). The
// cutoff is the oldest completion time still reported, usually from
// Criteria.CutoffAt; the zero time disables it. See Select for the engine
// that does the walking itself.
func Winnow(builds []buildbot.Build, criteria Criteria, cutoff time.Time) []buildbot.Build {
	return winnow(builds, criteria, cutoff)
}

// winnow applies the per-builder selection steps to one fetched history:
// order most-recent-first, drop builds outside the recency cutoff, keep at
// most maxBuilds, then require status uniformity across what is left. It
// returns nil when the builder contributes nothing.
func winnow(builds []buildbot.Build, criteria Criteria, cutoff time.Time) []buildbot.Build {
	ordered := make([]buildbot.Build, len(builds))
	copy(ordered, builds)

	// The source's order is unspecified, normalize before taking "latest N".
	sort.SliceStable(ordered, func(i, j int) bool {
		return moreRecent(ordered[i], ordered[j])
	})

	// Recency runs before count limiting: the cutoff decides which builds
	// are candidates at all, the count then caps the survivors. Builds that
	// never completed have nothing to compare and are always dropped here.
	if !cutoff.IsZero() {
		kept := ordered[:0]
		for _, build := range ordered {
			if build.CompletedAt != nil && !build.CompletedAt.Before(cutoff) {
				kept = append(kept, build)
			}
		}
		ordered = kept
	}

	if len(ordered) > criteria.MaxBuilds {
		ordered = ordered[:criteria.MaxBuilds]
	}

	if len(ordered) == 0 {
		return nil
	}

	// All or nothing: one off-set status excludes the whole builder.
	if len(criteria.Statuses) > 0 {
		for _, build := range ordered {
			if !statusIn(build.Status, criteria.Statuses) {
				return nil
			}
		}
	}

	return ordered
}

// moreRecent reports whether a comes before b in most-recent-first order.
// Builds that have not completed order as newest; completion-time ties break
// on the builder's own ordinals, higher (later) first.
func moreRecent(a, b buildbot.Build) bool {
	switch {
	case a.CompletedAt == nil && b.CompletedAt == nil:
		return a.Number > b.Number
	case a.CompletedAt == nil:
		return true
	case b.CompletedAt == nil:
		return false
	case a.CompletedAt.Equal(*b.CompletedAt):
		return a.Number > b.Number
	default:
		return a.CompletedAt.After(*b.CompletedAt)
	}
}

func statusIn(status buildbot.Status, set []buildbot.Status) bool {
	for _, s := range set {
		if status == s {
			return true
		}
	}
	return false
}
