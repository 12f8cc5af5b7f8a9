package digest

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	bbErrors "github.com/buildbot-tools/bbinfo/internal/errors"
)

// DefaultParallelism is how many builder histories Collect fetches at once
// when the caller has no preference.
const DefaultParallelism = 4

// Collect materializes the same selection Select streams, fetching builder
// histories concurrently, at most parallelism at a time. Its output is
// indistinguishable from draining Select against the same source state: rows
// appear in builder enumeration order, and on failure the rows from builders
// that precede the first failing builder in that order are returned together
// with that builder's error. Later builders may still be fetched after a
// failure; their results are discarded.
func Collect(ctx context.Context, src Source, criteria Criteria, parallelism int) ([]Row, error) {
	if parallelism < 1 {
		parallelism = 1
	}

	names, err := src.ListBuilders(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]string, 0, len(names))
	for _, name := range names {
		if MatchAny(criteria.Patterns, name) {
			matched = append(matched, name)
		}
	}

	cutoff := criteria.CutoffAt(time.Now())

	type result struct {
		rows []Row
		err  error
	}
	results := make([]result, len(matched))

	// Workers record outcomes in enumeration-order slots and never return
	// errors themselves: the ordered join below decides which single error
	// surfaces, so a slow builder failing first cannot reorder the outcome.
	var group errgroup.Group
	group.SetLimit(parallelism)
	for i, name := range matched {
		i, name := i, name
		group.Go(func() error {
			builds, err := src.ListBuilds(ctx, name)
			if err != nil {
				results[i].err = bbErrors.ForBuilder(err, name)
				return nil
			}
			for _, build := range winnow(builds, criteria, cutoff) {
				results[i].rows = append(results[i].rows, Row{Builder: name, Build: build})
			}
			return nil
		})
	}
	_ = group.Wait()

	var rows []Row
	for _, res := range results {
		if res.err != nil {
			return rows, res.err
		}
		rows = append(rows, res.rows...)
	}
	return rows, nil
}
