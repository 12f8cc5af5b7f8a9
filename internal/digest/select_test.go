package digest_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/buildbot-tools/bbinfo/internal/buildbot"
	"github.com/buildbot-tools/bbinfo/internal/digest"
	bbErrors "github.com/buildbot-tools/bbinfo/internal/errors"
)

// fakeSource serves canned builder histories in a fixed enumeration order
// and records which builders were actually fetched. Collect fetches
// concurrently, so the record is guarded.
type fakeSource struct {
	order   []string
	builds  map[string][]buildbot.Build
	failOn  string
	listErr error

	mu      sync.Mutex
	fetched []string
}

func (s *fakeSource) ListBuilders(ctx context.Context) ([]string, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.order, nil
}

func (s *fakeSource) ListBuilds(ctx context.Context, name string) ([]buildbot.Build, error) {
	s.mu.Lock()
	s.fetched = append(s.fetched, name)
	s.mu.Unlock()

	if name == s.failOn {
		return nil, errors.New("connection reset")
	}
	return s.builds[name], nil
}

func (s *fakeSource) fetchedBuilders() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.fetched)
}

var fixtureBase = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// completed builds a finished build whose completion time is the fixture
// base plus the given number of minutes.
func completed(number, minute int, status buildbot.Status) buildbot.Build {
	at := fixtureBase.Add(time.Duration(minute) * time.Minute)
	return buildbot.Build{Number: number, CompletedAt: &at, Status: status}
}

// running builds a build that has not completed.
func running(number int, status buildbot.Status) buildbot.Build {
	return buildbot.Build{Number: number, Status: status}
}

func drain(t *testing.T, it *digest.Iterator) []digest.Row {
	t.Helper()
	var rows []digest.Row
	for it.Next() {
		rows = append(rows, it.Row())
	}
	return rows
}

func TestSelect(t *testing.T) {
	t.Parallel()

	t.Run("empty patterns consider every builder", func(t *testing.T) {
		t.Parallel()

		src := &fakeSource{
			order: []string{"A", "B", "C"},
			builds: map[string][]buildbot.Build{
				"A": {completed(1, 10, buildbot.StatusSuccess)},
				"B": {completed(7, 20, buildbot.StatusFailure)},
				"C": {completed(3, 30, buildbot.StatusWarnings)},
			},
		}

		it := digest.Select(context.Background(), src, digest.Criteria{MaxBuilds: 1})
		rows := drain(t, it)
		if err := it.Err(); err != nil {
			t.Fatal(err)
		}

		if len(rows) != 3 {
			t.Fatalf("got %d rows, want 3", len(rows))
		}
		for i, want := range []string{"A", "B", "C"} {
			if rows[i].Builder != want {
				t.Errorf("row %d from builder %q, want %q", i, rows[i].Builder, want)
			}
		}
	})

	t.Run("all failing builder is reported, mixed builder is not", func(t *testing.T) {
		t.Parallel()

		src := &fakeSource{
			order: []string{"A", "B"},
			builds: map[string][]buildbot.Build{
				"A": {completed(2, 10, buildbot.StatusSuccess), completed(1, 9, buildbot.StatusFailure)},
				"B": {completed(2, 10, buildbot.StatusFailure), completed(1, 9, buildbot.StatusFailure)},
			},
		}

		it := digest.Select(context.Background(), src, digest.Criteria{
			MaxBuilds: 2,
			Statuses:  []buildbot.Status{buildbot.StatusFailure},
		})
		rows := drain(t, it)
		if err := it.Err(); err != nil {
			t.Fatal(err)
		}

		if len(rows) != 2 {
			t.Fatalf("got %d rows, want 2", len(rows))
		}
		for _, row := range rows {
			if row.Builder != "B" {
				t.Errorf("got row from builder %q, want all rows from B", row.Builder)
			}
		}
		if rows[0].Build.Number != 2 || rows[1].Build.Number != 1 {
			t.Errorf("got builds %d, %d, want most recent first: 2, 1",
				rows[0].Build.Number, rows[1].Build.Number)
		}
	})

	t.Run("patterns exclude non-matching builders without fetching them", func(t *testing.T) {
		t.Parallel()

		src := &fakeSource{
			order: []string{"Win10-x64", "Linux-x64"},
			builds: map[string][]buildbot.Build{
				"Win10-x64": {completed(5, 10, buildbot.StatusSuccess), completed(4, 9, buildbot.StatusSuccess)},
				"Linux-x64": {completed(5, 10, buildbot.StatusSuccess)},
			},
		}

		it := digest.Select(context.Background(), src, digest.Criteria{
			Patterns:  []string{"*Win*"},
			MaxBuilds: 1,
		})
		rows := drain(t, it)
		if err := it.Err(); err != nil {
			t.Fatal(err)
		}

		if len(rows) != 1 {
			t.Fatalf("got %d rows, want 1", len(rows))
		}
		if rows[0].Builder != "Win10-x64" || rows[0].Build.Number != 5 {
			t.Errorf("got %s build %d, want Win10-x64 build 5", rows[0].Builder, rows[0].Build.Number)
		}
		if slices.Contains(src.fetchedBuilders(), "Linux-x64") {
			t.Error("Linux-x64 was fetched despite matching no pattern")
		}
	})

	t.Run("recency cutoff drops old and unfinished builds", func(t *testing.T) {
		t.Parallel()

		old := time.Now().Add(-2000 * time.Minute)
		fresh := time.Now().Add(-10 * time.Minute)
		src := &fakeSource{
			order: []string{"stale", "active"},
			builds: map[string][]buildbot.Build{
				"stale": {{Number: 9, CompletedAt: &old, Status: buildbot.StatusFailure}},
				"active": {
					{Number: 12, Status: buildbot.StatusRetry},
					{Number: 11, CompletedAt: &fresh, Status: buildbot.StatusSuccess},
					{Number: 10, CompletedAt: &old, Status: buildbot.StatusSuccess},
				},
			},
		}

		it := digest.Select(context.Background(), src, digest.Criteria{
			SinceMinutes: 1440,
			MaxBuilds:    5,
		})
		rows := drain(t, it)
		if err := it.Err(); err != nil {
			t.Fatal(err)
		}

		if len(rows) != 1 {
			t.Fatalf("got %d rows, want 1", len(rows))
		}
		if rows[0].Builder != "active" || rows[0].Build.Number != 11 {
			t.Errorf("got %s build %d, want active build 11", rows[0].Builder, rows[0].Build.Number)
		}
	})

	t.Run("recency filtering happens before count limiting", func(t *testing.T) {
		t.Parallel()

		old := time.Now().Add(-3 * time.Hour)
		fresh := time.Now().Add(-5 * time.Minute)
		// The newest build never completed, so the cutoff removes it before
		// the count limit is applied and build 2 takes the single slot.
		src := &fakeSource{
			order: []string{"flaky"},
			builds: map[string][]buildbot.Build{
				"flaky": {
					{Number: 3, Status: buildbot.StatusException},
					{Number: 2, CompletedAt: &fresh, Status: buildbot.StatusFailure},
					{Number: 1, CompletedAt: &old, Status: buildbot.StatusSuccess},
				},
			},
		}

		it := digest.Select(context.Background(), src, digest.Criteria{
			SinceMinutes: 60,
			MaxBuilds:    1,
		})
		rows := drain(t, it)
		if err := it.Err(); err != nil {
			t.Fatal(err)
		}

		if len(rows) != 1 || rows[0].Build.Number != 2 {
			t.Fatalf("got %+v, want exactly build 2", rows)
		}
	})

	t.Run("source order is normalized before taking latest", func(t *testing.T) {
		t.Parallel()

		// Oldest first from the source; the engine must not trust it.
		src := &fakeSource{
			order: []string{"builder"},
			builds: map[string][]buildbot.Build{
				"builder": {
					completed(1, 1, buildbot.StatusSuccess),
					completed(2, 2, buildbot.StatusWarnings),
					completed(3, 3, buildbot.StatusFailure),
				},
			},
		}

		it := digest.Select(context.Background(), src, digest.Criteria{MaxBuilds: 2})
		rows := drain(t, it)
		if err := it.Err(); err != nil {
			t.Fatal(err)
		}

		if len(rows) != 2 {
			t.Fatalf("got %d rows, want 2", len(rows))
		}
		if rows[0].Build.Number != 3 || rows[1].Build.Number != 2 {
			t.Errorf("got builds %d, %d, want 3, 2", rows[0].Build.Number, rows[1].Build.Number)
		}
	})

	t.Run("completion ties break on ordinal, unfinished builds sort newest", func(t *testing.T) {
		t.Parallel()

		src := &fakeSource{
			order: []string{"builder"},
			builds: map[string][]buildbot.Build{
				"builder": {
					completed(4, 10, buildbot.StatusSuccess),
					completed(6, 10, buildbot.StatusFailure),
					running(7, buildbot.StatusRetry),
					completed(5, 10, buildbot.StatusWarnings),
				},
			},
		}

		it := digest.Select(context.Background(), src, digest.Criteria{MaxBuilds: 4})
		rows := drain(t, it)
		if err := it.Err(); err != nil {
			t.Fatal(err)
		}

		var got []int
		for _, row := range rows {
			got = append(got, row.Build.Number)
		}
		want := []int{7, 6, 5, 4}
		if !slices.Equal(got, want) {
			t.Errorf("got order %v, want %v", got, want)
		}
	})

	t.Run("builder with no builds contributes nothing", func(t *testing.T) {
		t.Parallel()

		src := &fakeSource{
			order: []string{"empty", "busy"},
			builds: map[string][]buildbot.Build{
				"empty": {},
				"busy":  {completed(1, 1, buildbot.StatusSuccess)},
			},
		}

		it := digest.Select(context.Background(), src, digest.Criteria{MaxBuilds: 1})
		rows := drain(t, it)
		if err := it.Err(); err != nil {
			t.Fatal(err)
		}

		if len(rows) != 1 || rows[0].Builder != "busy" {
			t.Fatalf("got %+v, want a single row from busy", rows)
		}
	})

	t.Run("pulling lazily fetches no further than needed", func(t *testing.T) {
		t.Parallel()

		src := &fakeSource{
			order: []string{"first", "second", "third"},
			builds: map[string][]buildbot.Build{
				"first":  {completed(1, 1, buildbot.StatusSuccess)},
				"second": {completed(1, 1, buildbot.StatusSuccess)},
				"third":  {completed(1, 1, buildbot.StatusSuccess)},
			},
		}

		it := digest.Select(context.Background(), src, digest.Criteria{MaxBuilds: 1})
		if !it.Next() {
			t.Fatalf("Next returned false, err: %v", it.Err())
		}

		if got := src.fetchedBuilders(); len(got) != 1 || got[0] != "first" {
			t.Errorf("fetched %v after one pull, want only first", got)
		}
	})

	t.Run("identical runs yield identical output", func(t *testing.T) {
		t.Parallel()

		src := &fakeSource{
			order: []string{"B", "A"},
			builds: map[string][]buildbot.Build{
				"A": {completed(2, 5, buildbot.StatusFailure), completed(1, 7, buildbot.StatusSuccess)},
				"B": {completed(4, 6, buildbot.StatusWarnings), completed(3, 8, buildbot.StatusFailure)},
			},
		}
		criteria := digest.Criteria{MaxBuilds: 2}

		first := drain(t, digest.Select(context.Background(), src, criteria))
		second := drain(t, digest.Select(context.Background(), src, criteria))

		if !slices.EqualFunc(first, second, func(a, b digest.Row) bool {
			return a.Builder == b.Builder && a.Build.Number == b.Build.Number
		}) {
			t.Errorf("runs differ: %+v vs %+v", first, second)
		}
	})

	t.Run("fetch failure propagates tagged with the builder", func(t *testing.T) {
		t.Parallel()

		src := &fakeSource{
			order:  []string{"good", "bad", "never"},
			failOn: "bad",
			builds: map[string][]buildbot.Build{
				"good":  {completed(1, 1, buildbot.StatusSuccess)},
				"never": {completed(1, 1, buildbot.StatusSuccess)},
			},
		}

		it := digest.Select(context.Background(), src, digest.Criteria{MaxBuilds: 1})
		rows := drain(t, it)

		if len(rows) != 1 || rows[0].Builder != "good" {
			t.Fatalf("got rows %+v, want the single row from good", rows)
		}
		err := it.Err()
		if err == nil {
			t.Fatal("expected an error after the failing builder")
		}
		if got := bbErrors.BuilderName(err); got != "bad" {
			t.Errorf("error tagged with builder %q, want %q", got, "bad")
		}
		if slices.Contains(src.fetchedBuilders(), "never") {
			t.Error("builders after the failure were still fetched")
		}
		if it.Next() {
			t.Error("Next returned true after a failure")
		}
	})

	t.Run("builder enumeration failure propagates", func(t *testing.T) {
		t.Parallel()

		src := &fakeSource{listErr: errors.New("no route to host")}

		it := digest.Select(context.Background(), src, digest.Criteria{MaxBuilds: 1})
		if it.Next() {
			t.Fatal("Next returned true with an unreachable source")
		}
		if it.Err() == nil {
			t.Fatal("expected enumeration error")
		}
	})
}
