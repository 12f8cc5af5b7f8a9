package watch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"

	"github.com/buildbot-tools/bbinfo/internal/buildbot"
	"github.com/buildbot-tools/bbinfo/internal/digest"
)

type fakeSource struct {
	mu       sync.Mutex
	builders []string
	builds   map[string][]buildbot.Build
	failList bool
}

func (s *fakeSource) ListBuilders(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failList {
		return nil, errors.New("master is down")
	}
	return append([]string(nil), s.builders...), nil
}

func (s *fakeSource) ListBuilds(ctx context.Context, name string) ([]buildbot.Build, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	builds, ok := s.builds[name]
	if !ok {
		return nil, errors.New("no such builder")
	}
	return append([]buildbot.Build(nil), builds...), nil
}

func (s *fakeSource) setFailList(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failList = fail
}

func completedBuild(builder string, number int, status buildbot.Status) buildbot.Build {
	started := time.Now().Add(-10 * time.Minute)
	finished := time.Now().Add(-5 * time.Minute)
	return buildbot.Build{
		Builder:     builder,
		Number:      number,
		StartedAt:   &started,
		CompletedAt: &finished,
		Branch:      "trunk",
		Revision:    "abc123",
		Status:      status,
	}
}

func TestWatchOutput(t *testing.T) {
	t.Parallel()

	t.Run("shows the selection and quits on q", func(t *testing.T) {
		t.Parallel()

		src := &fakeSource{
			builders: []string{"trunk-osx"},
			builds: map[string][]buildbot.Build{
				"trunk-osx": {completedBuild("trunk-osx", 99, buildbot.StatusSuccess)},
			},
		}
		model := New(context.Background(), "http://master.example.org", src, digest.Criteria{MaxBuilds: 1}, time.Minute)
		testModel := teatest.NewTestModel(t, model)

		teatest.WaitFor(t, testModel.Output(), func(bts []byte) bool {
			return bytes.Contains(bts, []byte("Watching http://master.example.org")) &&
				bytes.Contains(bts, []byte("trunk-osx")) &&
				bytes.Contains(bts, []byte("Build #99"))
		})

		testModel.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
		testModel.WaitFinished(t, teatest.WithFinalTimeout(time.Second))
	})

	t.Run("keeps the last good view when a refresh fails", func(t *testing.T) {
		t.Parallel()

		src := &fakeSource{
			builders: []string{"trunk-osx"},
			builds: map[string][]buildbot.Build{
				"trunk-osx": {completedBuild("trunk-osx", 99, buildbot.StatusSuccess)},
			},
		}
		model := New(context.Background(), "http://master.example.org", src, digest.Criteria{MaxBuilds: 1}, time.Minute)
		testModel := teatest.NewTestModel(t, model)

		teatest.WaitFor(t, testModel.Output(), func(bts []byte) bool {
			return bytes.Contains(bts, []byte("Updated at"))
		})

		src.setFailList(true)
		testModel.Send(tickMsg(time.Now()))

		teatest.WaitFor(t, testModel.Output(), func(bts []byte) bool {
			return bytes.Contains(bts, []byte("refresh failed: master is down"))
		})

		testModel.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
		testModel.WaitFinished(t, teatest.WithFinalTimeout(time.Second))
	})

	t.Run("counts builders that fail to report", func(t *testing.T) {
		t.Parallel()

		src := &fakeSource{
			builders: []string{"trunk-osx", "gone-builder"},
			builds: map[string][]buildbot.Build{
				"trunk-osx": {completedBuild("trunk-osx", 99, buildbot.StatusSuccess)},
				// gone-builder has no entry, so its fetch errors.
			},
		}
		model := New(context.Background(), "http://master.example.org", src, digest.Criteria{MaxBuilds: 1}, time.Minute)
		testModel := teatest.NewTestModel(t, model)

		teatest.WaitFor(t, testModel.Output(), func(bts []byte) bool {
			return bytes.Contains(bts, []byte("trunk-osx")) &&
				bytes.Contains(bts, []byte("1 builders not reporting"))
		})

		testModel.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
		testModel.WaitFinished(t, teatest.WithFinalTimeout(time.Second))

		out, err := io.ReadAll(testModel.FinalOutput(t))
		if err != nil {
			t.Error(err)
		}
		if bytes.Contains(out, []byte("gone-builder")) {
			t.Error("final output has the failed builder's heading")
		}
	})
}
