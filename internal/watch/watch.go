// Package watch is the live dashboard behind `bbinfo build watch`: the
// current selection rendered to the terminal and refreshed on an interval.
package watch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/buildbot-tools/bbinfo/internal/digest"
	"github.com/buildbot-tools/bbinfo/internal/io"
	"github.com/buildbot-tools/bbinfo/internal/ui"
)

// DefaultInterval is how often the view refreshes when the caller has no
// preference.
const DefaultInterval = 30 * time.Second

// progressBarWidth is the bar segment of the refresh footer.
const progressBarWidth = 10

// tickMsg fires when the next scheduled refresh is due.
type tickMsg time.Time

// progressMsg reports a refresh part-way through its builders.
type progressMsg struct {
	completed int
	total     int
	errored   int
}

// refreshedMsg ends one refresh. Either rows and errored are valid, or err
// holds the failure that kept the builders from being enumerated at all.
type refreshedMsg struct {
	rows    []digest.Row
	errored int
	err     error
	at      time.Time
}

// Model is the dashboard's bubbletea model. Refreshes walk the builders in
// enumeration order in the background, streaming progress through an events
// channel; a builder failing to report is counted and skipped so one flaky
// builder cannot blank the rest of the view.
type Model struct {
	ctx      context.Context
	source   digest.Source
	criteria digest.Criteria
	master   string
	interval time.Duration

	spinner  spinner.Model
	width    int
	events   chan tea.Msg
	rows     []digest.Row
	errored  int
	err      error
	updated  time.Time
	progress progressMsg
	loading  bool
	quitting bool
}

// New builds a dashboard over the given source. The criteria are assumed
// validated. An interval of zero or less means DefaultInterval.
func New(ctx context.Context, master string, src digest.Source, criteria digest.Criteria, interval time.Duration) Model {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return Model{
		ctx:      ctx,
		source:   src,
		criteria: criteria,
		master:   master,
		interval: interval,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Points)),
		events:   make(chan tea.Msg, 8),
		loading:  true,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.refresh(), m.listen())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			if !m.loading {
				m.loading = true
				m.progress = progressMsg{}
				return m, tea.Batch(m.refresh(), m.listen())
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tickMsg:
		if m.loading {
			return m, nil
		}
		m.loading = true
		m.progress = progressMsg{}
		return m, tea.Batch(m.refresh(), m.listen())

	case progressMsg:
		m.progress = msg
		return m, m.listen()

	case refreshedMsg:
		m.loading = false
		if msg.err != nil {
			// Keep showing the rows from the last good refresh.
			m.err = msg.err
		} else {
			m.err = nil
			m.rows = msg.rows
			m.errored = msg.errored
			m.updated = msg.at
		}
		return m, tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
	}

	return m, nil
}

// refresh fetches the selection in the command's own goroutine, streaming
// progress through the events channel. The final refreshedMsg travels the
// same way so the listener armed for the last progress event consumes it.
func (m Model) refresh() tea.Cmd {
	ctx, src, criteria, events := m.ctx, m.source, m.criteria, m.events
	return func() tea.Msg {
		names, err := src.ListBuilders(ctx)
		if err != nil {
			send(ctx, events, refreshedMsg{err: err, at: time.Now()})
			return nil
		}

		matched := make([]string, 0, len(names))
		for _, name := range names {
			if digest.MatchAny(criteria.Patterns, name) {
				matched = append(matched, name)
			}
		}

		cutoff := criteria.CutoffAt(time.Now())
		var rows []digest.Row
		completed, errored := 0, 0
		for _, name := range matched {
			builds, err := src.ListBuilds(ctx, name)
			if err != nil {
				errored++
			} else {
				for _, build := range digest.Winnow(builds, criteria, cutoff) {
					rows = append(rows, digest.Row{Builder: name, Build: build})
				}
			}
			completed++
			if !send(ctx, events, progressMsg{completed: completed, total: len(matched), errored: errored}) {
				return nil
			}
		}

		send(ctx, events, refreshedMsg{rows: rows, errored: errored, at: time.Now()})
		return nil
	}
}

// listen delivers the next background event. It is re-armed per event while
// a refresh runs and left unarmed between refreshes.
func (m Model) listen() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		return <-events
	}
}

func send(ctx context.Context, events chan<- tea.Msg, msg tea.Msg) bool {
	select {
	case events <- msg:
		return true
	case <-ctx.Done():
		return false
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(ui.Title.Render("Watching " + m.master))
	b.WriteString("\n\n")

	switch {
	case len(m.rows) > 0:
		builder := ""
		for _, row := range m.rows {
			if row.Builder != builder {
				if builder != "" {
					b.WriteString("\n")
				}
				builder = row.Builder
				b.WriteString(ui.RenderBuilderHeading(builder))
				b.WriteString("\n")
			}
			b.WriteString(m.fit("  " + ui.RenderBuildLine(row.Build)))
			b.WriteString("\n")
		}
	case !m.updated.IsZero():
		b.WriteString("No builds matched.\n")
	}

	b.WriteString("\n")
	b.WriteString(m.footer())
	b.WriteString("\n")
	return b.String()
}

// fit trims a rendered line to the terminal width. Before the first
// WindowSizeMsg the width is unknown and lines pass through untrimmed.
func (m Model) fit(line string) string {
	if m.width <= 0 {
		return line
	}
	return truncate.StringWithTail(line, uint(m.width), "…")
}

func (m Model) footer() string {
	if m.loading {
		if m.progress.total == 0 {
			return fmt.Sprintf("%s Refreshing", m.spinner.View())
		}
		return fmt.Sprintf("%s Refreshing %s", m.spinner.View(),
			io.FetchProgress(m.progress.completed, m.progress.total, m.progress.errored, progressBarWidth))
	}

	if m.err != nil {
		failed := lipgloss.NewStyle().Foreground(ui.ColorError)
		return failed.Render(fmt.Sprintf("refresh failed: %s", m.err)) +
			ui.Faint.Render(" (r to retry, q to quit)")
	}

	status := fmt.Sprintf("Updated at %s", m.updated.Format("15:04:05"))
	if m.errored > 0 {
		status += fmt.Sprintf(", %d builders not reporting", m.errored)
	}
	return ui.Faint.Render(status + " (q to quit)")
}
