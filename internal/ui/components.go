package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/buildbot-tools/bbinfo/internal/buildbot"
)

// RenderBuildNumber formats a build number with status-appropriate styling
func RenderBuildNumber(status buildbot.Status, number int) string {
	style := StatusStyle(status)
	return style.Render(fmt.Sprintf("Build #%d", number))
}

// RenderBuildLine renders one build as a single line for live views
func RenderBuildLine(b buildbot.Build) string {
	parts := []string{
		RenderStatus(b.Status),
		RenderBuildNumber(b.Status, b.Number),
		fmt.Sprintf("on branch %s rev %s", b.Branch, b.Revision),
		Faint.Render(FormatCompletion(b.CompletedAt)),
	}

	if b.StartedAt != nil && b.CompletedAt != nil {
		duration := b.CompletedAt.Sub(*b.StartedAt)
		if duration > 0 {
			parts = append(parts, Faint.Render("("+FormatDuration(duration)+")"))
		}
	}

	if summary := strings.Join(b.Summary, " "); summary != "" {
		parts = append(parts, Faint.Render(TruncateText(summary, MaxSummaryLength)))
	}

	return strings.Join(parts, " ")
}

// RenderBuilderHeading renders a builder name as a heading for grouped views
func RenderBuilderHeading(name string) string {
	return Bold.Render(name)
}

// Section renders a titled block of content
func Section(title string, content string) string {
	return lipgloss.JoinVertical(lipgloss.Top,
		Title.Render(title),
		content,
	)
}
