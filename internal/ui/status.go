package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/buildbot-tools/bbinfo/internal/buildbot"
)

// StatusStyle returns the appropriate styling for a build status
func StatusStyle(status buildbot.Status) lipgloss.Style {
	switch status {
	case buildbot.StatusSuccess:
		return lipgloss.NewStyle().Foreground(ColorSuccess)
	case buildbot.StatusWarnings:
		return lipgloss.NewStyle().Foreground(ColorWarning)
	case buildbot.StatusFailure, buildbot.StatusException:
		return lipgloss.NewStyle().Foreground(ColorError)
	case buildbot.StatusRetry:
		return lipgloss.NewStyle().Foreground(ColorRunning)
	case buildbot.StatusSkipped, buildbot.StatusCancelled:
		return lipgloss.NewStyle().Foreground(ColorPending)
	default:
		return lipgloss.NewStyle().Foreground(ColorDefault)
	}
}

// StatusIcon returns the appropriate icon for a build status
func StatusIcon(status buildbot.Status) string {
	switch status {
	case buildbot.StatusSuccess:
		return IconSuccess
	case buildbot.StatusWarnings:
		return IconWarning
	case buildbot.StatusFailure, buildbot.StatusException:
		return IconError
	case buildbot.StatusRetry:
		return IconRunning
	case buildbot.StatusSkipped:
		return IconEllipsis
	case buildbot.StatusCancelled:
		return IconCanceled
	default:
		return IconDefault
	}
}

// RenderStatus renders a build status with its icon and uppercased label
func RenderStatus(status buildbot.Status) string {
	style := StatusStyle(status)
	return style.Render(StatusIcon(status) + " " + strings.ToUpper(string(status)))
}
