package ui

import "github.com/charmbracelet/lipgloss"

// Color constants for consistent styling across the application
const (
	ColorSuccess = lipgloss.Color("#2ECC40") // Green
	ColorError   = lipgloss.Color("#F45756") // Red
	ColorWarning = lipgloss.Color("#FF841C") // Orange
	ColorRunning = lipgloss.Color("#FF6E00") // Orange
	ColorPending = lipgloss.Color("#5A5A5A") // Grey
	ColorDefault = lipgloss.Color("#DDD")    // Light Grey
)

// Icon constants for consistent status representation
const (
	IconSuccess  = "✓"
	IconError    = "✖"
	IconWarning  = "⚠"
	IconRunning  = "▶"
	IconCanceled = "🚫"
	IconDefault  = "❔"
	IconEllipsis = "…"
)

// Standard style variants
var (
	Bold  = lipgloss.NewStyle().Bold(true)
	Faint = lipgloss.NewStyle().Faint(true)

	Header = lipgloss.NewStyle().Bold(true).Padding(0, 1).Underline(true)
	Title  = lipgloss.NewStyle().Bold(true)
)

// MaxSummaryLength is the longest build summary shown on a single line
const MaxSummaryLength = 80

