package ui

import (
	"time"
)

// TruncateText truncates text to the specified length and adds an ellipsis
func TruncateText(text string, maxLength int) string {
	if len(text) <= maxLength {
		return text
	}
	return text[:maxLength] + IconEllipsis
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	return d.Round(time.Second).String()
}

// FormatCompletion describes when a build finished, for inline display.
// The layout matches the timestamps in the plain-text report.
func FormatCompletion(t *time.Time) string {
	if t == nil {
		return "(not completed)"
	}
	return "at " + t.Format("02 Jan 2006 15:04")
}
