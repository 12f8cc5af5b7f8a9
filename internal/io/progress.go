package io

import (
	"fmt"
	"strings"
)

func ProgressBar(completed, total, width int) string {
	if width <= 0 {
		return "[]"
	}
	if total <= 0 {
		return "[" + strings.Repeat("░", width) + "]"
	}

	if completed < 0 {
		completed = 0
	}

	filled := min(completed*width/total, width)

	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

// FetchProgress describes a partially complete fetch across builders.
func FetchProgress(completed, total, errored, barWidth int) string {
	if total == 0 {
		return "no builders"
	}

	bar := ProgressBar(completed, total, barWidth)
	percent := min(completed*100/total, 100)

	line := fmt.Sprintf("%s %3d%% %d/%d builders", bar, percent, completed, total)
	if errored > 0 {
		line += fmt.Sprintf(", %d failed", errored)
	}
	return line
}
