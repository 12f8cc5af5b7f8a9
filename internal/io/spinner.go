package io

import (
	"github.com/charmbracelet/huh/spinner"
)

// SpinWhile shows a spinner with the given title while action runs. In quiet
// mode, or when stdout is not a terminal, the action runs without any
// decoration.
func SpinWhile(quiet bool, title string, action func()) error {
	if quiet || !IsTerminal() {
		action()
		return nil
	}

	return spinner.New().Title(title).Action(action).Run()
}
