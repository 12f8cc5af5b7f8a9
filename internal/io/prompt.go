package io

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
)

// PromptForOne shows the list of options to the user, allowing them to select
// one to return. It's possible for them to choose none or cancel the
// selection, resulting in an error.
func PromptForOne(kind string, options []string) (string, error) {
	if !IsInputTerminal() {
		return "", fmt.Errorf("cannot prompt for selection: no TTY available (use appropriate flags to specify the selection)")
	}

	prompt := &survey.Select{
		Message: fmt.Sprintf("Select a %s", kind),
		Options: options,
	}
	selected := new(string)
	err := survey.AskOne(prompt, selected)

	return *selected, err
}
