package testutil

import (
	"io"
	"testing"

	"github.com/spf13/cobra"

	"github.com/buildbot-tools/bbinfo/pkg/cmd/factory"
)

// CommandInput contains the configuration for a test command
type CommandInput struct {
	MasterURL string
	Flags     map[string]string
	Args      []string
	Stdin     io.Reader
	Factory   *factory.Factory
	NewCmd    func(*factory.Factory) *cobra.Command
}

// CreateCommand creates a test command with the given configuration. Output
// is discarded; pass your own factory or capture with cmd.SetOut to inspect
// it.
func CreateCommand(t *testing.T, input CommandInput) *cobra.Command {
	t.Helper()

	if input.Factory == nil {
		input.Factory = CreateFactory(t, input.MasterURL)
	}

	cmd := input.NewCmd(input.Factory)

	args := []string{}
	for k, v := range input.Flags {
		args = append(args, "--"+k, v)
	}

	args = append(args, input.Args...)
	cmd.SetArgs(args)

	if input.Stdin != nil {
		cmd.SetIn(input.Stdin)
	}

	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	return cmd
}
