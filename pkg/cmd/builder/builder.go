package builder

import (
	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/buildbot-tools/bbinfo/pkg/cmd/factory"
)

func NewCmdBuilder(f *factory.Factory) *cobra.Command {
	cmd := cobra.Command{
		Use:   "builder <command>",
		Args:  cobra.ArbitraryArgs,
		Short: "Inspect the builders a master runs",
		Long:  "Inspect the builders a buildbot master runs.",
		Example: heredoc.Doc(`
			# List the Windows builders
			$ bbinfo builder list --pattern '*Windows*'

			# Open a builder's page on the master
			$ bbinfo builder browse trunk-osx
		`),
	}
	cmd.AddCommand(NewCmdBuilderList(f))
	cmd.AddCommand(NewCmdBuilderBrowse(f))

	return &cmd
}
