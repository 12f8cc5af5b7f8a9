package build

import (
	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/buildbot-tools/bbinfo/pkg/cmd/factory"
)

func NewCmdBuild(f *factory.Factory) *cobra.Command {
	cmd := cobra.Command{
		Use:   "build <command>",
		Args:  cobra.ArbitraryArgs,
		Short: "Report on the builds a master has run",
		Long:  "Report on the builds a buildbot master has run.",
		Example: heredoc.Doc(`
			# Report the last build of every builder
			$ bbinfo build list

			# Watch the Windows builders refresh live
			$ bbinfo build watch --pattern '*Windows*'
		`),
	}

	cmd.AddCommand(NewCmdBuildList(f))
	cmd.AddCommand(NewCmdBuildWatch(f))

	return &cmd
}
