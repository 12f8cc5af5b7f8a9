package root

import (
	"fmt"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/buildbot-tools/bbinfo/internal/version"
	buildCmd "github.com/buildbot-tools/bbinfo/pkg/cmd/build"
	builderCmd "github.com/buildbot-tools/bbinfo/pkg/cmd/builder"
	configureCmd "github.com/buildbot-tools/bbinfo/pkg/cmd/configure"
	"github.com/buildbot-tools/bbinfo/pkg/cmd/factory"
	serveCmd "github.com/buildbot-tools/bbinfo/pkg/cmd/serve"
	versionCmd "github.com/buildbot-tools/bbinfo/pkg/cmd/version"
)

func NewCmdRoot(f *factory.Factory) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   "bbinfo <command> <subcommand> [flags]",
		Short: "Buildbot status CLI",
		Long:  "Inspect the builds a buildbot master has run, from the command line.",
		Example: heredoc.Doc(`
			$ bbinfo build list --pattern '*Windows*'
		`),
		Annotations: map[string]string{
			"versionInfo": version.Format(f.Version),
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			f.Quiet, _ = cmd.Flags().GetBool("quiet")
			f.Verbose, _ = cmd.Flags().GetBool("verbose")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion, _ := cmd.Flags().GetBool("version"); showVersion {
				fmt.Fprintln(cmd.OutOrStdout(), version.Format(f.Version))
				return nil
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress progress output")
	cmd.PersistentFlags().BoolP("verbose", "V", false, "Enable verbose error output")
	cmd.Flags().BoolP("version", "v", false, "Print the version number")

	cmd.AddCommand(buildCmd.NewCmdBuild(f))
	cmd.AddCommand(builderCmd.NewCmdBuilder(f))
	cmd.AddCommand(configureCmd.NewCmdConfigure(f))
	cmd.AddCommand(serveCmd.NewCmdServe(f))
	cmd.AddCommand(versionCmd.NewCmdVersion(f))

	return cmd, nil
}
