package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/buildbot-tools/bbinfo/internal/version"
	"github.com/buildbot-tools/bbinfo/pkg/cmd/factory"
)

func NewCmdVersion(f *factory.Factory) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Format(f.Version))
		},
	}
}
