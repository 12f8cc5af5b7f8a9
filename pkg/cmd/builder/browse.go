package builder

import (
	"fmt"

	"github.com/MakeNowJust/heredoc"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/buildbot-tools/bbinfo/internal/io"
	"github.com/buildbot-tools/bbinfo/pkg/cmd/factory"
)

func NewCmdBuilderBrowse(f *factory.Factory) *cobra.Command {
	cmd := cobra.Command{
		Use:   "browse [builder]",
		Args:  cobra.MaximumNArgs(1),
		Short: "Open a builder's page on the master",
		Long: heredoc.Doc(`
			Open a builder's page on the buildbot master in the default web
			browser. With no argument the builder is picked interactively.
		`),
		Example: heredoc.Doc(`
			# Open a builder by name
			$ bbinfo builder browse trunk-osx

			# Pick the builder from a list
			$ bbinfo builder browse
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			master, err := f.Master()
			if err != nil {
				return err
			}

			var name string
			if len(args) > 0 {
				name = args[0]
			} else {
				var names []string
				var listErr error
				err := io.SpinWhile(f.Quiet, "Loading builders", func() {
					names, listErr = master.ListBuilders(cmd.Context())
				})
				if err != nil {
					return err
				}
				if listErr != nil {
					return listErr
				}

				name, err = io.PromptForOne("builder", names)
				if err != nil {
					return err
				}
			}

			url := master.BuilderURL(name)
			fmt.Fprintf(cmd.OutOrStdout(), "Opening %s\n", url)

			return browser.OpenURL(url)
		},
	}

	return &cmd
}
