package builder

import (
	"context"
	"fmt"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/buildbot-tools/bbinfo/internal/digest"
	"github.com/buildbot-tools/bbinfo/internal/io"
	"github.com/buildbot-tools/bbinfo/pkg/cmd/factory"
	"github.com/buildbot-tools/bbinfo/pkg/output"
)

type listOptions struct {
	factory  *factory.Factory
	patterns []string
}

type builderItem struct {
	Name   string `json:"name" yaml:"name"`
	WebURL string `json:"web_url" yaml:"web_url"`
}

func NewCmdBuilderList(f *factory.Factory) *cobra.Command {
	opts := listOptions{factory: f}

	cmd := cobra.Command{
		Use:   "list",
		Short: "List the builders a master runs",
		Long: heredoc.Doc(`
			List the builders the configured buildbot master runs, optionally
			narrowed to the ones whose name matches a glob pattern.
		`),
		Example: heredoc.Doc(`
			# List every builder
			$ bbinfo builder list

			# List the Windows builders, as JSON
			$ bbinfo builder list --pattern '*Windows*' --output json
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := output.GetFormat(cmd.Flags())
			if err != nil {
				return err
			}

			builders, err := listBuilders(cmd.Context(), &opts)
			if err != nil {
				return err
			}

			if len(builders) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No builders matched.")
				return nil
			}

			builderView := output.Viewable[[]builderItem]{
				Data:   builders,
				Render: renderBuilderTable,
			}

			return output.Write(cmd.OutOrStdout(), builderView, format)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.patterns, "pattern", "p", nil, "Only builders whose name matches this glob (repeatable)")
	cmd.Flags().SortFlags = false
	output.AddFlags(cmd.Flags())

	return &cmd
}

func listBuilders(ctx context.Context, opts *listOptions) ([]builderItem, error) {
	criteria := digest.Criteria{Patterns: opts.patterns, MaxBuilds: digest.DefaultMaxBuilds}
	if err := criteria.Validate(); err != nil {
		return nil, err
	}

	master, err := opts.factory.Master()
	if err != nil {
		return nil, err
	}

	var names []string
	var listErr error
	err = io.SpinWhile(opts.factory.Quiet, "Loading builders", func() {
		names, listErr = master.ListBuilders(ctx)
	})
	if err != nil {
		return nil, err
	}
	if listErr != nil {
		return nil, listErr
	}

	items := make([]builderItem, 0, len(names))
	for _, name := range names {
		if !digest.MatchAny(opts.patterns, name) {
			continue
		}
		items = append(items, builderItem{Name: name, WebURL: master.BuilderURL(name)})
	}

	return items, nil
}

func renderBuilderTable(builders []builderItem) string {
	rows := make([][]string, 0, len(builders))
	for _, b := range builders {
		rows = append(rows, []string{output.ValueOrDash(b.Name), output.ValueOrDash(b.WebURL)})
	}
	return output.Table([]string{"NAME", "URL"}, rows)
}
