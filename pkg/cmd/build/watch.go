package build

import (
	"fmt"
	"time"

	"github.com/MakeNowJust/heredoc"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/buildbot-tools/bbinfo/internal/digest"
	"github.com/buildbot-tools/bbinfo/internal/io"
	"github.com/buildbot-tools/bbinfo/internal/watch"
	"github.com/buildbot-tools/bbinfo/pkg/cmd/factory"
)

type buildWatchOptions struct {
	patterns     []string
	sinceMinutes int
	maxBuilds    int
	statuses     []string
	onlyFailures bool
	interval     int
}

func NewCmdBuildWatch(f *factory.Factory) *cobra.Command {
	var opts buildWatchOptions

	cmd := cobra.Command{
		DisableFlagsInUseLine: true,
		Use:                   "watch [flags]",
		Short:                 "Watch builders refresh in real-time",
		Long: heredoc.Doc(`
			Show the current selection in the terminal and refresh it on an
			interval. The criteria flags work like the ones of build list.
		`),
		Example: heredoc.Doc(`
			# Watch every builder's last build
			$ bbinfo build watch

			# Watch the Windows builders, refreshing every 10 seconds
			$ bbinfo build watch --pattern '*Windows*' --interval 10
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !io.IsTerminal() {
				return fmt.Errorf("build watch needs a terminal, use 'bbinfo build list' in pipes")
			}

			criteria, err := buildCriteria(opts.patterns, opts.sinceMinutes, opts.maxBuilds, opts.statuses, opts.onlyFailures)
			if err != nil {
				return err
			}

			master, err := f.Master()
			if err != nil {
				return err
			}

			model := watch.New(cmd.Context(), master.MasterURL(), master, criteria,
				time.Duration(opts.interval)*time.Second)

			p := tea.NewProgram(model)
			_, err = p.Run()

			return err
		},
	}

	cmd.Flags().StringSliceVarP(&opts.patterns, "pattern", "p", nil, "Only builders whose name matches this glob (repeatable)")
	cmd.Flags().IntVar(&opts.sinceMinutes, "since-minutes", 0, "Only builds completed within the past N minutes")
	cmd.Flags().IntVarP(&opts.maxBuilds, "max-builds", "n", digest.DefaultMaxBuilds, "How many builds to show per builder")
	cmd.Flags().StringSliceVar(&opts.statuses, "status", nil, "Only builders whose shown builds all have one of these statuses")
	cmd.Flags().BoolVar(&opts.onlyFailures, "only-failures", false, "Shorthand for --status failure,exception")
	cmd.Flags().IntVar(&opts.interval, "interval", 30, "Refresh interval in seconds")
	cmd.Flags().SortFlags = false

	return &cmd
}
