package build

import (
	"fmt"
	"os"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/buildbot-tools/bbinfo/internal/buildbot"
	"github.com/buildbot-tools/bbinfo/internal/digest"
	bbErrors "github.com/buildbot-tools/bbinfo/internal/errors"
	"github.com/buildbot-tools/bbinfo/internal/io"
	"github.com/buildbot-tools/bbinfo/internal/render"
	"github.com/buildbot-tools/bbinfo/pkg/cmd/factory"
)

type buildListOptions struct {
	patterns     []string
	sinceMinutes int
	maxBuilds    int
	statuses     []string
	onlyFailures bool
	format       string
	emailTo      []string
	emailFrom    string
	emailSubject string
	noPager      bool
}

func NewCmdBuildList(f *factory.Factory) *cobra.Command {
	var opts buildListOptions

	cmd := cobra.Command{
		DisableFlagsInUseLine: true,
		Use:                   "list [flags]",
		Short:                 "Report the most recent builds of each builder",
		Long: heredoc.Doc(`
			Report recent builds of the configured master's builders, newest
			first within each builder.

			Builders can be narrowed with glob patterns, builds with a recency
			window and a per-builder count. With --status, a builder appears
			only when every one of its reported builds has one of the given
			statuses.
		`),
		Example: heredoc.Doc(`
			# The last build of every builder
			$ bbinfo build list

			# The last three builds of each Windows builder
			$ bbinfo build list --pattern '*Windows*' --max-builds 3

			# Builders whose last build failed within the past day
			$ bbinfo build list --only-failures --since-minutes 1440

			# A report ready to pipe into sendmail
			$ bbinfo build list --output html --email-from buildbot@example.org --email-to dev@example.org
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, f, &opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.patterns, "pattern", "p", nil, "Only builders whose name matches this glob (repeatable)")
	cmd.Flags().IntVar(&opts.sinceMinutes, "since-minutes", 0, "Only builds completed within the past N minutes")
	cmd.Flags().IntVarP(&opts.maxBuilds, "max-builds", "n", digest.DefaultMaxBuilds, "How many builds to report per builder")
	cmd.Flags().StringSliceVar(&opts.statuses, "status", nil, "Only builders whose reported builds all have one of these statuses")
	cmd.Flags().BoolVar(&opts.onlyFailures, "only-failures", false, "Shorthand for --status failure,exception")
	cmd.Flags().StringVarP(&opts.format, "output", "o", "text", "Report format. One of: text, html, json")
	cmd.Flags().StringSliceVar(&opts.emailTo, "email-to", nil, "Frame the report as an email to this address (repeatable)")
	cmd.Flags().StringVar(&opts.emailFrom, "email-from", "", "Sender address for the email framing")
	cmd.Flags().StringVar(&opts.emailSubject, "email-subject", "", "Subject for the email framing")
	cmd.Flags().BoolVar(&opts.noPager, "no-pager", false, "Print the report without piping it into a pager")
	cmd.Flags().SortFlags = false

	return &cmd
}

func runList(cmd *cobra.Command, f *factory.Factory, opts *buildListOptions) error {
	criteria, err := buildCriteria(opts.patterns, opts.sinceMinutes, opts.maxBuilds, opts.statuses, opts.onlyFailures)
	if err != nil {
		return err
	}

	renderer, err := rendererFromFlags(opts)
	if err != nil {
		return err
	}

	master, err := f.Master()
	if err != nil {
		return err
	}

	// Drain the lazy iterator: rows gathered before a failure are still
	// rendered below.
	var rows []digest.Row
	var selectErr error
	err = io.SpinWhile(f.Quiet, "Loading builds", func() {
		it := digest.Select(cmd.Context(), master, criteria)
		for it.Next() {
			rows = append(rows, it.Row())
		}
		selectErr = it.Err()
	})
	if err != nil {
		return err
	}
	if selectErr != nil && len(rows) == 0 {
		return selectErr
	}

	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No builds matched.")
		return nil
	}

	report := &render.Report{
		Master:      master.MasterURL(),
		RepoURL:     f.Config.RepoURL(),
		GeneratedAt: time.Now(),
		Rows:        rows,
	}
	if err := writeReport(cmd, opts, renderer, report); err != nil {
		return err
	}

	// A builder failing mid-selection still leaves the rows before it valid,
	// so the report above stands. Surface the failure after it.
	if selectErr != nil {
		handler := bbErrors.NewHandler().WithWriter(cmd.ErrOrStderr())
		handler.PrintWarning("the report covers only the builders before the failure")
		return selectErr
	}

	return nil
}

// buildCriteria assembles and validates the selection criteria list and
// watch share. --only-failures stands in for a --status set and cannot be
// combined with one.
func buildCriteria(patterns []string, sinceMinutes, maxBuilds int, statuses []string, onlyFailures bool) (digest.Criteria, error) {
	if onlyFailures && len(statuses) > 0 {
		return digest.Criteria{}, bbErrors.NewInvalidCriteriaError(nil,
			"--only-failures cannot be combined with --status",
			"Name every wanted status explicitly with --status")
	}

	criteria := digest.Criteria{
		Patterns:     patterns,
		SinceMinutes: sinceMinutes,
		MaxBuilds:    maxBuilds,
	}

	for _, status := range statuses {
		criteria.Statuses = append(criteria.Statuses, buildbot.Status(status))
	}
	if onlyFailures {
		criteria.Statuses = []buildbot.Status{buildbot.StatusFailure, buildbot.StatusException}
	}

	if err := criteria.Validate(); err != nil {
		return digest.Criteria{}, err
	}
	return criteria, nil
}

func rendererFromFlags(opts *buildListOptions) (render.Renderer, error) {
	renderer, err := render.ByFormat(opts.format)
	if err != nil {
		return nil, err
	}

	if len(opts.emailTo) == 0 {
		if opts.emailFrom != "" || opts.emailSubject != "" {
			return nil, bbErrors.NewInvalidCriteriaError(nil,
				"email framing needs a recipient",
				"Add --email-to to say who the report goes to")
		}
		return renderer, nil
	}

	if opts.emailFrom == "" {
		return nil, bbErrors.NewInvalidCriteriaError(nil,
			"email framing needs a sender",
			"Add --email-from to say who the report comes from")
	}

	return &render.Email{
		From:    opts.emailFrom,
		To:      opts.emailTo,
		Subject: opts.emailSubject,
		Body:    renderer,
	}, nil
}

// writeReport sends the report to the command's writer. Plain text bound for
// an actual terminal goes through the pager; structured formats and email
// are meant for pipes and never page.
func writeReport(cmd *cobra.Command, opts *buildListOptions, renderer render.Renderer, report *render.Report) error {
	out := cmd.OutOrStdout()

	if _, isText := renderer.(*render.Text); isText && out == os.Stdout {
		w, done := io.Pager(opts.noPager)
		if err := renderer.Render(w, report); err != nil {
			_ = done()
			return err
		}
		return done()
	}

	return renderer.Render(out, report)
}
