package configure

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/MakeNowJust/heredoc"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	bbErrors "github.com/buildbot-tools/bbinfo/internal/errors"
	"github.com/buildbot-tools/bbinfo/pkg/cmd/factory"
)

func NewCmdConfigure(f *factory.Factory) *cobra.Command {
	var (
		masterURL string
		repoURL   string
	)

	cmd := &cobra.Command{
		Use:     "configure",
		Aliases: []string{"config"},
		Args:    cobra.NoArgs,
		Short:   "Configure the buildbot master to report on",
		Example: heredoc.Doc(`
			# Interactively
			$ bbinfo configure

			# Directly
			$ bbinfo configure --master-url https://buildbot.python.org/ --repo-url https://hg.python.org/cpython/
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// If flags are provided, use them directly
			if masterURL != "" || repoURL != "" {
				return configureWithValues(cmd, f, masterURL, repoURL)
			}

			// Otherwise fall back to interactive mode
			return configureInteractive(cmd, f)
		},
	}

	cmd.Flags().StringVar(&masterURL, "master-url", "", "Base URL of the buildbot master")
	cmd.Flags().StringVar(&repoURL, "repo-url", "", "Base URL revision links point at")

	return cmd
}

func configureWithValues(cmd *cobra.Command, f *factory.Factory, masterURL, repoURL string) error {
	if masterURL != "" {
		if err := validateMasterURL(masterURL); err != nil {
			return bbErrors.NewConfigurationError(err, fmt.Sprintf("invalid master URL %q", masterURL))
		}
	}
	if repoURL != "" {
		if err := validateRepoURL(repoURL); err != nil {
			return bbErrors.NewConfigurationError(err, fmt.Sprintf("invalid repository URL %q", repoURL))
		}
	}

	return save(cmd, f, masterURL, repoURL)
}

func configureInteractive(cmd *cobra.Command, f *factory.Factory) error {
	masterURL := f.Config.MasterURL()
	repoURL := f.Config.RepoURL()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Master URL: ").Value(&masterURL).Validate(validateMasterURL).Inline(true).Prompt(""),
		),
		huh.NewGroup(
			huh.NewInput().Title("Repository URL: ").Value(&repoURL).Validate(validateRepoURL).Inline(true).Prompt(""),
		),
	).WithTheme(huh.ThemeBase16())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return bbErrors.NewUserAbortedError(err, "configuration not saved")
		}
		return err
	}

	return save(cmd, f, masterURL, repoURL)
}

func save(cmd *cobra.Command, f *factory.Factory, masterURL, repoURL string) error {
	if masterURL != "" {
		if err := f.Config.SetMasterURL(masterURL); err != nil {
			return err
		}
	}
	if repoURL != "" {
		if err := f.Config.SetRepoURL(repoURL); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved to %s\n", f.Config.Path())
	return nil
}

func validateMasterURL(s string) error {
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("enter an absolute URL, like https://buildbot.example.org/")
	}
	return nil
}

// validateRepoURL accepts an empty value: revision links then fall back to
// the repository the command runs in, or the default.
func validateRepoURL(s string) error {
	if s == "" {
		return nil
	}
	return validateMasterURL(s)
}
