package factory

import (
	"fmt"
	"net/http"
	"runtime"

	"github.com/go-git/go-git/v5"
	"github.com/spf13/afero"

	"github.com/buildbot-tools/bbinfo/internal/api"
	"github.com/buildbot-tools/bbinfo/internal/buildbot"
	"github.com/buildbot-tools/bbinfo/internal/config"
)

// Factory carries the dependencies commands share: resolved configuration,
// the transport used to reach the master, and the enclosing git repository
// when the command runs inside a clone.
type Factory struct {
	Config        *config.Config
	GitRepository *git.Repository
	Transport     http.RoundTripper
	Version       string

	// Quiet and Verbose mirror the root command's persistent flags.
	Quiet   bool
	Verbose bool
}

func New(version string) *Factory {
	repo := openRepository()

	return &Factory{
		Config:        config.New(afero.NewOsFs(), repo),
		GitRepository: repo,
		Transport:     transport(version),
		Version:       version,
	}
}

// Master builds a client for the configured master.
func (f *Factory) Master() (*buildbot.Client, error) {
	return buildbot.NewClient(f.Config.MasterURL(), buildbot.WithTransport(f.Transport))
}

func transport(version string) http.RoundTripper {
	headers := map[string]string{
		"User-Agent": fmt.Sprintf("bbinfo/%s (%s/%s)", version, runtime.GOOS, runtime.GOARCH),
	}

	return api.NewTransport(headers)
}

func openRepository() *git.Repository {
	repo, err := git.PlainOpenWithOptions(".", &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		// Not inside a repository. The repo URL then comes from
		// configuration alone.
		return nil
	}
	return repo
}
