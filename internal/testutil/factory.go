package testutil

import (
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/spf13/afero"

	"github.com/buildbot-tools/bbinfo/internal/config"
	"github.com/buildbot-tools/bbinfo/pkg/cmd/factory"
)

// CreateFactory creates a Factory whose configuration lives in memory and
// points at the given master URL. Quiet is set so commands skip progress
// output.
func CreateFactory(t *testing.T, masterURL string) *factory.Factory {
	t.Helper()

	conf := config.New(afero.NewMemMapFs(), nil)
	if masterURL != "" {
		if err := conf.SetMasterURL(masterURL); err != nil {
			t.Fatalf("setting master URL: %v", err)
		}
	}

	return &factory.Factory{
		Config: conf,
		Quiet:  true,
	}
}

// GitRepository opens the repository the tests run in, if any.
func GitRepository() *git.Repository {
	repo, _ := git.PlainOpenWithOptions(".", &git.PlainOpenOptions{DetectDotGit: true, EnableDotGitCommonDir: true})
	return repo
}
