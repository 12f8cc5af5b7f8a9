// Package config contains the configuration for the bbinfo CLI
//
// Configuration can come from a file or environment variables. The file lives
// in the user's config directory (XDG_CONFIG_HOME or ~/.config) as
// bbinfo.yaml. Environment variables use the BBINFO_ prefix and take
// precedence over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	git "github.com/go-git/go-git/v5"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	// DefaultMasterURL is the master queried when none is configured.
	DefaultMasterURL = "https://buildbot.python.org/"

	// DefaultRepoURL is the repository used for revision links when none is
	// configured and no git remote is available.
	DefaultRepoURL = "https://hg.python.org/cpython/"

	MasterURLConfigKey = "master_url"
	RepoURLConfigKey   = "repo_url"

	appData        = "AppData"
	configFileName = "bbinfo.yaml"
	envPrefix      = "BBINFO"
	xdgConfigHome  = "XDG_CONFIG_HOME"
)

// Config holds the resolved configuration for the CLI
type Config struct {
	v    *viper.Viper
	fs   afero.Fs
	path string
	repo *git.Repository
}

// New loads configuration from the user's config file and the environment.
// The git repository, when present, provides a fallback repository URL from
// its origin remote. A missing config file is not an error.
func New(fs afero.Fs, repo *git.Repository) *Config {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	path := configFile()

	v := viper.New()
	v.SetFs(fs)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetDefault(MasterURLConfigKey, DefaultMasterURL)

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "warning: failed to read config %s: %v\n", path, err)
		}
	}

	return &Config{
		v:    v,
		fs:   fs,
		path: path,
		repo: repo,
	}
}

// MasterURL returns the URL of the buildbot master to query.
func (conf *Config) MasterURL() string {
	return conf.v.GetString(MasterURLConfigKey)
}

// SetMasterURL stores the master URL in the user configuration file.
func (conf *Config) SetMasterURL(url string) error {
	conf.v.Set(MasterURLConfigKey, url)
	return conf.write()
}

// RepoURL returns the repository URL used to build revision links. An
// explicitly configured value wins; otherwise the origin remote of the
// enclosing git repository is used, falling back to the default.
func (conf *Config) RepoURL() string {
	if value := conf.v.GetString(RepoURLConfigKey); value != "" {
		return value
	}
	if url := originURL(conf.repo); url != "" {
		return url
	}
	return DefaultRepoURL
}

// SetRepoURL stores the repository URL in the user configuration file.
func (conf *Config) SetRepoURL(url string) error {
	conf.v.Set(RepoURLConfigKey, url)
	return conf.write()
}

// Path returns the location of the user configuration file.
func (conf *Config) Path() string {
	return conf.path
}

func (conf *Config) write() error {
	if conf.path == "" {
		return fmt.Errorf("no config file path available")
	}
	if err := conf.fs.MkdirAll(filepath.Dir(conf.path), 0o755); err != nil {
		return err
	}
	return conf.v.WriteConfigAs(conf.path)
}

func originURL(repo *git.Repository) string {
	if repo == nil {
		return ""
	}
	remote, err := repo.Remote(git.DefaultRemoteName)
	if err != nil || remote == nil {
		return ""
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return ""
	}
	return urls[0]
}

// Config path precedence: XDG_CONFIG_HOME, AppData (windows only), HOME.
func configFile() string {
	if a := os.Getenv(xdgConfigHome); a != "" {
		return filepath.Join(a, configFileName)
	}
	if b := os.Getenv(appData); runtime.GOOS == "windows" && b != "" {
		return filepath.Join(b, "bbinfo", configFileName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return configFileName
	}
	return filepath.Join(home, ".config", configFileName)
}
