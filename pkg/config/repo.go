package config

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	dcoerr "github.com/fluxcd/dco/pkg/errors"
)

// RepoConfigPath is where a repository keeps its DCO settings.
const RepoConfigPath = ".github/dco.yml"

type RepoConfig struct {
	Require Require `yaml:"require"`
}

type Require struct {
	// Members says whether members of the organisation owning the
	// repository must sign off too. When false, commits from members
	// need only be verified.
	Members bool `yaml:"members"`
}

func DefaultRepoConfig() RepoConfig {
	return RepoConfig{Require: Require{Members: true}}
}

// ParseRepoConfig reads the settings in data over the defaults. Empty
// data gives the defaults.
func ParseRepoConfig(data []byte) (RepoConfig, error) {
	conf := DefaultRepoConfig()
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return DefaultRepoConfig(), InvalidRepoConfigError(errors.Wrap(err, "parsing "+RepoConfigPath))
	}
	return conf, nil
}

func InvalidRepoConfigError(actual error) error {
	return &dcoerr.Error{
		Type: dcoerr.User,
		Err:  actual,
		Help: `Could not parse the repository's DCO settings

The file ` + RepoConfigPath + ` in the repository's default branch is not
valid YAML. It should look like

    require:
      members: false

or be removed to use the defaults, which require a sign-off from
everyone.
`,
	}
}
