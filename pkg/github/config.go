package github

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/fluxcd/dco/pkg/config"
)

// RepoConfig reads the repository's DCO settings from its default
// branch. A repository without settings gets the defaults.
func (c *Client) RepoConfig(ctx context.Context, owner, repo string) (config.RepoConfig, error) {
	file, _, resp, err := c.client.Repositories.GetContents(ctx, owner, repo, config.RepoConfigPath, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return config.DefaultRepoConfig(), nil
		}
		return config.RepoConfig{}, parseError(resp, err)
	}
	if file == nil {
		// it's a directory
		return config.DefaultRepoConfig(), nil
	}
	content, err := file.GetContent()
	if err != nil {
		return config.RepoConfig{}, errors.Wrapf(err, "decoding %s", config.RepoConfigPath)
	}
	return config.ParseRepoConfig([]byte(content))
}
