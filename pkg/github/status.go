package github

import (
	"context"

	gh "github.com/google/go-github/v28/github"

	"github.com/fluxcd/dco/pkg/dco"
)

// CreateStatus posts verdict as the status named statusContext on the
// commit sha.
func (c *Client) CreateStatus(ctx context.Context, owner, repo, sha, statusContext string, verdict dco.Verdict) error {
	status := &gh.RepoStatus{
		State:       gh.String(string(verdict.State)),
		Description: gh.String(verdict.Description),
		Context:     gh.String(statusContext),
	}
	if verdict.TargetURL != "" {
		status.TargetURL = gh.String(verdict.TargetURL)
	}
	_, resp, err := c.client.Repositories.CreateStatus(ctx, owner, repo, sha, status)
	if err != nil {
		return parseError(resp, err)
	}
	return nil
}
