package github

import (
	"context"

	gh "github.com/google/go-github/v28/github"

	"github.com/fluxcd/dco/pkg/dco"
)

// PullRequestCommits lists all the commits of a pull request, oldest
// first, as GitHub orders them.
func (c *Client) PullRequestCommits(ctx context.Context, owner, repo string, number int) ([]dco.Commit, error) {
	var commits []dco.Commit
	opts := &gh.ListOptions{PerPage: perPage}
	for {
		page, resp, err := c.client.PullRequests.ListCommits(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, parseError(resp, err)
		}
		for _, rc := range page {
			commits = append(commits, toCommit(rc))
		}
		if resp.NextPage == 0 {
			return commits, nil
		}
		opts.Page = resp.NextPage
	}
}

func toCommit(rc *gh.RepositoryCommit) dco.Commit {
	c := dco.Commit{
		SHA: rc.GetSHA(),
	}
	if commit := rc.GetCommit(); commit != nil {
		c.Message = commit.GetMessage()
		c.Author.Name = commit.GetAuthor().GetName()
		c.Author.Email = commit.GetAuthor().GetEmail()
		if v := commit.GetVerification(); v != nil {
			c.Verification = &dco.Verification{Verified: v.GetVerified()}
		}
	}
	// The GitHub user is only known when the commit email is attached
	// to an account.
	c.Author.Login = rc.GetAuthor().GetLogin()
	for _, p := range rc.Parents {
		c.Parents = append(c.Parents, p.GetSHA())
	}
	return c
}
