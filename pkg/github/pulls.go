package github

import (
	"context"
)

// Head is where a pull request's status gets reported.
type Head struct {
	SHA        string
	OwnerIsOrg bool
}

// PullRequestHead looks up the head commit of a pull request, and
// whether its base repository belongs to an organisation.
func (c *Client) PullRequestHead(ctx context.Context, owner, repo string, number int) (Head, error) {
	pr, resp, err := c.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return Head{}, parseError(resp, err)
	}
	return Head{
		SHA:        pr.GetHead().GetSHA(),
		OwnerIsOrg: pr.GetBase().GetRepo().GetOwner().GetType() == "Organization",
	}, nil
}
