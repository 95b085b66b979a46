package github

import (
	"context"
)

// IsMember reports whether login is a member of org. Private
// membership is only visible with a token belonging to a member.
func (c *Client) IsMember(ctx context.Context, org, login string) (bool, error) {
	member, resp, err := c.client.Organizations.IsMember(ctx, org, login)
	if err != nil {
		return false, parseError(resp, err)
	}
	return member, nil
}
