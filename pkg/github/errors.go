package github

import (
	"net/http"

	gh "github.com/google/go-github/v28/github"
	"github.com/pkg/errors"

	dcoerr "github.com/fluxcd/dco/pkg/errors"
)

func unauthorizedError(actual error) error {
	return &dcoerr.Error{
		Type: dcoerr.User,
		Err:  actual,
		Help: `GitHub refused our credentials

The GitHub token is missing, has expired, or lacks the scopes needed.
Reading pull requests and organisation membership and writing commit
statuses needs the "repo:status" and "read:org" scopes (or the
equivalent app permissions).
`,
	}
}

func notFoundError(actual error) error {
	return &dcoerr.Error{
		Type: dcoerr.Missing,
		Err:  actual,
		Help: `Cannot find the owner, repository or pull request

Check the spelling, and that the GitHub token can see the repository.
`,
	}
}

func rateLimitError(actual error) error {
	return &dcoerr.Error{
		Type: dcoerr.Server,
		Err:  actual,
		Help: `GitHub API rate limit exceeded

We've sent GitHub more requests than it allows for now. It is safe to
try again later.
`,
	}
}

// parseError gives a GitHub API error a category and some help. resp
// is nil when the request never got a response.
func parseError(resp *gh.Response, err error) error {
	switch err.(type) {
	case *gh.RateLimitError, *gh.AbuseRateLimitError:
		return rateLimitError(err)
	}
	if resp == nil {
		return &dcoerr.Error{
			Type: dcoerr.Server,
			Err:  errors.Wrap(err, "calling GitHub API"),
			Help: "Could not reach the GitHub API. It is safe to try again.\n",
		}
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return unauthorizedError(err)
	case http.StatusNotFound:
		return notFoundError(err)
	default:
		return &dcoerr.Error{
			Type: dcoerr.Server,
			Err:  err,
			Help: "Unable to perform GitHub API request: " + err.Error() + "\n",
		}
	}
}
