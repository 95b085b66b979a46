// Package checker runs the DCO check for a pull request: it gathers
// what the evaluation needs from GitHub and reports the verdict back
// as a commit status.
package checker

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/fluxcd/dco/pkg/config"
	"github.com/fluxcd/dco/pkg/dco"
	"github.com/fluxcd/dco/pkg/membership"
)

// PullRequest identifies a pull request and the commit its status is
// reported on.
type PullRequest struct {
	Owner   string
	Repo    string
	Number  int
	HeadSHA string
	// OwnerIsOrg is true when the repository belongs to an
	// organisation rather than a user.
	OwnerIsOrg bool
}

func (pr PullRequest) String() string {
	return fmt.Sprintf("%s/%s#%d", pr.Owner, pr.Repo, pr.Number)
}

type Service interface {
	CheckPullRequest(ctx context.Context, pr PullRequest) (dco.Verdict, error)
}

// GitHub is what the checker needs from the GitHub API.
type GitHub interface {
	RepoConfig(ctx context.Context, owner, repo string) (config.RepoConfig, error)
	PullRequestCommits(ctx context.Context, owner, repo string, number int) ([]dco.Commit, error)
	CreateStatus(ctx context.Context, owner, repo, sha, statusContext string, verdict dco.Verdict) error
}

type Options struct {
	// StatusContext names the commit status, e.g., "DCO".
	StatusContext string
	// LookupTimeout bounds each membership lookup; zero means no
	// bound beyond that of the context given.
	LookupTimeout time.Duration
	// Post the verdict as a commit status. When false the verdict is
	// only returned.
	Post bool
}

type Checker struct {
	github   GitHub
	isMember membership.Lookup
	opts     Options
}

var _ Service = &Checker{}

func New(github GitHub, isMember membership.Lookup, opts Options) *Checker {
	if opts.StatusContext == "" {
		opts.StatusContext = config.DefaultStatusContext
	}
	return &Checker{
		github:   github,
		isMember: isMember,
		opts:     opts,
	}
}

func (c *Checker) CheckPullRequest(ctx context.Context, pr PullRequest) (dco.Verdict, error) {
	repoConf, err := c.github.RepoConfig(ctx, pr.Owner, pr.Repo)
	if err != nil {
		return dco.Verdict{}, errors.Wrapf(err, "reading DCO settings for %s/%s", pr.Owner, pr.Repo)
	}
	commits, err := c.github.PullRequestCommits(ctx, pr.Owner, pr.Repo, pr.Number)
	if err != nil {
		return dco.Verdict{}, errors.Wrapf(err, "listing commits of %s", pr)
	}
	verdict, err := dco.Evaluate(ctx, commits, c.signoffRequired(pr, repoConf))
	if err != nil {
		return dco.Verdict{}, errors.Wrapf(err, "checking commits of %s", pr)
	}
	if c.opts.Post {
		if err := c.github.CreateStatus(ctx, pr.Owner, pr.Repo, pr.HeadSHA, c.opts.StatusContext, verdict); err != nil {
			return verdict, errors.Wrapf(err, "posting status for %s", pr)
		}
	}
	return verdict, nil
}

// signoffRequired decides who must sign off. Everyone must, unless the
// repository belongs to an organisation and its settings let members
// off; then members need only have their commits verified.
func (c *Checker) signoffRequired(pr PullRequest, repoConf config.RepoConfig) dco.SignoffRequiredFunc {
	if !pr.OwnerIsOrg || repoConf.Require.Members || c.isMember == nil {
		return dco.Always
	}
	return func(ctx context.Context, login string) (bool, error) {
		if login == "" {
			return true, nil
		}
		if c.opts.LookupTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.opts.LookupTimeout)
			defer cancel()
		}
		member, err := c.isMember(ctx, pr.Owner, login)
		if err != nil {
			return false, errors.Wrapf(err, "looking up membership of %s in %s", login, pr.Owner)
		}
		return !member, nil
	}
}
