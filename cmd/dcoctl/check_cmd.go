package main

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fluxcd/dco/pkg/checker"
	"github.com/fluxcd/dco/pkg/config"
	"github.com/fluxcd/dco/pkg/github"
)

// gitHubAPI is what dcoctl uses of the GitHub API.
type gitHubAPI interface {
	checker.GitHub
	PullRequestHead(ctx context.Context, owner, repo string, number int) (github.Head, error)
	IsMember(ctx context.Context, org, login string) (bool, error)
}

type checkOpts struct {
	*rootOpts
	post          bool
	statusContext string
	outputFormat  string
}

func newCheck(parent *rootOpts) *checkOpts {
	return &checkOpts{rootOpts: parent}
}

func (opts *checkOpts) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <owner>/<repo>#<number>",
		Short: "Check the commits of a pull request for sign-offs.",
		Example: makeExample(
			"dcoctl check fluxcd/flux#2710",
			"dcoctl check https://github.com/fluxcd/flux/pull/2710 --post",
		),
		RunE: opts.RunE,
	}
	cmd.Flags().BoolVar(&opts.post, "post", false, "Set the verdict as the commit status of the pull request's head")
	cmd.Flags().StringVar(&opts.statusContext, "status-context", config.DefaultStatusContext, "Context of the commit status set with --post")
	cmd.Flags().StringVarP(&opts.outputFormat, "output-format", "o", outputFormatText, "Output format (text or json)")
	return cmd
}

func (opts *checkOpts) RunE(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return newUsageError("expected exactly one pull request")
	}
	if err := validateOutputFormat(opts.outputFormat); err != nil {
		return err
	}
	pr, err := parsePullRequest(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()

	head, err := opts.API.PullRequestHead(ctx, pr.Owner, pr.Repo, pr.Number)
	if err != nil {
		return err
	}
	pr.HeadSHA = head.SHA
	pr.OwnerIsOrg = head.OwnerIsOrg

	c := checker.New(opts.API, opts.API.IsMember, checker.Options{
		StatusContext: opts.statusContext,
		Post:          opts.post,
	})
	verdict, err := c.CheckPullRequest(ctx, pr)
	if err != nil {
		return err
	}
	return outputVerdict(opts.outputFormat, verdict, cmd.OutOrStdout())
}

var pullRequestRefRegexp = regexp.MustCompile(`^([\w.-]+)/([\w.-]+)#(\d+)$`)

// parsePullRequest accepts owner/repo#number or the web URL of a pull
// request.
func parsePullRequest(s string) (checker.PullRequest, error) {
	var owner, repo, number string
	if m := pullRequestRefRegexp.FindStringSubmatch(s); m != nil {
		owner, repo, number = m[1], m[2], m[3]
	} else if u, err := url.Parse(s); err == nil && u.Host != "" {
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(parts) == 4 && parts[2] == "pull" {
			owner, repo, number = parts[0], parts[1], parts[3]
		}
	}
	if owner == "" {
		return checker.PullRequest{}, newUsageError(fmt.Sprintf("%q is not a pull request; expected <owner>/<repo>#<number>", s))
	}
	n, err := strconv.Atoi(number)
	if err != nil || n <= 0 {
		return checker.PullRequest{}, newUsageError(fmt.Sprintf("%q is not a pull request number", number))
	}
	return checker.PullRequest{Owner: owner, Repo: repo, Number: n}, nil
}

func makeExample(examples ...string) string {
	var buf strings.Builder
	for _, example := range examples {
		buf.WriteString("  " + example + "\n")
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
