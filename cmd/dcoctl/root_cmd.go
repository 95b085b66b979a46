package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fluxcd/dco/pkg/github"
)

const (
	envVariableToken     = "GITHUB_TOKEN"
	envVariableGitHubURL = "GITHUB_URL"
)

type rootOpts struct {
	Token     string
	GitHubURL string
	Timeout   time.Duration
	API       gitHubAPI
}

func newRoot() *rootOpts {
	return &rootOpts{}
}

var rootLongHelp = strings.TrimSpace(`
dcoctl checks commits for a Developer Certificate of Origin sign-off.

Workflow:
  dcoctl check fluxcd/flux#2710                              # Would this pull request pass?
  dcoctl check fluxcd/flux#2710 --post                       # ... and set its DCO status.
  dcoctl verify-message --file .git/COMMIT_EDITMSG           # Use as a commit-msg hook.
`)

func (opts *rootOpts) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "dcoctl",
		Long:              rootLongHelp,
		SilenceUsage:      true,
		PersistentPreRunE: opts.PersistentPreRunE,
	}
	cmd.PersistentFlags().StringVarP(&opts.Token, "token", "t", "",
		fmt.Sprintf("GitHub API token; you can also set the environment variable %s", envVariableToken))
	cmd.PersistentFlags().StringVar(&opts.GitHubURL, "github-url", "",
		fmt.Sprintf("API URL of a GitHub Enterprise installation; you can also set the environment variable %s", envVariableGitHubURL))
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 60*time.Second, "Global timeout for GitHub API calls")

	cmd.AddCommand(
		newCheck(opts).Command(),
		newVerifyMessage(opts).Command(),
		newVersionCommand(),
	)

	return cmd
}

func (opts *rootOpts) PersistentPreRunE(cmd *cobra.Command, _ []string) error {
	if opts.API != nil {
		return nil
	}
	opts.Token = getFromEnvIfNotSet(cmd.Flags().Changed("token"), envVariableToken, opts.Token)
	opts.GitHubURL = getFromEnvIfNotSet(cmd.Flags().Changed("github-url"), envVariableGitHubURL, opts.GitHubURL)

	client, err := github.NewClient(context.Background(), github.Options{
		Token:   opts.Token,
		BaseURL: opts.GitHubURL,
	})
	if err != nil {
		return err
	}
	opts.API = client
	return nil
}

func getFromEnvIfNotSet(changed bool, env, value string) string {
	if changed {
		return value
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	return value
}
