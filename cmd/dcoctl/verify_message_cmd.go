package main

import (
	"context"
	"io"
	"io/ioutil"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/fluxcd/dco/pkg/dco"
)

const (
	envVariableAuthorName  = "GIT_AUTHOR_NAME"
	envVariableAuthorEmail = "GIT_AUTHOR_EMAIL"
)

type verifyMessageOpts struct {
	*rootOpts
	name          string
	email         string
	file          string
	stripComments bool
	outputFormat  string
}

func newVerifyMessage(parent *rootOpts) *verifyMessageOpts {
	return &verifyMessageOpts{rootOpts: parent}
}

func (opts *verifyMessageOpts) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify-message",
		Short: "Check a single commit message for the author's sign-off.",
		Long: strings.TrimSpace(`
Check a commit message for a sign-off matching the author. Nothing is
asked of GitHub; the sign-off is always required.

As a commit-msg hook:
  #!/bin/sh
  exec dcoctl verify-message --file "$1"
`),
		Example: makeExample(
			"git log -1 --format=%B | dcoctl verify-message --name 'Jane Doe' --email jane@example.com",
			"dcoctl verify-message --file .git/COMMIT_EDITMSG",
		),
		RunE: opts.RunE,
	}
	cmd.Flags().StringVar(&opts.name, "name", "",
		"Name of the commit author; defaults to $"+envVariableAuthorName)
	cmd.Flags().StringVar(&opts.email, "email", "",
		"Email address of the commit author; defaults to $"+envVariableAuthorEmail)
	cmd.Flags().StringVarP(&opts.file, "file", "f", "-", "File containing the commit message, or - for stdin")
	cmd.Flags().BoolVar(&opts.stripComments, "strip-comments", true, "Ignore lines starting with #, as git does")
	cmd.Flags().StringVarP(&opts.outputFormat, "output-format", "o", outputFormatText, "Output format (text or json)")
	return cmd
}

func (opts *verifyMessageOpts) RunE(cmd *cobra.Command, args []string) error {
	if len(args) != 0 {
		return errorWantedNoArgs
	}
	if err := validateOutputFormat(opts.outputFormat); err != nil {
		return err
	}
	name := getFromEnvIfNotSet(cmd.Flags().Changed("name"), envVariableAuthorName, opts.name)
	email := getFromEnvIfNotSet(cmd.Flags().Changed("email"), envVariableAuthorEmail, opts.email)
	if name == "" || email == "" {
		return newUsageError("--name and --email are required when " + envVariableAuthorName + " and " + envVariableAuthorEmail + " are not set")
	}

	message, err := opts.readMessage(cmd.InOrStdin())
	if err != nil {
		return err
	}

	commit := dco.Commit{
		Message: message,
		Author:  dco.Author{Name: name, Email: email},
	}
	verdict, err := dco.Evaluate(context.Background(), []dco.Commit{commit}, dco.Always)
	if err != nil {
		return err
	}
	return outputVerdict(opts.outputFormat, verdict, cmd.OutOrStdout())
}

func (opts *verifyMessageOpts) readMessage(stdin io.Reader) (string, error) {
	var (
		raw []byte
		err error
	)
	if opts.file == "-" {
		raw, err = ioutil.ReadAll(stdin)
	} else {
		raw, err = ioutil.ReadFile(opts.file)
	}
	if err != nil {
		return "", errors.Wrap(err, "reading commit message")
	}
	if !opts.stripComments {
		return string(raw), nil
	}
	return stripCommentLines(raw), nil
}

// stripCommentLines drops the lines starting with '#'. Line endings
// are kept as they are, so the message is read the same way as one
// fetched from GitHub.
func stripCommentLines(raw []byte) string {
	lines := strings.SplitAfter(string(raw), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(line, "#") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "")
}
