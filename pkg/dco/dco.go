// Package dco decides whether a sequence of commits carries a valid
// Developer Certificate of Origin sign-off from each author.
//
// The decision is a pure function of the commits and of the answers
// given by the supplied SignoffRequiredFunc; fetching commits and
// reporting the verdict are left to the caller.
package dco

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

const (
	// TargetURL is linked from every failing verdict.
	TargetURL = "https://github.com/probot/dco#how-it-works"

	// MaxDescriptionLength is the longest description, in characters,
	// GitHub accepts for a commit status.
	MaxDescriptionLength = 140

	successDescription = "All commits have a DCO sign-off from the author"
)

// The keyword folds ASCII case only; the captures are matched as
// written. Lines end at any of lineTerminators, which FindSignoff
// turns into '\n' before matching.
var signoffRegexp = regexp.MustCompile(`(?m)^[Ss][Ii][Gg][Nn][Ee][Dd]-[Oo][Ff][Ff]-[Bb][Yy]: (.*) <(.*)>$`)

var lineTerminators = strings.NewReplacer("\r", "\n", "\u2028", "\n", "\u2029", "\n")

type State string

const (
	StateSuccess State = "success"
	StateFailure State = "failure"
)

type Author struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	// Login is the hosting platform account, if the commit author
	// could be matched to one.
	Login string `json:"login,omitempty"`
}

type Verification struct {
	Verified bool `json:"verified"`
}

// Commit is everything the evaluation needs to know about a commit.
type Commit struct {
	SHA          string        `json:"sha,omitempty"`
	Message      string        `json:"message"`
	Author       Author        `json:"author"`
	Parents      []string      `json:"parents,omitempty"`
	Verification *Verification `json:"verification,omitempty"`
}

func (c Commit) IsMerge() bool {
	return len(c.Parents) > 1
}

func (c Commit) verified() bool {
	return c.Verification != nil && c.Verification.Verified
}

// Verdict is the outcome of an evaluation, shaped like a commit
// status so it can be posted as-is.
type Verdict struct {
	State       State  `json:"state"`
	Description string `json:"description"`
	TargetURL   string `json:"target_url,omitempty"`
}

func (v Verdict) Success() bool {
	return v.State == StateSuccess
}

func Success() Verdict {
	return Verdict{
		State:       StateSuccess,
		Description: successDescription,
	}
}

// Failure builds a failing verdict. The description is cut to
// MaxDescriptionLength characters, with no regard for word boundaries.
func Failure(description string) Verdict {
	return Verdict{
		State:       StateFailure,
		Description: truncate(description, MaxDescriptionLength),
		TargetURL:   TargetURL,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// SignoffRequiredFunc reports whether the author with the given login
// must sign off their commits. It may do I/O.
type SignoffRequiredFunc func(ctx context.Context, login string) (bool, error)

// Always requires a sign-off from everyone.
func Always(context.Context, string) (bool, error) {
	return true, nil
}

// Signoff is a sign-off line found in a commit message.
type Signoff struct {
	Name  string
	Email string
}

// FindSignoff returns the first sign-off line in message. A carriage
// return, or U+2028 or U+2029, ends a line as well as a newline does.
func FindSignoff(message string) (Signoff, bool) {
	m := signoffRegexp.FindStringSubmatch(lineTerminators.Replace(message))
	if m == nil {
		return Signoff{}, false
	}
	return Signoff{Name: m[1], Email: m[2]}, true
}

// Evaluate checks commits in order and returns the verdict for the
// first one that fails, or success if none does. Merge commits are
// skipped. An error is only returned when isSignoffRequired fails, in
// which case it is passed through untouched.
func Evaluate(ctx context.Context, commits []Commit, isSignoffRequired SignoffRequiredFunc) (Verdict, error) {
	for _, c := range commits {
		if c.IsMerge() {
			continue
		}

		signoff, ok := FindSignoff(c.Message)
		if !ok {
			required, err := isSignoffRequired(ctx, c.Author.Login)
			if err != nil {
				return Verdict{}, err
			}
			if required {
				return Failure("The sign-off is missing."), nil
			}
			if !c.verified() {
				return Failure("Commit by organization member is not verified."), nil
			}
			continue
		}

		if !ValidEmail(c.Author.Email) {
			return Failure(fmt.Sprintf("%s is not a valid email address.", c.Author.Email)), nil
		}
		if c.Author.Name != signoff.Name || c.Author.Email != signoff.Email {
			return Failure(fmt.Sprintf(`Expected "%s <%s>", but got "%s <%s>".`,
				c.Author.Name, c.Author.Email, signoff.Name, signoff.Email)), nil
		}
	}
	return Success(), nil
}
