package dco

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func signedCommit(name, local string, upper bool) Commit {
	email := local + "@example.com"
	keyword := "Signed-off-by"
	if upper {
		keyword = strings.ToUpper(keyword)
	}
	return Commit{
		Message: fmt.Sprintf("change\n\n%s: %s <%s>", keyword, name, email),
		Author:  Author{Name: name, Email: email},
	}
}

func TestEvaluateProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	nonEmptyAlpha := gen.AlphaString().SuchThat(func(s string) bool { return s != "" })

	properties.Property("correctly signed commits always succeed", prop.ForAll(
		func(names []string, upper bool) bool {
			var commits []Commit
			for _, n := range names {
				commits = append(commits, signedCommit(n, strings.ToLower(n), upper))
			}
			v, err := Evaluate(context.Background(), commits, Always)
			return err == nil && v == Success()
		},
		gen.SliceOf(nonEmptyAlpha),
		gen.Bool(),
	))

	properties.Property("merge commits are skipped whatever the message", prop.ForAll(
		func(message string, parents int) bool {
			c := Commit{Message: message, Parents: make([]string, parents)}
			v, err := Evaluate(context.Background(), []Commit{c}, Always)
			return err == nil && v == Success()
		},
		gen.AnyString(),
		gen.IntRange(2, 5),
	))

	properties.Property("failure descriptions never exceed the limit and keep their prefix", prop.ForAll(
		func(description string) bool {
			v := Failure(description)
			if len([]rune(v.Description)) > MaxDescriptionLength {
				return false
			}
			return strings.HasPrefix(description, v.Description)
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
